package middlewares

import (
	"fmt"

	"github.com/gin-gonic/gin"
)

// SecurityPolicy holds the response headers applied to every route. Empty
// fields leave the header unset.
type SecurityPolicy struct {
	ContentSecurityPolicy string
	FrameOptions          string
	HSTSMaxAge            int // seconds; sent only over https
}

func SecurityHeaders(policy SecurityPolicy) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		if policy.FrameOptions != "" {
			c.Header("X-Frame-Options", policy.FrameOptions)
		}
		if policy.ContentSecurityPolicy != "" {
			c.Header("Content-Security-Policy", policy.ContentSecurityPolicy)
		}
		if policy.HSTSMaxAge > 0 && (c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https") {
			c.Header("Strict-Transport-Security", fmt.Sprintf("max-age=%d; includeSubDomains", policy.HSTSMaxAge))
		}

		c.Next()
	}
}
