package middlewares

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/bakery-app/services"
	"github.com/yeremiapane/bakery-app/utils"
)

// Context keys set by AuthMiddleware.
const (
	ContextUserID    = "user_id"
	ContextRole      = "role"
	ContextPrincipal = "principal"
)

// AuthMiddleware resolves the bearer token into a Principal. Credentials are
// verified elsewhere; this only trusts tokens signed with our secret.
func AuthMiddleware(tokens *utils.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("authorization header missing"))
			c.Abort()
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid token format"))
			c.Abort()
			return
		}

		authenticate(c, tokens, strings.TrimPrefix(authHeader, "Bearer "))
	}
}

// WebSocketAuthMiddleware reads the token from the query string, since
// browsers cannot set headers on websocket upgrades.
func WebSocketAuthMiddleware(tokens *utils.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		authenticate(c, tokens, token)
	}
}

func authenticate(c *gin.Context, tokens *utils.TokenManager, tokenString string) {
	claims, err := tokens.ParseToken(tokenString)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, err)
		c.Abort()
		return
	}

	principal, err := services.PrincipalFromRole(claims.UserID, claims.Role)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, err)
		c.Abort()
		return
	}

	c.Set(ContextUserID, claims.UserID)
	c.Set(ContextRole, claims.Role)
	c.Set(ContextPrincipal, principal)
	c.Next()
}

// PrincipalFrom returns the principal stored by AuthMiddleware.
func PrincipalFrom(c *gin.Context) (services.Principal, bool) {
	v, ok := c.Get(ContextPrincipal)
	if !ok {
		return nil, false
	}
	p, ok := v.(services.Principal)
	return p, ok
}
