package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/yeremiapane/bakery-app/kds"
	"github.com/yeremiapane/bakery-app/middlewares"
	"github.com/yeremiapane/bakery-app/models"
)

type KDSController struct {
	Hub      *kds.Hub
	upgrader websocket.Upgrader
}

func NewKDSController(hub *kds.Hub, origin string) *KDSController {
	return &KDSController{
		Hub: hub,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				o := r.Header.Get("Origin")
				return o == "" || origin == "*" || o == origin
			},
		},
	}
}

// KDSHandler -> order board websocket for staff
func (kc *KDSController) KDSHandler(c *gin.Context) {
	roleInterface, exists := c.Get(middlewares.ContextRole)
	if !exists {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	role, _ := roleInterface.(string)

	if role != models.RoleCashier && role != models.RoleAdmin {
		c.AbortWithStatus(http.StatusForbidden)
		return
	}

	ws, err := kc.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	kc.Hub.RegisterClient(ws, role)

	// The board is push-only; reads just detect disconnects.
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}

	kc.Hub.UnregisterClient(ws)
}
