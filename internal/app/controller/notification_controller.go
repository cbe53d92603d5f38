package controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	apperrors "github.com/verdantia/storefront-backend/internal/errors"
	"github.com/verdantia/storefront-backend/internal/middleware"
	ws "github.com/verdantia/storefront-backend/internal/websocket"
)

type NotificationController struct {
	hub      *ws.Hub
	upgrader websocket.Upgrader
}

// NewNotificationController accepts websocket upgrades only from
// allowedOrigins; an empty list allows same-host requests without Origin.
func NewNotificationController(hub *ws.Hub, allowedOrigins []string) *NotificationController {
	origins := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = true
	}
	return &NotificationController{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || origins[origin]
			},
		},
	}
}

// Subscribe streams cart toasts for the session
// GET /api/v1/ws/notifications?token=
func (ctrl *NotificationController) Subscribe(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	sessionID, ok := middleware.GetCartSessionID(c)
	if !ok {
		apperrors.Unauthorized(c, apperrors.SessionMissing, "")
		return
	}

	conn, err := ctrl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("Failed to upgrade to WebSocket", err)
		return
	}

	client := ws.NewClient(ctrl.hub, &ws.Conn{Conn: conn}, sessionID)
	client.LastResetTime = time.Now()
	ctrl.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()

	log.Info("WebSocket connection established", map[string]interface{}{
		"session_id": sessionID,
	})
}
