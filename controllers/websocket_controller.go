package controllers

import (
	"alertrelay/websocket"

	"github.com/gin-gonic/gin"
	gorilla "github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

type WebSocketController struct {
	hub      *websocket.Hub
	upgrader gorilla.Upgrader
}

func NewWebSocketController(hub *websocket.Hub, allowedOrigins []string) *WebSocketController {
	return &WebSocketController{
		hub:      hub,
		upgrader: websocket.NewUpgrader(allowedOrigins),
	}
}

// HandleWebSocket upgrades to the push channel. No authentication is required.
func (wsc *WebSocketController) HandleWebSocket(c *gin.Context) {
	if err := websocket.ServeWS(wsc.hub, &wsc.upgrader, c.Writer, c.Request); err != nil {
		// The upgrader has already written an HTTP error response.
		logrus.Errorf("Failed to upgrade WebSocket connection: %v", err)
	}
}
