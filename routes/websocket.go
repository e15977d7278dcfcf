package routes

import (
	"alertrelay/controllers"

	"github.com/gin-gonic/gin"
)

// SetupWebSocketRoutes registers the push channel endpoint
func SetupWebSocketRoutes(router *gin.Engine, wsController *controllers.WebSocketController) {
	router.GET("/ws", wsController.HandleWebSocket)
}
