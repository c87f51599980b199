package router

import (
	"github.com/labstack/echo/v4"

	"talkapp/internal/adapter/api/handler"
)

// SetupWebSocketRouter registers the realtime endpoint. Authentication happens
// inside the handler because WebSocket upgrades cannot carry headers from
// browser clients.
func SetupWebSocketRouter(e *echo.Echo, wsHandler *handler.WebSocketHandler) {
	e.GET("/ws", wsHandler.HandleWebSocket)
}
