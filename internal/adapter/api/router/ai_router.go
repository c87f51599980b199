package router

import (
	"github.com/labstack/echo/v4"

	"talkapp/internal/adapter/api/handler"
	"talkapp/internal/adapter/api/middleware"
)

func SetupAIRouter(e *echo.Echo, aiHandler *handler.AIHandler, authMiddleware *middleware.AuthMiddleware) {
	ai := e.Group("/v1/ai")
	ai.Use(authMiddleware.Authenticate)

	ai.POST("/chat", aiHandler.Exchange)
}
