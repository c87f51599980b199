package router

import (
	"github.com/labstack/echo/v4"

	"talkapp/internal/adapter/api/handler"
	"talkapp/internal/adapter/api/middleware"
)

func Setup(
	e *echo.Echo,
	authMiddleware *middleware.AuthMiddleware,
	chatHandler *handler.ChatHandler,
	userHandler *handler.UserHandler,
	quizHandler *handler.QuizHandler,
	aiHandler *handler.AIHandler,
	wsHandler *handler.WebSocketHandler,
) {
	SetupHealthRouter(e)
	SetupUserRouter(e, userHandler, authMiddleware)
	SetupChatRouter(e, chatHandler, authMiddleware)
	SetupQuizRouter(e, quizHandler, authMiddleware)
	SetupAIRouter(e, aiHandler, authMiddleware)
	SetupWebSocketRouter(e, wsHandler)
}
