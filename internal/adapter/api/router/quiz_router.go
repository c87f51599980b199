package router

import (
	"github.com/labstack/echo/v4"

	"talkapp/internal/adapter/api/handler"
	"talkapp/internal/adapter/api/middleware"
)

func SetupQuizRouter(e *echo.Echo, quizHandler *handler.QuizHandler, authMiddleware *middleware.AuthMiddleware) {
	quizzes := e.Group("/v1/quizzes")
	quizzes.Use(authMiddleware.Authenticate)

	quizzes.GET("", quizHandler.ListQuizzes) // GET /v1/quizzes?category=&difficulty=
	quizzes.GET("/:id", quizHandler.GetQuiz)
	quizzes.POST("/:id/submit", quizHandler.SubmitQuiz)
	quizzes.GET("/results/me", quizHandler.ListMyResults)
}
