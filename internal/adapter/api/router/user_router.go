package router

import (
	"github.com/labstack/echo/v4"

	"talkapp/internal/adapter/api/handler"
	"talkapp/internal/adapter/api/middleware"
)

func SetupUserRouter(e *echo.Echo, userHandler *handler.UserHandler, authMiddleware *middleware.AuthMiddleware) {
	users := e.Group("/v1/users")
	users.Use(authMiddleware.Authenticate)

	users.POST("", userHandler.RegisterProfile) // POST /v1/users - create profile for the authenticated account
	users.GET("/me", userHandler.GetMe)
	users.PATCH("/me", userHandler.UpdateProfile)
	users.PUT("/me/presence", userHandler.SetPresence)
	users.DELETE("/me", userHandler.DeleteAccount)

	users.GET("", userHandler.BrowsePartners) // GET /v1/users?country=&gender=&native_language=&language_level=
	users.GET("/:id", userHandler.GetUser)
	users.GET("/:id/exists", userHandler.CheckUserExists)
	users.PUT("/:id/rating", userHandler.RateUser)

	users.GET("/me/favorites", userHandler.ListFavorites)
	users.PUT("/me/favorites/:id", userHandler.AddFavorite)
	users.DELETE("/me/favorites/:id", userHandler.RemoveFavorite)
}
