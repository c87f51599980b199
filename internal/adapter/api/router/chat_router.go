package router

import (
	"github.com/labstack/echo/v4"

	"talkapp/internal/adapter/api/handler"
	"talkapp/internal/adapter/api/middleware"
)

// SetupChatRouter registers conversation and message routes (excluding WebSocket)
func SetupChatRouter(e *echo.Echo, chatHandler *handler.ChatHandler, authMiddleware *middleware.AuthMiddleware) {
	conversations := e.Group("/v1/conversations")
	conversations.Use(authMiddleware.Authenticate)

	conversations.POST("", chatHandler.ResolveConversation)            // POST /v1/conversations - find or create the thread with another user
	conversations.GET("", chatHandler.GetConversations)                // GET /v1/conversations - preview list, newest first
	conversations.PUT("/:id/read", chatHandler.MarkConversationRead)   // PUT /v1/conversations/:id/read
	conversations.DELETE("/:id", chatHandler.LeaveConversation)        // DELETE /v1/conversations/:id - leave, cascading when empty

	conversations.GET("/:id/messages", chatHandler.GetMessages)                   // GET /v1/conversations/:id/messages
	conversations.POST("/:id/messages", chatHandler.SendMessage)                  // POST /v1/conversations/:id/messages
	conversations.DELETE("/:id/messages/:messageId", chatHandler.DeleteMessage)   // DELETE /v1/conversations/:id/messages/:messageId
}
