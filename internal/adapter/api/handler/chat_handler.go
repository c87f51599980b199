package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"talkapp/internal/usecase"
	"talkapp/pkg/response"
)

type ChatHandler struct {
	chatUseCase  *usecase.ChatUseCase
	inboxUseCase *usecase.InboxUseCase
}

func NewChatHandler(chatUseCase *usecase.ChatUseCase, inboxUseCase *usecase.InboxUseCase) *ChatHandler {
	return &ChatHandler{
		chatUseCase:  chatUseCase,
		inboxUseCase: inboxUseCase,
	}
}

type resolveConversationRequest struct {
	OtherUserID string `json:"other_user_id" validate:"required"`
}

type sendMessageRequest struct {
	Content string `json:"content" validate:"required"`
}

// ResolveConversation finds or creates the thread with another user
func (h *ChatHandler) ResolveConversation(c echo.Context) error {
	var req resolveConversationRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	conv, err := h.chatUseCase.ResolveConversation(c.Request().Context(), userID, req.OtherUserID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, conv)
}

// GetConversations returns the caller's preview list, newest first
func (h *ChatHandler) GetConversations(c echo.Context) error {
	userID := c.Get("uid").(string)

	previews, err := h.inboxUseCase.ListConversations(c.Request().Context(), userID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, previews)
}

// GetMessages returns the full ordered message list for a conversation
func (h *ChatHandler) GetMessages(c echo.Context) error {
	conversationID := c.Param("id")
	userID := c.Get("uid").(string)

	messages, err := h.chatUseCase.GetMessages(c.Request().Context(), userID, conversationID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, messages)
}

// SendMessage posts a message to a conversation
func (h *ChatHandler) SendMessage(c echo.Context) error {
	conversationID := c.Param("id")
	userID := c.Get("uid").(string)

	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	message, err := h.chatUseCase.SendMessage(c.Request().Context(), userID, usecase.SendMessageInput{
		ConversationID: conversationID,
		Content:        req.Content,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, message)
}

// DeleteMessage removes one of the caller's own messages
func (h *ChatHandler) DeleteMessage(c echo.Context) error {
	conversationID := c.Param("id")
	messageID := c.Param("messageId")
	userID := c.Get("uid").(string)

	if err := h.chatUseCase.DeleteMessage(c.Request().Context(), userID, conversationID, messageID); err != nil {
		return response.Error(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// MarkConversationRead advances the caller's read watermark
func (h *ChatHandler) MarkConversationRead(c echo.Context) error {
	conversationID := c.Param("id")
	userID := c.Get("uid").(string)

	if err := h.chatUseCase.MarkConversationRead(c.Request().Context(), userID, conversationID); err != nil {
		return response.Error(c, err)
	}

	return c.NoContent(http.StatusOK)
}

// LeaveConversation removes the caller from the thread, cascading when the
// participant set empties
func (h *ChatHandler) LeaveConversation(c echo.Context) error {
	conversationID := c.Param("id")
	userID := c.Get("uid").(string)

	if err := h.inboxUseCase.LeaveConversation(c.Request().Context(), userID, conversationID); err != nil {
		return response.Error(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}
