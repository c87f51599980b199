package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	gorillaws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"talkapp/internal/adapter/api/middleware"
	ws "talkapp/internal/infrastructure/websocket"
	"talkapp/internal/usecase"
	"talkapp/pkg/errors"
	"talkapp/pkg/logger"
)

// Client -> server frame types.
const (
	wsTypePing              = "ping"
	wsTypeJoinConversation  = "join_conversation"
	wsTypeLeaveConversation = "leave_conversation"
	wsTypeSendMessage       = "send_message"
	wsTypeMarkRead          = "mark_read"
	wsTypeTyping            = "typing"
)

// Server -> client frame types.
const (
	wsTypePong     = "pong"
	wsTypeMessages = "messages"
	wsTypeInbox    = "inbox"
	wsTypeError    = "error"
)

type wsRequest struct {
	Type           string `json:"type"`
	ConversationID string `json:"conversation_id,omitempty"`
	Content        string `json:"content,omitempty"`
	Typing         bool   `json:"typing,omitempty"`
}

type wsEvent struct {
	Type           string      `json:"type"`
	ConversationID string      `json:"conversation_id,omitempty"`
	Data           interface{} `json:"data,omitempty"`
	Timestamp      string      `json:"timestamp"`
}

var upgrader = gorillaws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // restrict to the app's origins in production
	},
}

// session tracks one connection's live subscriptions so they can be
// released deterministically when the owning scope ends.
type session struct {
	ctx    context.Context
	cancel context.CancelFunc

	mu    sync.Mutex
	rooms map[string]context.CancelFunc // conversationID -> subscription cancel
}

func (s *session) setRoom(conversationID string, cancel context.CancelFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.rooms[conversationID]; ok {
		old()
	}
	s.rooms[conversationID] = cancel
}

func (s *session) dropRoom(conversationID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cancel, ok := s.rooms[conversationID]; ok {
		cancel()
		delete(s.rooms, conversationID)
	}
}

type WebSocketHandler struct {
	wsManager      *ws.Manager
	authMiddleware *middleware.AuthMiddleware
	chatUseCase    *usecase.ChatUseCase
	inboxUseCase   *usecase.InboxUseCase
	userUseCase    *usecase.UserUseCase

	mu       sync.Mutex
	sessions map[*ws.Client]*session
}

func NewWebSocketHandler(
	wsManager *ws.Manager,
	authMiddleware *middleware.AuthMiddleware,
	chatUseCase *usecase.ChatUseCase,
	inboxUseCase *usecase.InboxUseCase,
	userUseCase *usecase.UserUseCase,
) *WebSocketHandler {
	h := &WebSocketHandler{
		wsManager:      wsManager,
		authMiddleware: authMiddleware,
		chatUseCase:    chatUseCase,
		inboxUseCase:   inboxUseCase,
		userUseCase:    userUseCase,
		sessions:       make(map[*ws.Client]*session),
	}

	wsManager.SetInboundHandler(h.handleInbound)
	wsManager.SetCloseHandler(h.handleClose)

	return h
}

// HandleWebSocket upgrades the connection, registers the client and starts
// the inbox subscription. The token arrives as a query parameter because
// browsers cannot set headers on WebSocket upgrades.
func (h *WebSocketHandler) HandleWebSocket(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		return errors.Unauthorized("Authentication required", nil)
	}

	userID, err := h.authMiddleware.GetUIDFromToken(c.Request().Context(), token)
	if err != nil {
		return errors.Unauthorized("Invalid or expired token", err)
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return errors.Internal("Failed to upgrade connection", err)
	}

	client := &ws.Client{
		UserID: userID,
		Conn:   conn,
		Send:   make(chan []byte, 256),
	}

	sessCtx, cancel := context.WithCancel(context.Background())
	sess := &session{
		ctx:    sessCtx,
		cancel: cancel,
		rooms:  make(map[string]context.CancelFunc),
	}

	h.mu.Lock()
	h.sessions[client] = sess
	h.mu.Unlock()

	h.wsManager.Register <- client

	if err := h.userUseCase.SetPresence(sessCtx, userID, true); err != nil {
		logger.Warn("WebSocket: failed to set %s online: %v", userID, err)
	}

	h.startInboxSubscription(sess, client)

	go client.ReadPump(h.wsManager)
	go client.WritePump()

	return nil
}

func (h *WebSocketHandler) session(client *ws.Client) *session {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.sessions[client]
}

func (h *WebSocketHandler) handleInbound(client *ws.Client, payload []byte) {
	sess := h.session(client)
	if sess == nil {
		return
	}

	var req wsRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		h.sendError(client, "", "Malformed frame")
		return
	}

	switch req.Type {
	case wsTypePing:
		h.send(client, wsEvent{Type: wsTypePong})

	case wsTypeJoinConversation:
		h.handleJoin(sess, client, req.ConversationID)

	case wsTypeLeaveConversation:
		h.wsManager.LeaveRoom(req.ConversationID, client)
		sess.dropRoom(req.ConversationID)

	case wsTypeSendMessage:
		_, err := h.chatUseCase.SendMessage(sess.ctx, client.UserID, usecase.SendMessageInput{
			ConversationID: req.ConversationID,
			Content:        req.Content,
		})
		if err != nil {
			h.sendError(client, req.ConversationID, "Failed to send message")
		}

	case wsTypeMarkRead:
		if err := h.chatUseCase.MarkConversationRead(sess.ctx, client.UserID, req.ConversationID); err != nil {
			h.sendError(client, req.ConversationID, "Failed to mark conversation read")
		}

	case wsTypeTyping:
		h.broadcastTyping(client, req)

	default:
		h.sendError(client, "", "Unknown frame type: "+req.Type)
	}
}

// handleJoin subscribes the client to a conversation's message stream and
// marks the thread read, mirroring what the mobile client does on screen
// entry.
func (h *WebSocketHandler) handleJoin(sess *session, client *ws.Client, conversationID string) {
	subCtx, cancel := context.WithCancel(sess.ctx)

	snapshots, err := h.chatUseCase.SubscribeMessages(subCtx, client.UserID, conversationID)
	if err != nil {
		cancel()
		h.sendError(client, conversationID, "Failed to subscribe to conversation")
		return
	}

	h.wsManager.JoinRoom(conversationID, client)
	sess.setRoom(conversationID, cancel)

	if err := h.chatUseCase.MarkConversationRead(subCtx, client.UserID, conversationID); err != nil {
		logger.Warn("WebSocket: mark-read on join failed for %s: %v", conversationID, err)
	}

	go func() {
		for snapshot := range snapshots {
			if snapshot.Err != nil {
				h.sendError(client, conversationID, "Message subscription lost")
				return
			}
			h.send(client, wsEvent{
				Type:           wsTypeMessages,
				ConversationID: conversationID,
				Data:           snapshot.Messages,
			})
		}
	}()
}

func (h *WebSocketHandler) startInboxSubscription(sess *session, client *ws.Client) {
	snapshots, err := h.inboxUseCase.SubscribeConversations(sess.ctx, client.UserID)
	if err != nil {
		logger.Error("WebSocket: inbox subscription for %s failed to start: %v", client.UserID, err)
		return
	}

	go func() {
		for snapshot := range snapshots {
			if snapshot.Err != nil {
				h.sendError(client, "", "Inbox subscription lost")
				return
			}
			h.send(client, wsEvent{
				Type: wsTypeInbox,
				Data: snapshot.Previews,
			})
		}
	}()
}

func (h *WebSocketHandler) broadcastTyping(client *ws.Client, req wsRequest) {
	event := wsEvent{
		Type:           wsTypeTyping,
		ConversationID: req.ConversationID,
		Data: map[string]interface{}{
			"user_id": client.UserID,
			"typing":  req.Typing,
		},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return
	}

	h.wsManager.SendToRoom(req.ConversationID, payload, client.UserID)
}

func (h *WebSocketHandler) handleClose(client *ws.Client) {
	h.mu.Lock()
	sess := h.sessions[client]
	delete(h.sessions, client)
	h.mu.Unlock()

	if sess != nil {
		sess.cancel()
	}

	// The session context is gone; presence cleanup gets its own deadline.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := h.userUseCase.SetPresence(ctx, client.UserID, false); err != nil {
		logger.Warn("WebSocket: failed to set %s offline: %v", client.UserID, err)
	}
}

func (h *WebSocketHandler) send(client *ws.Client, event wsEvent) {
	if event.Timestamp == "" {
		event.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}

	payload, err := json.Marshal(event)
	if err != nil {
		logger.Error("WebSocket: failed to marshal %s event: %v", event.Type, err)
		return
	}

	h.wsManager.SendToUser(client.UserID, payload)
}

func (h *WebSocketHandler) sendError(client *ws.Client, conversationID, message string) {
	h.send(client, wsEvent{
		Type:           wsTypeError,
		ConversationID: conversationID,
		Data:           map[string]string{"message": message},
	})
}
