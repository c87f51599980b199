package usecase

import (
	"context"
	"strings"
	"time"

	"talkapp/internal/domain/entity"
	"talkapp/internal/domain/repository"
	"talkapp/pkg/errors"
	"talkapp/pkg/logger"
)

// ChatUseCase owns conversation resolution, message ordering and read-state
// reconciliation for two-party threads.
type ChatUseCase struct {
	chatRepo repository.ChatRepository
	userRepo repository.UserRepository
}

func NewChatUseCase(chatRepo repository.ChatRepository, userRepo repository.UserRepository) *ChatUseCase {
	return &ChatUseCase{
		chatRepo: chatRepo,
		userRepo: userRepo,
	}
}

type ConversationResponse struct {
	*entity.Conversation
	OtherUser *entity.User `json:"other_user,omitempty"`
}

type SendMessageInput struct {
	ConversationID string
	Content        string
}

// ResolveConversation finds or creates the canonical thread for an unordered
// pair of users. The pair key doubles as the document ID, so repeated and
// concurrent calls for the same pair converge on one conversation.
func (uc *ChatUseCase) ResolveConversation(ctx context.Context, selfID, otherID string) (*ConversationResponse, error) {
	if selfID == "" {
		return nil, errors.Unauthorized("Authentication required", nil)
	}
	if selfID == otherID {
		return nil, errors.BadRequest("You cannot start a conversation with yourself", nil)
	}

	otherUser, err := uc.userRepo.GetByID(ctx, otherID)
	if err != nil {
		logger.Warn("ResolveConversation: counterpart %s not found: %v", otherID, err)
		return nil, err
	}

	pairKey := entity.PairKey(selfID, otherID)

	conv, err := uc.chatRepo.GetConversationByID(ctx, pairKey)
	if err == nil {
		return &ConversationResponse{Conversation: conv, OtherUser: otherUser}, nil
	}
	if !errors.Is(err, "NOT_FOUND") {
		return nil, err
	}

	// Threads created before pair-key IDs have random IDs; fall back to a
	// participant scan before creating a new document.
	if legacy := uc.findLegacyConversation(ctx, selfID, otherID); legacy != nil {
		return &ConversationResponse{Conversation: legacy, OtherUser: otherUser}, nil
	}

	now := time.Now()
	conv = &entity.Conversation{
		ID:            pairKey,
		Participants:  []string{selfID, otherID},
		LastMessageAt: now,
		LastRead: map[string]time.Time{
			// The creator must not see its own creation as unread; the
			// counterpart's watermark starts at zero so everything counts.
			selfID:  now,
			otherID: {},
		},
	}

	if err := uc.chatRepo.CreateConversation(ctx, conv); err != nil {
		if errors.Is(err, "CONFLICT") {
			// Lost the create race; the winner's document is ours too.
			conv, err = uc.chatRepo.GetConversationByID(ctx, pairKey)
			if err != nil {
				return nil, err
			}
			return &ConversationResponse{Conversation: conv, OtherUser: otherUser}, nil
		}
		logger.Error("ResolveConversation: failed to create conversation %s: %v", pairKey, err)
		return nil, err
	}

	return &ConversationResponse{Conversation: conv, OtherUser: otherUser}, nil
}

func (uc *ChatUseCase) findLegacyConversation(ctx context.Context, selfID, otherID string) *entity.Conversation {
	convs, err := uc.chatRepo.ListConversationsByUserID(ctx, selfID)
	if err != nil {
		logger.Warn("ResolveConversation: legacy scan for user %s failed: %v", selfID, err)
		return nil
	}

	for _, conv := range convs {
		if len(conv.Participants) == 2 && conv.HasParticipant(otherID) {
			return conv
		}
	}

	return nil
}

// GetMessages returns the conversation's full message list, ascending by
// timestamp.
func (uc *ChatUseCase) GetMessages(ctx context.Context, userID, conversationID string) ([]*entity.Message, error) {
	if _, err := uc.requireParticipant(ctx, userID, conversationID); err != nil {
		return nil, err
	}

	return uc.chatRepo.ListMessages(ctx, conversationID)
}

// SubscribeMessages opens a live subscription delivering the full ordered
// message list on every change. The subscription ends when ctx is cancelled
// or after an error delivery; callers may resubscribe.
func (uc *ChatUseCase) SubscribeMessages(ctx context.Context, userID, conversationID string) (<-chan repository.MessagesSnapshot, error) {
	if _, err := uc.requireParticipant(ctx, userID, conversationID); err != nil {
		return nil, err
	}

	return uc.chatRepo.ListenMessages(ctx, conversationID)
}

// SendMessage inserts the message, then best-effort mirrors it into the
// conversation's denormalized last-message fields. When the mirror write
// fails the message is still durably sent; previews catch up on the next
// successful send.
func (uc *ChatUseCase) SendMessage(ctx context.Context, userID string, input SendMessageInput) (*entity.Message, error) {
	if userID == "" {
		return nil, errors.Unauthorized("Authentication required", nil)
	}

	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, errors.BadRequest("Message content cannot be empty", nil)
	}

	if _, err := uc.requireParticipant(ctx, userID, input.ConversationID); err != nil {
		return nil, err
	}

	message := &entity.Message{
		ConversationID: input.ConversationID,
		SenderID:       userID,
		Content:        content,
		CreatedAt:      time.Now(),
		Read:           false,
	}

	if err := uc.chatRepo.CreateMessage(ctx, message); err != nil {
		logger.Error("SendMessage: failed to create message in conversation %s: %v", input.ConversationID, err)
		return nil, err
	}

	if err := uc.chatRepo.SetLastMessage(ctx, input.ConversationID, content, userID, message.CreatedAt); err != nil {
		logger.Warn("SendMessage: message %s sent but last-message update failed: %v", message.ID, err)
	}

	return message, nil
}

// DeleteMessage removes a message the acting user sent. A non-sender delete
// is a silent no-op. When the deleted message was the thread's most recent,
// the denormalized last-message fields are backfilled from the newest
// surviving message, or cleared when none remain.
func (uc *ChatUseCase) DeleteMessage(ctx context.Context, userID, conversationID, messageID string) error {
	if userID == "" {
		return errors.Unauthorized("Authentication required", nil)
	}

	message, err := uc.chatRepo.GetMessageByID(ctx, conversationID, messageID)
	if err != nil {
		if errors.Is(err, "NOT_FOUND") {
			return nil
		}
		return err
	}

	if message.SenderID != userID {
		logger.Debug("DeleteMessage: user %s is not the sender of message %s, ignoring", userID, messageID)
		return nil
	}

	conv, err := uc.chatRepo.GetConversationByID(ctx, conversationID)
	if err != nil {
		return err
	}

	if err := uc.chatRepo.DeleteMessage(ctx, conversationID, messageID); err != nil {
		return err
	}

	// Timestamp comparison decides whether the preview must be recomputed;
	// matching on content would misfire on duplicate texts.
	if message.CreatedAt.Before(conv.LastMessageAt) {
		return nil
	}

	previous, err := uc.chatRepo.LatestMessage(ctx, conversationID)
	if err != nil {
		if !errors.Is(err, "NOT_FOUND") {
			logger.Warn("DeleteMessage: backfill query for conversation %s failed: %v", conversationID, err)
			return nil
		}
		// No messages left. Resetting lastMessageAt to the thread's creation
		// time keeps an emptied conversation from sorting as fresh activity.
		if err := uc.chatRepo.SetLastMessage(ctx, conversationID, "", "", conv.CreatedAt); err != nil {
			logger.Warn("DeleteMessage: failed to clear last message for conversation %s: %v", conversationID, err)
		}
		return nil
	}

	if err := uc.chatRepo.SetLastMessage(ctx, conversationID, previous.Content, previous.SenderID, previous.CreatedAt); err != nil {
		logger.Warn("DeleteMessage: failed to backfill last message for conversation %s: %v", conversationID, err)
	}

	return nil
}

// MarkConversationRead advances the reader's watermark, then flips the read
// flag on the counterpart's unread messages. The flag is cosmetic state; the
// watermark alone drives unread counting, so flag failures are tolerated.
func (uc *ChatUseCase) MarkConversationRead(ctx context.Context, userID, conversationID string) error {
	if userID == "" {
		return errors.Unauthorized("Authentication required", nil)
	}

	if _, err := uc.requireParticipant(ctx, userID, conversationID); err != nil {
		return err
	}

	if err := uc.chatRepo.SetLastRead(ctx, conversationID, userID, time.Now()); err != nil {
		return err
	}

	unread, err := uc.chatRepo.ListUnreadMessages(ctx, conversationID, userID)
	if err != nil {
		logger.Warn("MarkConversationRead: failed to list unread messages in %s: %v", conversationID, err)
		return nil
	}

	for _, message := range unread {
		if err := uc.chatRepo.MarkMessageRead(ctx, conversationID, message.ID); err != nil {
			logger.Warn("MarkConversationRead: failed to flag message %s: %v", message.ID, err)
		}
	}

	return nil
}

// CheckUserExists is a fail-closed existence probe: any error reads as
// "does not exist" because callers navigate away on false.
func (uc *ChatUseCase) CheckUserExists(ctx context.Context, userID string) bool {
	exists, err := uc.userRepo.Exists(ctx, userID)
	if err != nil {
		logger.Warn("CheckUserExists: probe for %s failed: %v", userID, err)
		return false
	}

	return exists
}

func (uc *ChatUseCase) requireParticipant(ctx context.Context, userID, conversationID string) (*entity.Conversation, error) {
	if userID == "" {
		return nil, errors.Unauthorized("Authentication required", nil)
	}

	conv, err := uc.chatRepo.GetConversationByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	if !conv.HasParticipant(userID) {
		return nil, errors.Forbidden("User is not a participant in this conversation", nil)
	}

	return conv, nil
}
