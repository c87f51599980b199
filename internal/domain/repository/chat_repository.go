package repository

import (
	"context"
	"time"

	"talkapp/internal/domain/entity"
)

// MessagesSnapshot is one delivery of a live message subscription: the full
// ordered list, or a terminal error. After an Err delivery the channel is
// closed; callers may resubscribe.
type MessagesSnapshot struct {
	Messages []*entity.Message
	Err      error
}

// ConversationsSnapshot is one delivery of a live conversation subscription.
type ConversationsSnapshot struct {
	Conversations []*entity.Conversation
	Err           error
}

type ChatRepository interface {
	// Conversation methods
	CreateConversation(ctx context.Context, conv *entity.Conversation) error
	GetConversationByID(ctx context.Context, id string) (*entity.Conversation, error)
	ListConversationsByUserID(ctx context.Context, userID string) ([]*entity.Conversation, error)
	ListenConversationsByUserID(ctx context.Context, userID string) (<-chan ConversationsSnapshot, error)
	SetParticipants(ctx context.Context, conversationID string, participants []string) error
	SetLastMessage(ctx context.Context, conversationID, content, senderID string, at time.Time) error
	SetLastRead(ctx context.Context, conversationID, userID string, at time.Time) error
	DeleteConversation(ctx context.Context, id string) error

	// Message methods
	CreateMessage(ctx context.Context, message *entity.Message) error
	GetMessageByID(ctx context.Context, conversationID, messageID string) (*entity.Message, error)
	ListMessages(ctx context.Context, conversationID string) ([]*entity.Message, error)
	ListenMessages(ctx context.Context, conversationID string) (<-chan MessagesSnapshot, error)
	LatestMessage(ctx context.Context, conversationID string) (*entity.Message, error)
	ListUnreadMessages(ctx context.Context, conversationID, excludeSenderID string) ([]*entity.Message, error)
	MarkMessageRead(ctx context.Context, conversationID, messageID string) error
	DeleteMessage(ctx context.Context, conversationID, messageID string) error
	DeleteAllMessages(ctx context.Context, conversationID string) error
	CountUnread(ctx context.Context, conversationID, userID string, since time.Time) (int64, error)
}
