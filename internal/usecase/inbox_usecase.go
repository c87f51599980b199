package usecase

import (
	"context"

	"talkapp/internal/domain/entity"
	"talkapp/internal/domain/repository"
	"talkapp/pkg/errors"
	"talkapp/pkg/logger"
)

// InboxUseCase aggregates a user's conversations into denormalized,
// time-ordered previews: each thread joined with the counterpart's profile
// and a freshly computed unread count.
type InboxUseCase struct {
	chatRepo repository.ChatRepository
	userRepo repository.UserRepository
}

func NewInboxUseCase(chatRepo repository.ChatRepository, userRepo repository.UserRepository) *InboxUseCase {
	return &InboxUseCase{
		chatRepo: chatRepo,
		userRepo: userRepo,
	}
}

// InboxSnapshot is one delivery of a live inbox subscription.
type InboxSnapshot struct {
	Previews []*entity.ConversationPreview
	Err      error
}

// ListConversations returns the current preview list, newest first.
func (uc *InboxUseCase) ListConversations(ctx context.Context, selfID string) ([]*entity.ConversationPreview, error) {
	if selfID == "" {
		return nil, errors.Unauthorized("Authentication required", nil)
	}

	convs, err := uc.chatRepo.ListConversationsByUserID(ctx, selfID)
	if err != nil {
		return nil, err
	}

	return uc.buildPreviews(ctx, selfID, convs), nil
}

// SubscribeConversations opens a live subscription over the user's inbox.
// Every underlying change re-delivers the full preview list.
func (uc *InboxUseCase) SubscribeConversations(ctx context.Context, selfID string) (<-chan InboxSnapshot, error) {
	if selfID == "" {
		return nil, errors.Unauthorized("Authentication required", nil)
	}

	snapshots, err := uc.chatRepo.ListenConversationsByUserID(ctx, selfID)
	if err != nil {
		return nil, err
	}

	out := make(chan InboxSnapshot, 1)
	go func() {
		defer close(out)

		for snapshot := range snapshots {
			if snapshot.Err != nil {
				out <- InboxSnapshot{Err: snapshot.Err}
				return
			}

			select {
			case out <- InboxSnapshot{Previews: uc.buildPreviews(ctx, selfID, snapshot.Conversations)}:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}

// buildPreviews joins conversations with counterpart profiles. A thread
// whose counterpart cannot be resolved or loaded is dropped from the list;
// partial results beat failing the whole delivery.
func (uc *InboxUseCase) buildPreviews(ctx context.Context, selfID string, convs []*entity.Conversation) []*entity.ConversationPreview {
	previews := make([]*entity.ConversationPreview, 0, len(convs))

	for _, conv := range convs {
		otherID := conv.OtherParticipant(selfID)
		if otherID == "" {
			logger.Warn("Inbox: conversation %s has no counterpart for user %s, dropping", conv.ID, selfID)
			continue
		}

		otherUser, err := uc.userRepo.GetByID(ctx, otherID)
		if err != nil {
			logger.Warn("Inbox: failed to load counterpart %s for conversation %s: %v", otherID, conv.ID, err)
			continue
		}

		previews = append(previews, &entity.ConversationPreview{
			ConversationID:      conv.ID,
			OtherUser:           otherUser,
			LastMessage:         conv.LastMessage,
			LastMessageAt:       conv.LastMessageAt,
			LastMessageSenderID: conv.LastMessageSenderID,
			UnreadCount:         uc.CountUnread(ctx, conv, selfID),
		})
	}

	return previews
}

// CountUnread computes the unread total for one conversation via a
// server-side aggregate. A missing watermark counts everything; a failed
// count yields zero.
func (uc *InboxUseCase) CountUnread(ctx context.Context, conv *entity.Conversation, selfID string) int64 {
	count, err := uc.chatRepo.CountUnread(ctx, conv.ID, selfID, conv.ReadWatermark(selfID))
	if err != nil {
		logger.Warn("Inbox: unread count for conversation %s failed: %v", conv.ID, err)
		return 0
	}

	return count
}

// LeaveConversation removes the user from the participant set. The last
// participant to leave cascades: all messages are deleted, then the
// conversation document. Every step is idempotent, so a crashed cascade can
// be resumed by leaving again.
func (uc *InboxUseCase) LeaveConversation(ctx context.Context, selfID, conversationID string) error {
	if selfID == "" {
		return errors.Unauthorized("Authentication required", nil)
	}

	conv, err := uc.chatRepo.GetConversationByID(ctx, conversationID)
	if err != nil {
		if errors.Is(err, "NOT_FOUND") {
			return nil
		}
		return err
	}

	remaining := make([]string, 0, len(conv.Participants))
	for _, p := range conv.Participants {
		if p != selfID {
			remaining = append(remaining, p)
		}
	}

	if len(remaining) > 0 {
		return uc.chatRepo.SetParticipants(ctx, conversationID, remaining)
	}

	if err := uc.chatRepo.DeleteAllMessages(ctx, conversationID); err != nil {
		return err
	}

	return uc.chatRepo.DeleteConversation(ctx, conversationID)
}
