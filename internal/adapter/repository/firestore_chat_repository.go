package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/firestore/apiv1/firestorepb"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"talkapp/internal/domain/entity"
	"talkapp/internal/domain/repository"
	"talkapp/pkg/errors"
	"talkapp/pkg/logger"
)

type firestoreChatRepository struct {
	client *firestore.Client
}

func NewFirestoreChatRepository(client *firestore.Client) repository.ChatRepository {
	return &firestoreChatRepository{
		client: client,
	}
}

func (r *firestoreChatRepository) conversations() *firestore.CollectionRef {
	return r.client.Collection("conversations")
}

func (r *firestoreChatRepository) messages(conversationID string) *firestore.CollectionRef {
	return r.conversations().Doc(conversationID).Collection("messages")
}

// CreateConversation writes the document under its pair-key ID with
// create-if-absent semantics. A concurrent create of the same pair surfaces
// as CONFLICT, which callers resolve by re-reading the winner.
func (r *firestoreChatRepository) CreateConversation(ctx context.Context, conv *entity.Conversation) error {
	now := time.Now()
	conv.CreatedAt = now
	conv.UpdatedAt = now

	_, err := r.conversations().Doc(conv.ID).Create(ctx, conv)
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return errors.Conflict("Conversation already exists")
		}
		return errors.Internal("Failed to create conversation", err)
	}

	return nil
}

func (r *firestoreChatRepository) GetConversationByID(ctx context.Context, id string) (*entity.Conversation, error) {
	doc, err := r.conversations().Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Conversation", nil)
		}
		return nil, errors.Internal("Failed to get conversation", err)
	}

	var conv entity.Conversation
	if err := doc.DataTo(&conv); err != nil {
		return nil, errors.Internal("Failed to parse conversation data", err)
	}
	conv.ID = doc.Ref.ID

	return &conv, nil
}

func (r *firestoreChatRepository) ListConversationsByUserID(ctx context.Context, userID string) ([]*entity.Conversation, error) {
	query := r.conversations().
		Where("participants", "array-contains", userID).
		OrderBy("lastMessageAt", firestore.Desc)

	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		logger.Error("Firestore error while fetching conversations for user %s: %v", userID, err)
		return nil, errors.Internal("Failed to fetch conversations", err)
	}

	var convs []*entity.Conversation
	for _, doc := range docs {
		var conv entity.Conversation
		if err := doc.DataTo(&conv); err != nil {
			logger.Warn("Skipping malformed conversation %s: %v", doc.Ref.ID, err)
			continue
		}
		conv.ID = doc.Ref.ID
		convs = append(convs, &conv)
	}

	return convs, nil
}

func (r *firestoreChatRepository) ListenConversationsByUserID(ctx context.Context, userID string) (<-chan repository.ConversationsSnapshot, error) {
	query := r.conversations().
		Where("participants", "array-contains", userID).
		OrderBy("lastMessageAt", firestore.Desc)

	snaps := query.Snapshots(ctx)
	out := make(chan repository.ConversationsSnapshot, 1)

	go func() {
		defer snaps.Stop()
		defer close(out)

		for {
			snap, err := snaps.Next()
			if err != nil {
				if status.Code(err) == codes.Canceled {
					return
				}
				logger.Error("Conversation listener for user %s failed: %v", userID, err)
				out <- repository.ConversationsSnapshot{Err: errors.Internal("Conversation subscription failed", err)}
				return
			}

			docs, err := snap.Documents.GetAll()
			if err != nil {
				logger.Error("Conversation listener for user %s failed reading snapshot: %v", userID, err)
				out <- repository.ConversationsSnapshot{Err: errors.Internal("Conversation subscription failed", err)}
				return
			}

			var convs []*entity.Conversation
			for _, doc := range docs {
				var conv entity.Conversation
				if err := doc.DataTo(&conv); err != nil {
					logger.Warn("Skipping malformed conversation %s: %v", doc.Ref.ID, err)
					continue
				}
				conv.ID = doc.Ref.ID
				convs = append(convs, &conv)
			}

			select {
			case out <- repository.ConversationsSnapshot{Conversations: convs}:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}

func (r *firestoreChatRepository) SetParticipants(ctx context.Context, conversationID string, participants []string) error {
	_, err := r.conversations().Doc(conversationID).Update(ctx, []firestore.Update{
		{Path: "participants", Value: participants},
		{Path: "updatedAt", Value: time.Now()},
	})
	if err != nil {
		return errors.Internal("Failed to update participants", err)
	}

	return nil
}

func (r *firestoreChatRepository) SetLastMessage(ctx context.Context, conversationID, content, senderID string, at time.Time) error {
	_, err := r.conversations().Doc(conversationID).Update(ctx, []firestore.Update{
		{Path: "lastMessage", Value: content},
		{Path: "lastMessageAt", Value: at},
		{Path: "lastMessageSenderId", Value: senderID},
		{Path: "updatedAt", Value: time.Now()},
	})
	if err != nil {
		return errors.Internal("Failed to update last message", err)
	}

	return nil
}

func (r *firestoreChatRepository) SetLastRead(ctx context.Context, conversationID, userID string, at time.Time) error {
	// FieldPath keeps arbitrary user IDs safe as map keys.
	_, err := r.conversations().Doc(conversationID).Update(ctx, []firestore.Update{
		{FieldPath: firestore.FieldPath{"lastRead", userID}, Value: at},
	})
	if err != nil {
		return errors.Internal("Failed to update read watermark", err)
	}

	return nil
}

func (r *firestoreChatRepository) DeleteConversation(ctx context.Context, id string) error {
	_, err := r.conversations().Doc(id).Delete(ctx)
	if err != nil && status.Code(err) != codes.NotFound {
		return errors.Internal("Failed to delete conversation", err)
	}

	return nil
}

func (r *firestoreChatRepository) CreateMessage(ctx context.Context, message *entity.Message) error {
	if message.ID == "" {
		message.ID = uuid.New().String()
	}

	_, err := r.messages(message.ConversationID).Doc(message.ID).Set(ctx, message)
	if err != nil {
		return errors.Internal("Failed to create message", err)
	}

	return nil
}

func (r *firestoreChatRepository) GetMessageByID(ctx context.Context, conversationID, messageID string) (*entity.Message, error) {
	doc, err := r.messages(conversationID).Doc(messageID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Message", nil)
		}
		return nil, errors.Internal("Failed to get message", err)
	}

	var message entity.Message
	if err := doc.DataTo(&message); err != nil {
		return nil, errors.Internal("Failed to parse message data", err)
	}
	message.ID = doc.Ref.ID

	return &message, nil
}

// messageQuery orders ascending by timestamp with document ID as the
// tie-break, so deliveries are stable when two messages share a timestamp.
func (r *firestoreChatRepository) messageQuery(conversationID string) firestore.Query {
	return r.messages(conversationID).
		OrderBy("createdAt", firestore.Asc).
		OrderBy(firestore.DocumentID, firestore.Asc)
}

func (r *firestoreChatRepository) ListMessages(ctx context.Context, conversationID string) ([]*entity.Message, error) {
	iter := r.messageQuery(conversationID).Documents(ctx)

	var messages []*entity.Message
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			logger.Error("Firestore error while iterating messages for conversation %s: %v", conversationID, err)
			return nil, errors.Internal("Failed to iterate messages", err)
		}

		var message entity.Message
		if err := doc.DataTo(&message); err != nil {
			logger.Warn("Skipping malformed message %s in conversation %s: %v", doc.Ref.ID, conversationID, err)
			continue
		}
		message.ID = doc.Ref.ID
		messages = append(messages, &message)
	}

	return messages, nil
}

func (r *firestoreChatRepository) ListenMessages(ctx context.Context, conversationID string) (<-chan repository.MessagesSnapshot, error) {
	snaps := r.messageQuery(conversationID).Snapshots(ctx)
	out := make(chan repository.MessagesSnapshot, 1)

	go func() {
		defer snaps.Stop()
		defer close(out)

		for {
			snap, err := snaps.Next()
			if err != nil {
				if status.Code(err) == codes.Canceled {
					return
				}
				logger.Error("Message listener for conversation %s failed: %v", conversationID, err)
				out <- repository.MessagesSnapshot{Err: errors.Internal("Message subscription failed", err)}
				return
			}

			docs, err := snap.Documents.GetAll()
			if err != nil {
				logger.Error("Message listener for conversation %s failed reading snapshot: %v", conversationID, err)
				out <- repository.MessagesSnapshot{Err: errors.Internal("Message subscription failed", err)}
				return
			}

			var messages []*entity.Message
			for _, doc := range docs {
				var message entity.Message
				if err := doc.DataTo(&message); err != nil {
					logger.Warn("Skipping malformed message %s in conversation %s: %v", doc.Ref.ID, conversationID, err)
					continue
				}
				message.ID = doc.Ref.ID
				messages = append(messages, &message)
			}

			select {
			case out <- repository.MessagesSnapshot{Messages: messages}:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}

func (r *firestoreChatRepository) LatestMessage(ctx context.Context, conversationID string) (*entity.Message, error) {
	iter := r.messages(conversationID).
		OrderBy("createdAt", firestore.Desc).
		Limit(1).
		Documents(ctx)

	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, errors.NotFound("Message", nil)
	}
	if err != nil {
		return nil, errors.Internal("Failed to query latest message", err)
	}

	var message entity.Message
	if err := doc.DataTo(&message); err != nil {
		return nil, errors.Internal("Failed to parse message data", err)
	}
	message.ID = doc.Ref.ID

	return &message, nil
}

func (r *firestoreChatRepository) ListUnreadMessages(ctx context.Context, conversationID, excludeSenderID string) ([]*entity.Message, error) {
	query := r.messages(conversationID).
		Where("read", "==", false).
		Where("senderId", "!=", excludeSenderID)

	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, errors.Internal("Failed to query unread messages", err)
	}

	var messages []*entity.Message
	for _, doc := range docs {
		var message entity.Message
		if err := doc.DataTo(&message); err != nil {
			continue
		}
		message.ID = doc.Ref.ID
		messages = append(messages, &message)
	}

	return messages, nil
}

func (r *firestoreChatRepository) MarkMessageRead(ctx context.Context, conversationID, messageID string) error {
	_, err := r.messages(conversationID).Doc(messageID).Update(ctx, []firestore.Update{
		{Path: "read", Value: true},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			// Message deleted concurrently, nothing to mark.
			return nil
		}
		return errors.Internal("Failed to mark message read", err)
	}

	return nil
}

func (r *firestoreChatRepository) DeleteMessage(ctx context.Context, conversationID, messageID string) error {
	_, err := r.messages(conversationID).Doc(messageID).Delete(ctx)
	if err != nil && status.Code(err) != codes.NotFound {
		return errors.Internal("Failed to delete message", err)
	}

	return nil
}

func (r *firestoreChatRepository) DeleteAllMessages(ctx context.Context, conversationID string) error {
	iter := r.messages(conversationID).Documents(ctx)

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return errors.Internal("Failed to iterate messages for deletion", err)
		}

		if _, err := doc.Ref.Delete(ctx); err != nil && status.Code(err) != codes.NotFound {
			return errors.Internal("Failed to delete message", err)
		}
	}

	return nil
}

// CountUnread runs a server-side aggregation over messages newer than the
// reader's watermark, sent by the counterpart and still unread.
func (r *firestoreChatRepository) CountUnread(ctx context.Context, conversationID, userID string, since time.Time) (int64, error) {
	query := r.messages(conversationID).
		Where("createdAt", ">", since).
		Where("senderId", "!=", userID).
		Where("read", "==", false)

	results, err := query.NewAggregationQuery().WithCount("unread").Get(ctx)
	if err != nil {
		return 0, errors.Internal("Failed to count unread messages", err)
	}

	value, ok := results["unread"]
	if !ok {
		return 0, errors.Internal("Unread aggregation returned no value", nil)
	}

	count, ok := value.(*firestorepb.Value)
	if !ok {
		return 0, errors.Internal("Unread aggregation returned unexpected type", nil)
	}

	return count.GetIntegerValue(), nil
}
