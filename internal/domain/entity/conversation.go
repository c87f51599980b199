package entity

import (
	"strings"
	"time"
)

// Conversation is a two-party messaging thread. Its document ID is the
// deterministic pair key of the two participants, so resolving a thread for
// an unordered pair is a single lookup and concurrent creates collapse into
// one document.
type Conversation struct {
	ID                  string               `json:"id" firestore:"id"`
	Participants        []string             `json:"participants" firestore:"participants"`
	LastMessage         string               `json:"last_message" firestore:"lastMessage"`
	LastMessageAt       time.Time            `json:"last_message_at" firestore:"lastMessageAt"`
	LastMessageSenderID string               `json:"last_message_sender_id" firestore:"lastMessageSenderId"`
	LastRead            map[string]time.Time `json:"last_read" firestore:"lastRead"`
	CreatedAt           time.Time            `json:"created_at" firestore:"createdAt"`
	UpdatedAt           time.Time            `json:"updated_at" firestore:"updatedAt"`
}

// PairKey derives the canonical conversation ID for an unordered pair of
// user IDs: the two IDs sorted lexicographically and joined with "_".
func PairKey(userID1, userID2 string) string {
	if strings.Compare(userID1, userID2) > 0 {
		userID1, userID2 = userID2, userID1
	}
	return userID1 + "_" + userID2
}

func (c *Conversation) HasParticipant(userID string) bool {
	for _, p := range c.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

// OtherParticipant returns the counterpart of userID, or "" when the
// conversation has no other participant (corrupted or already left).
func (c *Conversation) OtherParticipant(userID string) string {
	for _, p := range c.Participants {
		if p != userID {
			return p
		}
	}
	return ""
}

// ReadWatermark returns userID's last-read watermark. A missing entry is the
// zero time, which makes every message count as unread.
func (c *Conversation) ReadWatermark(userID string) time.Time {
	if c.LastRead == nil {
		return time.Time{}
	}
	return c.LastRead[userID]
}

// ConversationPreview joins a conversation with the counterpart's profile and
// a freshly computed unread count. It is derived state, never persisted.
type ConversationPreview struct {
	ConversationID      string    `json:"conversation_id"`
	OtherUser           *User     `json:"other_user"`
	LastMessage         string    `json:"last_message"`
	LastMessageAt       time.Time `json:"last_message_at"`
	LastMessageSenderID string    `json:"last_message_sender_id"`
	UnreadCount         int64     `json:"unread_count"`
}
