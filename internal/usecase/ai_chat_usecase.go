package usecase

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"talkapp/pkg/errors"
)

// AIChatUseCase backs the practice-partner screen. Response generation is
// intentionally stubbed: replies rotate through a fixed set of
// conversation prompts.
type AIChatUseCase struct {
	counter atomic.Uint64
}

func NewAIChatUseCase() *AIChatUseCase {
	return &AIChatUseCase{}
}

type AIReply struct {
	Reply     string    `json:"reply"`
	CreatedAt time.Time `json:"created_at"`
}

var cannedReplies = []string{
	"That's interesting! Can you tell me more about that?",
	"Nice! How would you say that in your native language?",
	"Good sentence. Try using the past tense this time.",
	"I see. What do you usually do on weekends?",
	"Great progress! Let's talk about your favorite food next.",
}

func (uc *AIChatUseCase) Exchange(ctx context.Context, userID, message string) (*AIReply, error) {
	if userID == "" {
		return nil, errors.Unauthorized("Authentication required", nil)
	}
	if strings.TrimSpace(message) == "" {
		return nil, errors.BadRequest("Message cannot be empty", nil)
	}

	n := uc.counter.Add(1)
	return &AIReply{
		Reply:     cannedReplies[int(n)%len(cannedReplies)],
		CreatedAt: time.Now(),
	}, nil
}
