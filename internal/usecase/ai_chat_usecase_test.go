package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talkapp/pkg/errors"
)

func TestAIExchangeRotatesReplies(t *testing.T) {
	uc := NewAIChatUseCase()
	ctx := context.Background()

	first, err := uc.Exchange(ctx, "alice", "Hello!")
	require.NoError(t, err)
	assert.NotEmpty(t, first.Reply)

	second, err := uc.Exchange(ctx, "alice", "I like cooking")
	require.NoError(t, err)
	assert.NotEqual(t, first.Reply, second.Reply)
}

func TestAIExchangeValidation(t *testing.T) {
	uc := NewAIChatUseCase()
	ctx := context.Background()

	_, err := uc.Exchange(ctx, "", "hi")
	assert.True(t, errors.Is(err, "UNAUTHORIZED"))

	_, err = uc.Exchange(ctx, "alice", "   ")
	assert.True(t, errors.Is(err, "BAD_REQUEST"))
}
