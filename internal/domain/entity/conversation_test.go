package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPairKeyIsOrderIndependent(t *testing.T) {
	assert.Equal(t, PairKey("alice", "bob"), PairKey("bob", "alice"))
	assert.Equal(t, "alice_bob", PairKey("bob", "alice"))
}

func TestPairKeyDistinctPairs(t *testing.T) {
	assert.NotEqual(t, PairKey("alice", "bob"), PairKey("alice", "carol"))
}

func TestOtherParticipant(t *testing.T) {
	conv := &Conversation{Participants: []string{"alice", "bob"}}

	assert.Equal(t, "bob", conv.OtherParticipant("alice"))
	assert.Equal(t, "alice", conv.OtherParticipant("bob"))

	solo := &Conversation{Participants: []string{"alice"}}
	assert.Equal(t, "", solo.OtherParticipant("alice"))
}

func TestReadWatermarkDefaultsToZero(t *testing.T) {
	conv := &Conversation{}
	assert.True(t, conv.ReadWatermark("alice").IsZero())

	now := time.Now()
	conv.LastRead = map[string]time.Time{"alice": now}
	assert.Equal(t, now, conv.ReadWatermark("alice"))
	assert.True(t, conv.ReadWatermark("bob").IsZero())
}

func TestHasParticipant(t *testing.T) {
	conv := &Conversation{Participants: []string{"alice", "bob"}}

	assert.True(t, conv.HasParticipant("alice"))
	assert.False(t, conv.HasParticipant("mallory"))
}
