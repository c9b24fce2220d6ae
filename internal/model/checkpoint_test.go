package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewCheckpoint(t *testing.T) {
	cp := NewCheckpoint([]string{"alpha", "beta"}, time.Now().UTC())

	assert.Equal(t, CheckpointVersion, cp.Version)
	assert.False(t, cp.Complete())
	assert.Equal(t, FeedPending, cp.Progress("alpha").State)
	assert.Equal(t, FeedPending, cp.Progress("unknown").State)
}

func TestCheckpointHasRecord(t *testing.T) {
	cp := &Checkpoint{
		Records: []RawFeedRecord{{ExternalID: "1", FeedName: "alpha"}},
	}

	assert.True(t, cp.HasRecord("alpha:1"))
	assert.False(t, cp.HasRecord("beta:1"))
}

func TestProgressOnNil(t *testing.T) {
	var cp *Checkpoint
	assert.Equal(t, FeedPending, cp.Progress("alpha").State)
	assert.False(t, cp.Complete())
}
