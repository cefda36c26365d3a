package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCardNodesDefaults(t *testing.T) {
	n := newCardNodes("42")
	assert.Equal(t, "42", n.ItemID)
	assert.False(t, n.Playing)
	assert.Equal(t, iconPlay, n.Icon)
	assert.Equal(t, "Play", n.Label)
	assert.Equal(t, "0:00", n.Elapsed)
	assert.Equal(t, "0:00", n.Duration)
	assert.Zero(t, n.Progress)
}

func TestCardNodesResetKeepsDuration(t *testing.T) {
	n := newCardNodes("42")
	n.showPlaying()
	n.Progress = 0.5
	n.Elapsed = "0:30"
	n.Duration = "1:00"

	n.showIdle()
	n.resetProgress()

	assert.False(t, n.Playing)
	assert.Equal(t, iconPlay, n.Icon)
	assert.Equal(t, "Play", n.Label)
	assert.Zero(t, n.Progress)
	assert.Equal(t, "0:00", n.Elapsed)
	assert.Equal(t, "1:00", n.Duration)
}

func TestBoardSyncKeepsExistingNodes(t *testing.T) {
	b := NewBoard()
	b.Sync(sampleItems())
	require.Equal(t, 4, b.Len())

	rain, ok := b.Card("1")
	require.True(t, ok)
	rain.showPlaying()

	b.Sync(sampleItems()[:2])
	assert.Equal(t, 2, b.Len())

	again, ok := b.Card("1")
	require.True(t, ok)
	assert.Same(t, rain, again)
	assert.True(t, again.Playing)

	_, ok = b.Card("3")
	assert.False(t, ok)
}

func TestNodeIDs(t *testing.T) {
	assert.Equal(t, "card-abc", nodeID(roleCard, "abc"))
	assert.Equal(t, "play-icon-abc", nodeID(rolePlayIcon, "abc"))
	assert.Equal(t, "play-text-abc", nodeID(rolePlayText, "abc"))
	assert.Equal(t, "progress-abc", nodeID(roleProgress, "abc"))
	assert.Equal(t, "current-time-abc", nodeID(roleCurrentTime, "abc"))
	assert.Equal(t, "duration-abc", nodeID(roleDuration, "abc"))
}
