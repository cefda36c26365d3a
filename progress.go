package main

import (
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProgressTracker maps the playback position of the live session onto its
// card's fill and time labels, and turns seek clicks into positions.
type ProgressTracker struct {
	player *PlaybackController
	nodes  NodeLookup
	log    *zap.Logger
}

func NewProgressTracker(player *PlaybackController, nodes NodeLookup, log *zap.Logger) *ProgressTracker {
	return &ProgressTracker{player: player, nodes: nodes, log: log}
}

// TimeUpdate refreshes the display of session id from its handle. It returns
// false once id is no longer the live session.
func (t *ProgressTracker) TimeUpdate(id uuid.UUID) bool {
	s, ok := t.player.Current(id)
	if !ok {
		return false
	}
	if d := s.Handle.Duration(); d > 0 {
		s.Duration = d
	}
	t.refresh(s, s.Handle.Position())
	return true
}

// MetadataLoaded records the clip info of session id and sets the duration
// label once.
func (t *ProgressTracker) MetadataLoaded(id uuid.UUID, info MediaInfo) bool {
	s, ok := t.player.Current(id)
	if !ok {
		return false
	}
	s.Info = info
	s.Duration = info.Duration
	if n, ok := t.nodes.Card(s.ItemID); ok {
		n.Duration = formatTime(info.Duration)
	}
	t.log.Debug("media metadata loaded",
		zap.String("item", s.ItemID),
		zap.String("format", info.Format),
		zap.Float64("duration", info.Duration))
	return true
}

// Seek handles a click at offset x inside the progress track of itemID whose
// width is width cells. Only the live session's track reacts.
func (t *ProgressTracker) Seek(itemID string, x, width int) bool {
	s := t.player.Active()
	if s == nil || s.ItemID != itemID || width <= 0 {
		return false
	}
	if d := s.Handle.Duration(); d > 0 {
		s.Duration = d
	}
	target := clamp(seekFraction(x, width)*s.Duration, 0, s.Duration)
	s.Handle.Seek(target)
	t.refresh(s, target)
	t.log.Debug("seek", zap.String("item", itemID), zap.Float64("position", target))
	return true
}

func (t *ProgressTracker) refresh(s *Session, position float64) {
	s.CurrentTime = position
	n, ok := t.nodes.Card(s.ItemID)
	if !ok {
		return
	}
	n.Progress = progressFraction(position, s.Duration)
	n.Elapsed = formatTime(position)
}

// progressFraction is current/duration in [0,1]; an unknown duration counts
// as no progress.
func progressFraction(current, duration float64) float64 {
	if duration <= 0 {
		return 0
	}
	return clamp(current/duration, 0, 1)
}

// seekFraction maps cell x of a width-cell track onto [0,1] so that the first
// cell is the start and the last cell is the end.
func seekFraction(x, width int) float64 {
	if width <= 1 {
		return 0
	}
	return clamp(float64(x)/float64(width-1), 0, 1)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
