package main

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type MediaEventKind int

const (
	MediaMetadata MediaEventKind = iota
	MediaEnded
	MediaError
)

func (k MediaEventKind) String() string {
	switch k {
	case MediaMetadata:
		return "metadata"
	case MediaEnded:
		return "ended"
	case MediaError:
		return "error"
	default:
		return "unknown"
	}
}

// MediaEvent is published by a MediaHandle from outside the event loop.
type MediaEvent struct {
	Kind MediaEventKind
	Info MediaInfo
	Err  error
}

// MediaHandle is one loaded clip. Play is fire-and-forget: loading and the
// start of audio are reported through Events. After Stop the handle produces
// no sound and Done is closed.
type MediaHandle interface {
	Play()
	Stop()
	Seek(seconds float64)
	Position() float64
	Duration() float64
	Events() <-chan MediaEvent
	Done() <-chan struct{}
}

// MediaOpener acquires a handle for a playable URL.
type MediaOpener interface {
	Open(ctx context.Context, url string) MediaHandle
}

// Session is the single live playback.
type Session struct {
	ID          uuid.UUID
	ItemID      string
	URL         string
	Handle      MediaHandle
	Info        MediaInfo
	CurrentTime float64
	Duration    float64
}

// PlaybackController owns the one session slot. Every method must be called
// from the event loop.
type PlaybackController struct {
	ctx     context.Context
	opener  MediaOpener
	nodes   NodeLookup
	log     *zap.Logger
	session *Session
}

func NewPlaybackController(ctx context.Context, opener MediaOpener, nodes NodeLookup, log *zap.Logger) *PlaybackController {
	return &PlaybackController{
		ctx:    ctx,
		opener: opener,
		nodes:  nodes,
		log:    log,
	}
}

// RequestPlay toggles playback of itemID. A request for the playing item stops
// it and returns nil. Any other request stops the current session first and
// returns the newly started one.
func (c *PlaybackController) RequestPlay(itemID, url string) *Session {
	if cur := c.session; cur != nil {
		c.stopSession()
		if cur.ItemID == itemID {
			return nil
		}
	}

	s := &Session{
		ID:     uuid.New(),
		ItemID: itemID,
		URL:    url,
	}
	s.Handle = c.opener.Open(c.ctx, url)
	s.Handle.Play()
	c.session = s

	if n, ok := c.card(itemID); ok {
		n.showPlaying()
	}
	c.log.Info("playback started",
		zap.String("item", itemID),
		zap.String("session", s.ID.String()),
		zap.String("url", url))
	return s
}

// Active returns the live session or nil when idle.
func (c *PlaybackController) Active() *Session {
	return c.session
}

// Current returns the live session when id still names it.
func (c *PlaybackController) Current(id uuid.UUID) (*Session, bool) {
	if c.session == nil || c.session.ID != id {
		return nil, false
	}
	return c.session, true
}

// HandleEnded finishes the session id after its media ran out. Events of a
// session that was already replaced are dropped.
func (c *PlaybackController) HandleEnded(id uuid.UUID) bool {
	s, ok := c.Current(id)
	if !ok {
		c.log.Debug("ignoring end of stale session", zap.String("session", id.String()))
		return false
	}
	c.log.Info("playback ended", zap.String("item", s.ItemID), zap.String("session", id.String()))
	c.stopSession()
	return true
}

// HandleError tears down the session id after a load or decode failure.
func (c *PlaybackController) HandleError(id uuid.UUID, err error) bool {
	s, ok := c.Current(id)
	if !ok {
		c.log.Debug("ignoring error of stale session", zap.String("session", id.String()), zap.Error(err))
		return false
	}
	c.log.Error("playback failed",
		zap.String("item", s.ItemID),
		zap.String("url", s.URL),
		zap.Error(err))
	c.stopSession()
	return true
}

// Stop ends any live session.
func (c *PlaybackController) Stop() {
	if c.session != nil {
		c.stopSession()
	}
}

func (c *PlaybackController) stopSession() {
	s := c.session
	c.session = nil
	s.Handle.Stop()
	if n, ok := c.card(s.ItemID); ok {
		n.showIdle()
		n.resetProgress()
	}
}

func (c *PlaybackController) card(itemID string) (*CardNodes, bool) {
	n, ok := c.nodes.Card(itemID)
	if !ok {
		c.log.Debug("no display nodes for item", zap.String("item", itemID))
	}
	return n, ok
}
