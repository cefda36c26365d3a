package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/flac"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/speaker"
	"github.com/gopxl/beep/vorbis"
	"github.com/gopxl/beep/wav"
	"go.uber.org/zap"
)

const (
	// Uploads are capped at 5MB by the backend; leave some headroom.
	maxClipBytes = 8 << 20
	levelBands   = 16
)

// memFile lets decoders seek inside a downloaded clip.
type memFile struct {
	*bytes.Reader
}

func (memFile) Close() error { return nil }

// levelCapture wraps a streamer and keeps RMS levels for the meter.
type levelCapture struct {
	streamer     beep.Streamer
	handle       *beepHandle
	sampleBuffer []float64
	bufferSize   int
}

func newLevelCapture(streamer beep.Streamer, handle *beepHandle) *levelCapture {
	return &levelCapture{
		streamer:     streamer,
		handle:       handle,
		sampleBuffer: make([]float64, 0, 1024),
		bufferSize:   1024,
	}
}

func (s *levelCapture) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = s.streamer.Stream(samples)
	if ok && n > 0 {
		for i := 0; i < n; i++ {
			s.sampleBuffer = append(s.sampleBuffer, (samples[i][0]+samples[i][1])/2.0)
		}
		if len(s.sampleBuffer) >= s.bufferSize {
			s.handle.storeLevels(bandLevels(s.sampleBuffer, levelBands))
			s.sampleBuffer = s.sampleBuffer[:0]
		}
	}
	return n, ok
}

func (s *levelCapture) Err() error {
	return s.streamer.Err()
}

// bandLevels splits samples into equal segments and returns the RMS of each.
func bandLevels(samples []float64, bands int) []float64 {
	levels := make([]float64, bands)
	bandSize := len(samples) / bands
	if bandSize == 0 {
		return levels
	}
	for band := 0; band < bands; band++ {
		start := band * bandSize
		var sum float64
		for i := start; i < start+bandSize; i++ {
			sum += samples[i] * samples[i]
		}
		levels[band] = math.Sqrt(sum / float64(bandSize))
	}
	return levels
}

// MediaEngine plays clips through the one speaker of the process.
type MediaEngine struct {
	client *http.Client
	mixer  *beep.Mixer
	rate   beep.SampleRate
	log    *zap.Logger
}

// NewMediaEngine initializes the speaker at 44.1kHz.
func NewMediaEngine(client *http.Client, log *zap.Logger) (*MediaEngine, error) {
	e := newMediaEngine(client, log)
	if err := speaker.Init(e.rate, e.rate.N(time.Second/10)); err != nil {
		return nil, fmt.Errorf("init speaker: %w", err)
	}
	speaker.Play(e.mixer)
	log.Debug("speaker initialized", zap.Int("rate", int(e.rate)))
	return e, nil
}

func newMediaEngine(client *http.Client, log *zap.Logger) *MediaEngine {
	if client == nil {
		client = &http.Client{}
	}
	return &MediaEngine{
		client: client,
		mixer:  &beep.Mixer{},
		rate:   beep.SampleRate(44100),
		log:    log,
	}
}

// Open returns a handle for url. Nothing is fetched until Play.
func (e *MediaEngine) Open(ctx context.Context, url string) MediaHandle {
	ctx, cancel := context.WithCancel(ctx)
	return &beepHandle{
		engine: e,
		url:    url,
		ctx:    ctx,
		cancel: cancel,
		events: make(chan MediaEvent, 4),
		done:   make(chan struct{}),
	}
}

func (e *MediaEngine) Close() {
	speaker.Lock()
	e.mixer.Clear()
	speaker.Unlock()
	speaker.Close()
}

// download reads a whole clip into memory.
func (e *MediaEngine) download(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "audio/*")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to fetch clip: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("clip returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxClipBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read clip: %w", err)
	}
	if len(data) > maxClipBytes {
		return nil, "", fmt.Errorf("clip exceeds %d bytes", maxClipBytes)
	}
	return data, resp.Header.Get("Content-Type"), nil
}

// decodeMedia opens a seekable decoder for an in-memory clip.
func decodeMedia(data []byte, ext string) (beep.StreamSeekCloser, beep.Format, error) {
	src := memFile{bytes.NewReader(data)}
	switch ext {
	case ".mp3":
		return mp3.Decode(src)
	case ".wav":
		return wav.Decode(src)
	case ".flac":
		return flac.Decode(src)
	case ".ogg":
		return vorbis.Decode(src)
	default:
		return nil, beep.Format{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// beepHandle is one clip in the engine's mixer. Fields marked speaker are only
// touched with the speaker lock held.
type beepHandle struct {
	engine *MediaEngine
	url    string
	ctx    context.Context
	cancel context.CancelFunc
	events chan MediaEvent
	done   chan struct{}
	once   sync.Once

	// speaker
	ctrl     *beep.Ctrl
	streamer beep.StreamSeekCloser
	format   beep.Format
	stopped  bool

	mu       sync.Mutex
	duration float64
	levels   []float64
}

func (h *beepHandle) Play() {
	go h.load()
}

func (h *beepHandle) load() {
	log := h.engine.log.With(zap.String("url", h.url))

	data, contentType, err := h.engine.download(h.ctx, h.url)
	if err != nil {
		h.fail(err)
		return
	}
	ext := mediaExt(h.url, contentType)
	info, err := ProbeMedia(data, ext)
	if err != nil {
		h.fail(err)
		return
	}
	streamer, format, err := decodeMedia(data, ext)
	if err != nil {
		h.fail(fmt.Errorf("decode %s: %w", ext, err))
		return
	}
	if info.Duration <= 0 && streamer.Len() > 0 {
		info.Duration = format.SampleRate.D(streamer.Len()).Seconds()
	}
	log.Debug("clip decoded",
		zap.String("format", ext),
		zap.Int("sampleRate", int(format.SampleRate)),
		zap.Float64("duration", info.Duration))

	h.mu.Lock()
	h.duration = info.Duration
	h.mu.Unlock()
	h.emit(MediaEvent{Kind: MediaMetadata, Info: info})

	resampled := beep.Resample(4, format.SampleRate, h.engine.rate, streamer)

	speaker.Lock()
	if h.stopped {
		speaker.Unlock()
		streamer.Close()
		return
	}
	h.streamer = streamer
	h.format = format
	h.ctrl = &beep.Ctrl{Streamer: newLevelCapture(resampled, h)}
	h.engine.mixer.Add(beep.Seq(h.ctrl, beep.Callback(h.finished)))
	speaker.Unlock()
}

// finished runs on the speaker goroutine with the speaker lock held.
func (h *beepHandle) finished() {
	if h.stopped {
		return
	}
	h.stopped = true
	if h.streamer != nil {
		h.streamer.Close()
		h.streamer = nil
	}
	h.emit(MediaEvent{Kind: MediaEnded})
}

func (h *beepHandle) fail(err error) {
	if h.ctx.Err() != nil {
		return
	}
	h.emit(MediaEvent{Kind: MediaError, Err: err})
}

func (h *beepHandle) emit(ev MediaEvent) {
	select {
	case h.events <- ev:
	case <-h.done:
	}
}

func (h *beepHandle) Stop() {
	h.once.Do(func() {
		h.cancel()
		speaker.Lock()
		h.stopped = true
		if h.ctrl != nil {
			h.ctrl.Paused = true
			h.ctrl.Streamer = nil
		}
		streamer := h.streamer
		h.streamer = nil
		speaker.Unlock()
		if streamer != nil {
			streamer.Close()
		}
		close(h.done)
	})
}

func (h *beepHandle) Seek(seconds float64) {
	speaker.Lock()
	defer speaker.Unlock()
	if h.streamer == nil {
		return
	}
	n := h.format.SampleRate.N(time.Duration(seconds * float64(time.Second)))
	if n < 0 {
		n = 0
	}
	if l := h.streamer.Len(); n > l {
		n = l
	}
	if err := h.streamer.Seek(n); err != nil {
		h.engine.log.Warn("seek failed", zap.String("url", h.url), zap.Error(err))
	}
}

func (h *beepHandle) Position() float64 {
	speaker.Lock()
	defer speaker.Unlock()
	if h.streamer == nil {
		return 0
	}
	return h.format.SampleRate.D(h.streamer.Position()).Seconds()
}

func (h *beepHandle) Duration() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.duration
}

func (h *beepHandle) Events() <-chan MediaEvent { return h.events }
func (h *beepHandle) Done() <-chan struct{}     { return h.done }

func (h *beepHandle) storeLevels(levels []float64) {
	h.mu.Lock()
	h.levels = levels
	h.mu.Unlock()
}

// Levels returns a copy of the latest RMS bands.
func (h *beepHandle) Levels() []float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	levels := make([]float64, len(h.levels))
	copy(levels, h.levels)
	return levels
}
