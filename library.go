package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"mime"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/dhowden/tag"
	"github.com/go-audio/wav"
	"github.com/jfreymuth/oggvorbis"
	"github.com/mewkiz/flac"
	"github.com/tcolgate/mp3"
)

// Item is one uploaded sound as delivered by the backend.
type Item struct {
	ID        string
	Title     string
	URL       string
	Tags      []string
	Owner     string // uploader name, empty when the backend did not populate it
	CreatedAt time.Time
}

// byline is "by <owner>" followed by the upload date, whichever are known.
func (it Item) byline() string {
	var parts []string
	if it.Owner != "" {
		parts = append(parts, "by "+it.Owner)
	}
	if !it.CreatedAt.IsZero() {
		parts = append(parts, it.CreatedAt.Format("Jan 2, 2006"))
	}
	return strings.Join(parts, ", ")
}

// MediaInfo is what becomes known about a clip once its bytes are loaded.
type MediaInfo struct {
	Format   string // file extension including the dot
	Duration float64
	Title    string
	Artist   string
}

// ErrUnsupportedFormat is returned for containers the player cannot decode.
var ErrUnsupportedFormat = errors.New("unsupported audio format")

var contentTypeExt = map[string]string{
	"audio/mpeg":      ".mp3",
	"audio/mp3":       ".mp3",
	"audio/wav":       ".wav",
	"audio/wave":      ".wav",
	"audio/x-wav":     ".wav",
	"audio/ogg":       ".ogg",
	"application/ogg": ".ogg",
	"audio/vorbis":    ".ogg",
	"audio/flac":      ".flac",
	"audio/x-flac":    ".flac",
}

// formatTime renders seconds as m:ss. Minutes carry no leading zero and the
// seconds part is floor-truncated.
func formatTime(seconds float64) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		seconds = 0
	}
	minutes := int(math.Floor(seconds / 60))
	remaining := int(math.Floor(math.Mod(seconds, 60)))
	return fmt.Sprintf("%d:%02d", minutes, remaining)
}

func isFormatSupported(ext string) bool {
	switch ext {
	case ".mp3", ".wav", ".ogg", ".flac":
		return true
	}
	return false
}

// mediaExt picks the container of a clip from its locator, falling back to the
// response content type when the path carries no usable extension.
func mediaExt(locator, contentType string) string {
	p := locator
	if u, err := url.Parse(locator); err == nil {
		p = u.Path
	}
	if ext := strings.ToLower(path.Ext(p)); isFormatSupported(ext) {
		return ext
	}
	if contentType != "" {
		if mt, _, err := mime.ParseMediaType(contentType); err == nil {
			if ext, ok := contentTypeExt[mt]; ok {
				return ext
			}
		}
	}
	return strings.ToLower(path.Ext(p))
}

// ProbeMedia reads the duration and embedded tags of a fully loaded clip.
func ProbeMedia(data []byte, ext string) (MediaInfo, error) {
	info := MediaInfo{Format: ext}
	if !isFormatSupported(ext) {
		return info, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	if metadata, err := tag.ReadFrom(bytes.NewReader(data)); err == nil {
		info.Title = strings.TrimSpace(metadata.Title())
		info.Artist = strings.TrimSpace(metadata.Artist())
	}

	switch ext {
	case ".mp3":
		info.Duration = mp3Duration(bytes.NewReader(data))
	case ".wav":
		info.Duration = wavDuration(bytes.NewReader(data))
	case ".ogg":
		info.Duration = oggDuration(bytes.NewReader(data))
	case ".flac":
		info.Duration = flacDuration(bytes.NewReader(data))
	}
	return info, nil
}

func mp3Duration(r io.Reader) float64 {
	decoder := mp3.NewDecoder(r)
	var (
		frame   mp3.Frame
		skipped int
		total   time.Duration
	)
	for {
		if err := decoder.Decode(&frame, &skipped); err != nil {
			break
		}
		total += frame.Duration()
	}
	return total.Seconds()
}

func wavDuration(r io.ReadSeeker) float64 {
	decoder := wav.NewDecoder(r)
	if !decoder.IsValidFile() {
		return 0
	}
	d, err := decoder.Duration()
	if err != nil {
		return 0
	}
	return d.Seconds()
}

func oggDuration(r io.Reader) float64 {
	reader, err := oggvorbis.NewReader(r)
	if err != nil {
		return 0
	}
	if reader.SampleRate() == 0 {
		return 0
	}
	return float64(reader.Length()) / float64(reader.SampleRate())
}

func flacDuration(r io.Reader) float64 {
	stream, err := flac.New(r)
	if err != nil {
		return 0
	}
	defer stream.Close()

	info := stream.Info
	if info == nil || info.SampleRate == 0 || info.NSamples == 0 {
		return 0
	}
	return float64(info.NSamples) / float64(info.SampleRate)
}
