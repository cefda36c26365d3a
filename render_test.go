package main

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func testRenderer() Renderer {
	return NewRenderer(builtinThemes()["default"], nil)
}

func TestProgressTrackFill(t *testing.T) {
	r := testRenderer()

	tests := []struct {
		name     string
		progress float64
		full     int
		empty    int
		partial  string
	}{
		{"empty", 0, 0, 10, ""},
		{"half", 0.5, 5, 5, ""},
		{"leading edge", 0.55, 5, 4, "▌"},
		{"complete", 1, 10, 0, ""},
		{"over", 1.5, 10, 0, ""},
		{"under", -0.5, 0, 10, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			track := r.ProgressTrack(tt.progress, 10)
			assert.Equal(t, tt.full, strings.Count(track, "█"))
			assert.Equal(t, tt.empty, strings.Count(track, "░"))
			if tt.partial != "" {
				assert.Contains(t, track, tt.partial)
			}
		})
	}
}

func TestColumns(t *testing.T) {
	assert.Equal(t, 1, columns(0))
	assert.Equal(t, 1, columns(cardWidth))
	assert.Equal(t, 2, columns(2*cardWidth+cardGap))
	assert.Equal(t, 3, columns(120))
}

func TestTruncateToWidth(t *testing.T) {
	assert.Equal(t, "Rain", truncateToWidth("Rain", 10))
	assert.Equal(t, "Thun…", truncateToWidth("Thunderstorm", 5))
	assert.Equal(t, "", truncateToWidth("Rain", 0))
}

func TestCardShowsNodeState(t *testing.T) {
	r := testRenderer()
	item := Item{ID: "1", Title: "Rain", Owner: "ana", Tags: []string{"nature", "calm"}}

	n := newCardNodes("1")
	idle := r.Card(item, n, false)
	assert.Contains(t, idle, "Rain")
	assert.Contains(t, idle, "by ana")
	assert.Contains(t, idle, iconPlay+" Play")
	assert.Contains(t, idle, "#nature #calm")
	assert.Contains(t, idle, "0:00")

	n.showPlaying()
	n.Elapsed = "0:12"
	n.Duration = "1:05"
	playing := r.Card(item, n, true)
	assert.Contains(t, playing, iconPause+" Pause")
	assert.Contains(t, playing, "0:12")
	assert.Contains(t, playing, "1:05")
}

func TestCardBylineShowsUploadDate(t *testing.T) {
	r := testRenderer()
	uploaded := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	card := r.Card(Item{ID: "1", Title: "Rain", Owner: "ana", CreatedAt: uploaded}, newCardNodes("1"), false)
	assert.Contains(t, card, "by ana, Mar 1, 2024")

	anonymous := Item{ID: "2", Title: "Wind", CreatedAt: uploaded}
	assert.Equal(t, "Mar 1, 2024", anonymous.byline())
	assert.Empty(t, Item{ID: "3"}.byline())
}

func TestNowPlayingShowsEmbeddedTitle(t *testing.T) {
	r := testRenderer()
	item := Item{ID: "1", Title: "Rain", Owner: "ana"}

	s := &Session{ItemID: "1", CurrentTime: 12, Duration: 65, Info: MediaInfo{Title: "Storm Front", Artist: "Field"}}
	panel := r.NowPlaying(item, s, nil, 80)
	assert.Contains(t, panel, "Now Playing")
	assert.Contains(t, panel, "Rain (Storm Front) - Field")
	assert.Contains(t, panel, "0:12 / 1:05")

	// An embedded title equal to the upload title is not repeated.
	s.Info = MediaInfo{Title: "rain"}
	panel = r.NowPlaying(item, s, nil, 80)
	assert.Contains(t, panel, "Rain - ana")
	assert.NotContains(t, panel, "(rain)")
}

func TestGridFollowsVisibleOrder(t *testing.T) {
	r := testRenderer()
	board := NewBoard()
	items := sampleItems()
	board.Sync(items)

	grid := r.Grid(items[:2], board, "2", 200)
	assert.Contains(t, grid, "Rain")
	assert.Contains(t, grid, "Thunder")
	assert.NotContains(t, grid, "Drum Loop")
	assert.Less(t, strings.Index(grid, "Rain"), strings.Index(grid, "Thunder"))

	assert.Contains(t, r.Grid(nil, board, "", 80), "No sounds match.")
}

func TestGridRendersUnknownItemWithDefaults(t *testing.T) {
	r := testRenderer()
	grid := r.Grid([]Item{{ID: "x", Title: "Stray"}}, NewBoard(), "", 80)
	assert.Contains(t, grid, "Stray")
	assert.Contains(t, grid, "Play")
}

func TestTagChips(t *testing.T) {
	r := testRenderer()
	assert.Empty(t, r.TagChips(nil, FilterState{}))

	chips := r.TagChips([]string{"nature", "calm"}, FilterState{SelectedTag: "calm", TagSelected: true})
	assert.Contains(t, chips, "1:nature")
	assert.Contains(t, chips, "2:calm")
}

func TestLevelMeter(t *testing.T) {
	r := testRenderer()
	assert.Empty(t, r.LevelMeter(nil, 16, 3))
	assert.NotEmpty(t, r.LevelMeter([]float64{0.1, 0.3, 0.2, 0.05}, 16, 3))
}

func TestGradientEndpoints(t *testing.T) {
	theme := builtinThemes()["cyberpunk"]
	styles := makeProgressGradient(3, theme)
	assert.Len(t, styles, 3)

	assert.Equal(t, "#00ffff", rgbToHex(colorCodeToRGB(theme.GradientStart)))
	assert.Equal(t, "#ff00ff", rgbToHex(colorCodeToRGB(theme.GradientEnd)))
	assert.Equal(t, RGB{127.5, 127.5, 255}, blendColors(RGB{0, 0, 255}, RGB{255, 255, 255}, 0.5))
	assert.Equal(t, RGB{128, 128, 128}, colorCodeToRGB("999"))
}
