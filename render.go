package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
)

const (
	cardWidth     = 34
	cardGap       = 1
	cardHeight    = 8 // six content lines plus border
	trackWidth    = cardWidth - 4
	searchZoneID  = "search"
	chipZonePrefx = "tag-"
)

func chipZoneID(tag string) string {
	return chipZonePrefx + tag
}

// Renderer projects filter and board state into terminal text. It never
// mutates what it draws.
type Renderer struct {
	theme    Theme
	styles   ThemeStyles
	zones    *zone.Manager
	gradient []lipgloss.Style
}

func NewRenderer(theme Theme, zones *zone.Manager) Renderer {
	return Renderer{
		theme:    theme,
		styles:   theme.Styles(),
		zones:    zones,
		gradient: makeProgressGradient(trackWidth, theme),
	}
}

func (r Renderer) mark(id, s string) string {
	if r.zones == nil {
		return s
	}
	return r.zones.Mark(id, s)
}

// columns is how many cards fit side by side in width cells.
func columns(width int) int {
	cols := (width + cardGap) / (cardWidth + cardGap)
	if cols < 1 {
		return 1
	}
	return cols
}

// Grid draws one card per visible item, in order, wrapped into rows.
func (r Renderer) Grid(visible []Item, nodes NodeLookup, cursorID string, width int) string {
	if len(visible) == 0 {
		return r.styles.Muted.PaddingLeft(2).Render("No sounds match.")
	}
	cols := columns(width)
	var rows []string
	for start := 0; start < len(visible); start += cols {
		end := start + cols
		if end > len(visible) {
			end = len(visible)
		}
		var cards []string
		for i, item := range visible[start:end] {
			if i > 0 {
				cards = append(cards, strings.Repeat(" ", cardGap))
			}
			n, ok := nodes.Card(item.ID)
			if !ok {
				n = newCardNodes(item.ID)
			}
			cards = append(cards, r.Card(item, n, item.ID == cursorID))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// Card draws a single item card.
func (r Renderer) Card(item Item, n *CardNodes, selected bool) string {
	inner := cardWidth - 4

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(r.theme.Foreground))
	title := truncateToWidth(item.Title, inner)
	if n.Playing {
		titleStyle = titleStyle.Foreground(lipgloss.Color(r.theme.Primary))
		title = truncateToWidth("♪ "+item.Title, inner)
	}

	owner := truncateToWidth(item.byline(), inner)

	button := r.mark(nodeID(rolePlayIcon, item.ID), n.Icon) + " " +
		r.mark(nodeID(rolePlayText, item.ID), n.Label)
	buttonStyle := r.styles.Foreground.Bold(true)
	if n.Playing {
		buttonStyle = r.styles.Primary.Bold(true)
	}

	track := r.mark(nodeID(roleProgress, item.ID), r.ProgressTrack(n.Progress, trackWidth))

	elapsed := r.mark(nodeID(roleCurrentTime, item.ID), n.Elapsed)
	duration := r.mark(nodeID(roleDuration, item.ID), n.Duration)
	gap := inner - lipgloss.Width(n.Elapsed) - lipgloss.Width(n.Duration)
	if gap < 1 {
		gap = 1
	}
	times := r.styles.Muted.Render(elapsed + strings.Repeat(" ", gap) + duration)

	var tagLabels []string
	for _, t := range item.Tags {
		tagLabels = append(tagLabels, "#"+t)
	}
	tags := r.styles.Secondary.Render(truncateToWidth(strings.Join(tagLabels, " "), inner))

	content := strings.Join([]string{
		titleStyle.Render(title),
		r.styles.Muted.Render(owner),
		buttonStyle.Render(button),
		track,
		times,
		tags,
	}, "\n")

	border := r.theme.Border
	switch {
	case n.Playing:
		border = r.theme.Primary
	case selected:
		border = r.theme.Highlight
	}
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(border)).
		Width(cardWidth-2).
		Padding(0, 1)
	if selected {
		box = box.BorderStyle(lipgloss.ThickBorder())
	}
	return r.mark(nodeID(roleCard, item.ID), box.Render(content))
}

// TagChips draws one chip per tag with its active/inactive class.
func (r Renderer) TagChips(tags []string, state FilterState) string {
	if len(tags) == 0 {
		return ""
	}
	base := lipgloss.NewStyle().Padding(0, 1)
	var chips []string
	for i, t := range tags {
		style := base.Foreground(lipgloss.Color(r.theme.Foreground))
		switch state.chipClass(t) {
		case chipActive:
			style = base.Bold(true).
				Foreground(lipgloss.Color(r.theme.Background)).
				Background(lipgloss.Color(r.theme.Primary))
		case chipInactive:
			style = base.Foreground(lipgloss.Color(r.theme.Muted))
		}
		label := t
		if i < 9 {
			label = strconv.Itoa(i+1) + ":" + t
		}
		chips = append(chips, r.mark(chipZoneID(t), style.Render(label)))
	}
	return strings.Join(chips, " ")
}

// ProgressTrack draws a fill of progress in [0,1] over width cells, with
// eighth-cell resolution at the leading edge.
func (r Renderer) ProgressTrack(progress float64, width int) string {
	progress = clamp(progress, 0, 1)

	virtualWidth := width * 8
	virtualProgress := int(float64(virtualWidth) * progress)
	filled := virtualProgress / 8
	remainder := virtualProgress % 8
	if filled >= width {
		filled = width
		remainder = 0
	}

	partials := []string{"", "▏", "▎", "▍", "▌", "▋", "▊", "▉"}
	background := r.styles.Muted

	var parts []string
	for i := 0; i < width; i++ {
		style := r.gradientAt(i)
		switch {
		case i < filled:
			parts = append(parts, style.Render("█"))
		case i == filled && remainder > 0:
			parts = append(parts, style.Render(partials[remainder]))
		default:
			parts = append(parts, background.Render("░"))
		}
	}
	return strings.Join(parts, "")
}

func (r Renderer) gradientAt(i int) lipgloss.Style {
	if len(r.gradient) == 0 {
		return r.styles.Primary
	}
	if i < len(r.gradient) {
		return r.gradient[i]
	}
	return r.gradient[len(r.gradient)-1]
}

// LevelMeter draws RMS bands as a bar chart.
func (r Renderer) LevelMeter(levels []float64, width, height int) string {
	if len(levels) == 0 || width <= 0 || height <= 0 {
		return ""
	}
	chart := barchart.New(width, height)
	data := make([]barchart.BarData, len(levels))
	for i, level := range levels {
		value := clamp(level*3.0, 0, 1)
		color := r.theme.GradientStart
		if i >= len(levels)/2 {
			color = r.theme.GradientEnd
		}
		data[i] = barchart.BarData{
			Values: []barchart.BarValue{
				{"", value, lipgloss.NewStyle().Foreground(lipgloss.Color(color))},
			},
		}
	}
	chart.PushAll(data)
	chart.Draw()
	return chart.View()
}

// NowPlaying draws the panel for the live session.
func (r Renderer) NowPlaying(item Item, s *Session, levels []float64, width int) string {
	if width < 40 {
		width = 40
	}
	info := fmt.Sprintf("♪ %s", item.Title)
	if s.Info.Title != "" && !strings.EqualFold(s.Info.Title, item.Title) {
		info += " (" + s.Info.Title + ")"
	}
	switch {
	case s.Info.Artist != "":
		info += " - " + s.Info.Artist
	case item.Owner != "":
		info += " - " + item.Owner
	}
	timeStr := formatTime(s.CurrentTime) + " / " + formatTime(s.Duration)

	left := lipgloss.JoinVertical(lipgloss.Left,
		r.styles.Success.Bold(true).Render("Now Playing"),
		r.styles.Foreground.Render(truncateToWidth(info, width-levelBands-8)),
		r.styles.Muted.Render(timeStr),
	)
	meter := r.LevelMeter(levels, levelBands, 3)

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(r.theme.Border)).
		Width(width-2).
		Padding(0, 1).
		Render(lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", meter))
}

// Color blending for the gradient fill.
type RGB struct {
	R, G, B float64
}

func rgbToHex(rgb RGB) string {
	return fmt.Sprintf("#%02x%02x%02x", int(rgb.R), int(rgb.G), int(rgb.B))
}

func blendColors(colorA, colorB RGB, ratio float64) RGB {
	return RGB{
		R: colorA.R + (colorB.R-colorA.R)*ratio,
		G: colorA.G + (colorB.G-colorA.G)*ratio,
		B: colorA.B + (colorB.B-colorA.B)*ratio,
	}
}

// colorCodeToRGB approximates the ANSI codes used by the built-in themes.
func colorCodeToRGB(colorCode string) RGB {
	colorMap := map[string]RGB{
		"0":   {0, 0, 0},
		"22":  {0, 95, 0},
		"25":  {0, 95, 175},
		"28":  {0, 135, 0},
		"33":  {0, 135, 175},
		"34":  {0, 175, 0},
		"39":  {0, 175, 255},
		"46":  {0, 255, 0},
		"51":  {0, 255, 255},
		"67":  {95, 135, 215},
		"147": {175, 135, 255},
		"196": {255, 0, 0},
		"201": {255, 0, 255},
		"205": {255, 95, 255},
		"208": {255, 135, 0},
	}
	if rgb, exists := colorMap[colorCode]; exists {
		return rgb
	}
	return RGB{128, 128, 128}
}

func makeProgressGradient(steps int, theme Theme) []lipgloss.Style {
	colorA := colorCodeToRGB(theme.GradientStart)
	colorB := colorCodeToRGB(theme.GradientEnd)

	styles := make([]lipgloss.Style, 0, steps)
	for i := 0; i < steps; i++ {
		ratio := 0.0
		if steps > 1 {
			ratio = float64(i) / float64(steps-1)
		}
		color := rgbToHex(blendColors(colorA, colorB, ratio))
		styles = append(styles, lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Bold(true))
	}
	return styles
}

// truncateToWidth cuts s to at most maxWidth terminal cells, adding an
// ellipsis when something was dropped.
func truncateToWidth(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= maxWidth {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes))+1 > maxWidth {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}
