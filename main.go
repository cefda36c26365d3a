package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	zone "github.com/lrstanley/bubblezone"
	"go.uber.org/zap"
)

const timeUpdateInterval = time.Second / 4

type fetchFunc func(ctx context.Context) ([]Item, error)

type tickMsg struct {
	session uuid.UUID
}

type itemsLoadedMsg struct {
	items []Item
}

type catalogFailedMsg struct {
	err error
}

type mediaEventMsg struct {
	session uuid.UUID
	event   MediaEvent
}

// timeUpdateCmd schedules the next progress refresh of session id.
func timeUpdateCmd(id uuid.UUID) tea.Cmd {
	return tea.Tick(timeUpdateInterval, func(time.Time) tea.Msg {
		return tickMsg{session: id}
	})
}

// waitMediaEvent delivers the next event of s, or nothing once s is stopped.
func waitMediaEvent(s *Session) tea.Cmd {
	id, h := s.ID, s.Handle
	return func() tea.Msg {
		select {
		case ev := <-h.Events():
			return mediaEventMsg{session: id, event: ev}
		case <-h.Done():
			return nil
		}
	}
}

func loadCatalogCmd(ctx context.Context, fetch fetchFunc) tea.Cmd {
	return func() tea.Msg {
		items, err := fetch(ctx)
		if err != nil {
			return catalogFailedMsg{err: err}
		}
		return itemsLoadedMsg{items: items}
	}
}

type levelSource interface {
	Levels() []float64
}

type model struct {
	ctx      context.Context
	log      *zap.Logger
	theme    Theme
	styles   ThemeStyles
	host     string
	fetch    fetchFunc
	filter   *FilterEngine
	board    *Board
	player   *PlaybackController
	progress *ProgressTracker
	render   Renderer
	zones    *zone.Manager
	search   textinput.Model
	spinner  spinner.Model
	help     help.Model
	keys     keyMap
	loading  bool
	cursor   int
	offset   int // first grid row on screen
	width    int
	height   int
}

func newModel(ctx context.Context, theme Theme, host string, fetch fetchFunc, opener MediaOpener, log *zap.Logger) model {
	board := NewBoard()
	player := NewPlaybackController(ctx, opener, board, log)
	zones := zone.New()

	search := textinput.New()
	search.Placeholder = "Search sounds..."
	search.Prompt = "🔍 "
	search.CharLimit = 100
	search.Width = 40

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Primary))

	return model{
		ctx:      ctx,
		log:      log,
		theme:    theme,
		styles:   theme.Styles(),
		host:     host,
		fetch:    fetch,
		filter:   NewFilterEngine(),
		board:    board,
		player:   player,
		progress: NewProgressTracker(player, board, log),
		render:   NewRenderer(theme, zones),
		zones:    zones,
		search:   search,
		spinner:  s,
		help:     help.New(),
		keys:     newKeyMap(),
		loading:  true,
		width:    80,
		height:   24,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, loadCatalogCmd(m.ctx, m.fetch))
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.scroll()
		return m, nil

	case itemsLoadedMsg:
		m.loading = false
		m.filter.SetItems(msg.items)
		m.board.Sync(m.filter.Items())
		m.clampCursor()
		m.log.Info("catalog loaded",
			zap.Int("items", len(msg.items)),
			zap.Int("tags", len(m.filter.Tags())))
		return m, nil

	case catalogFailedMsg:
		// The board stays empty; nothing is shown to the user.
		m.loading = false
		m.log.Error("error fetching sounds", zap.Error(msg.err))
		return m, nil

	case tickMsg:
		if m.progress.TimeUpdate(msg.session) {
			return m, timeUpdateCmd(msg.session)
		}
		return m, nil

	case mediaEventMsg:
		return m.handleMediaEvent(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m model) handleMediaEvent(msg mediaEventMsg) (tea.Model, tea.Cmd) {
	switch msg.event.Kind {
	case MediaMetadata:
		if !m.progress.MetadataLoaded(msg.session, msg.event.Info) {
			return m, nil
		}
		s, _ := m.player.Current(msg.session)
		return m, waitMediaEvent(s)
	case MediaEnded:
		m.player.HandleEnded(msg.session)
	case MediaError:
		m.player.HandleError(msg.session, msg.event.Err)
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m.quit()
	}

	if m.search.Focused() {
		if key.Matches(msg, m.keys.Blur) {
			m.search.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		m.setSearchText(m.search.Value())
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()
	case key.Matches(msg, m.keys.Search):
		cmd := m.search.Focus()
		return m, cmd
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-columns(m.width))
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(columns(m.width))
	case key.Matches(msg, m.keys.Left):
		m.moveCursor(-1)
	case key.Matches(msg, m.keys.Right):
		m.moveCursor(1)
	case key.Matches(msg, m.keys.Play):
		if item, ok := m.cursorItem(); ok {
			return m.togglePlay(item)
		}
	case key.Matches(msg, m.keys.Tag):
		n := int(msg.String()[0] - '1')
		if tags := m.filter.Tags(); n < len(tags) {
			m.toggleTag(tags[n])
		}
	}
	return m, nil
}

func (m model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Action != tea.MouseActionRelease || msg.Button != tea.MouseButtonLeft {
		return m, nil
	}

	if _, ok := m.hit(searchZoneID, msg); ok {
		cmd := m.search.Focus()
		return m, cmd
	}
	for _, tag := range m.filter.Tags() {
		if _, ok := m.hit(chipZoneID(tag), msg); ok {
			m.toggleTag(tag)
			return m, nil
		}
	}
	for i, item := range m.filter.Visible() {
		if z, ok := m.hit(nodeID(roleProgress, item.ID), msg); ok {
			x, _ := z.Pos(msg)
			m.progress.Seek(item.ID, x, z.EndX-z.StartX+1)
			return m, nil
		}
		_, onIcon := m.hit(nodeID(rolePlayIcon, item.ID), msg)
		_, onText := m.hit(nodeID(rolePlayText, item.ID), msg)
		if onIcon || onText {
			m.cursor = i
			m.scroll()
			return m.togglePlay(item)
		}
		if _, ok := m.hit(nodeID(roleCard, item.ID), msg); ok {
			m.cursor = i
			m.scroll()
			return m, nil
		}
	}
	return m, nil
}

func (m model) hit(id string, msg tea.MouseMsg) (*zone.ZoneInfo, bool) {
	z := m.zones.Get(id)
	if z == nil || !z.InBounds(msg) {
		return nil, false
	}
	return z, true
}

// togglePlay forwards a play request and, when a session starts, arms its
// event wait and progress ticks.
func (m model) togglePlay(item Item) (tea.Model, tea.Cmd) {
	s := m.player.RequestPlay(item.ID, item.URL)
	if s == nil {
		return m, nil
	}
	return m, tea.Batch(waitMediaEvent(s), timeUpdateCmd(s.ID))
}

func (m model) quit() (tea.Model, tea.Cmd) {
	m.player.Stop()
	return m, tea.Quit
}

func (m *model) setSearchText(text string) {
	m.filter.SetSearchText(text)
	m.clampCursor()
}

func (m *model) toggleTag(tag string) {
	m.filter.ToggleTag(tag)
	m.clampCursor()
	m.log.Debug("tag toggled",
		zap.String("tag", tag),
		zap.Bool("selected", m.filter.State().TagSelected))
}

func (m *model) moveCursor(delta int) {
	n := len(m.filter.Visible())
	if n == 0 {
		return
	}
	next := m.cursor + delta
	if next < 0 || next >= n {
		return
	}
	m.cursor = next
	m.scroll()
}

func (m *model) clampCursor() {
	n := len(m.filter.Visible())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.scroll()
}

// scroll keeps the cursor row inside the grid window.
func (m *model) scroll() {
	row := m.cursor / columns(m.width)
	rows := m.gridRows()
	if row < m.offset {
		m.offset = row
	}
	if row >= m.offset+rows {
		m.offset = row - rows + 1
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

func (m model) cursorItem() (Item, bool) {
	visible := m.filter.Visible()
	if m.cursor < 0 || m.cursor >= len(visible) {
		return Item{}, false
	}
	return visible[m.cursor], true
}

// gridRows is how many card rows fit between the chrome.
func (m model) gridRows() int {
	chrome := 6 // header, search, chips, blank lines, help
	if m.player.Active() != nil {
		chrome += 5
	}
	rows := (m.height - chrome) / cardHeight
	if rows < 1 {
		return 1
	}
	return rows
}

func (m model) View() string {
	var sections []string
	sections = append(sections, m.renderHeader())
	sections = append(sections, m.render.mark(searchZoneID, m.search.View()))
	if chips := m.render.TagChips(m.filter.Tags(), m.filter.State()); chips != "" {
		sections = append(sections, chips)
	}
	sections = append(sections, "")

	if m.loading {
		sections = append(sections, m.spinner.View()+m.styles.Warning.Render(" Loading sounds..."))
	} else {
		sections = append(sections, m.renderGrid())
	}

	if s := m.player.Active(); s != nil {
		if item, ok := m.filter.Item(s.ItemID); ok {
			var levels []float64
			if src, ok := s.Handle.(levelSource); ok {
				levels = src.Levels()
			}
			sections = append(sections, m.render.NowPlaying(item, s, levels, m.width))
		}
	}

	sections = append(sections, m.help.View(m.keys))
	return m.zones.Scan(strings.Join(sections, "\n"))
}

func (m model) renderHeader() string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(m.theme.Primary)).
		Render("♫ soundalt")
	counts := fmt.Sprintf("%d sounds", len(m.filter.Items()))
	if shown := len(m.filter.Visible()); shown != len(m.filter.Items()) {
		counts = fmt.Sprintf("%d of %d sounds", shown, len(m.filter.Items()))
	}
	return title + m.styles.Muted.Render(" · "+m.host+" · "+counts)
}

func (m model) renderGrid() string {
	visible := m.filter.Visible()
	cols := columns(m.width)
	start := m.offset * cols
	if start > len(visible) {
		start = len(visible)
	}
	end := start + m.gridRows()*cols
	if end > len(visible) {
		end = len(visible)
	}
	cursorID := ""
	if item, ok := m.cursorItem(); ok {
		cursorID = item.ID
	}
	if len(visible) > 0 && start == end {
		return ""
	}
	return m.render.Grid(visible[start:end], m.board, cursorID, m.width)
}

func main() {
	Execute()
}
