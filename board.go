package main

// Role prefixes of the per-item display nodes. A node id is the prefix
// followed by the item id.
const (
	roleCard        = "card-"
	rolePlayIcon    = "play-icon-"
	rolePlayText    = "play-text-"
	roleProgress    = "progress-"
	roleCurrentTime = "current-time-"
	roleDuration    = "duration-"
)

const (
	iconPlay  = "▶"
	iconPause = "⏸"
)

func nodeID(role, itemID string) string {
	return role + itemID
}

// CardNodes is the mutable display state of one item card.
type CardNodes struct {
	ItemID   string
	Playing  bool
	Icon     string
	Label    string
	Progress float64
	Elapsed  string
	Duration string
}

func newCardNodes(itemID string) *CardNodes {
	return &CardNodes{
		ItemID:   itemID,
		Icon:     iconPlay,
		Label:    "Play",
		Elapsed:  formatTime(0),
		Duration: formatTime(0),
	}
}

func (n *CardNodes) showPlaying() {
	n.Playing = true
	n.Icon = iconPause
	n.Label = "Pause"
}

func (n *CardNodes) showIdle() {
	n.Playing = false
	n.Icon = iconPlay
	n.Label = "Play"
}

// resetProgress zeroes the fill and the elapsed label. The duration label keeps
// its last value.
func (n *CardNodes) resetProgress() {
	n.Progress = 0
	n.Elapsed = formatTime(0)
}

// NodeLookup resolves an item id to its display nodes.
type NodeLookup interface {
	Card(itemID string) (*CardNodes, bool)
}

// Board keeps one CardNodes per loaded item so that card state outlives grid
// redraws.
type Board struct {
	cards map[string]*CardNodes
}

func NewBoard() *Board {
	return &Board{cards: make(map[string]*CardNodes)}
}

// Sync makes the board hold exactly the given items. Existing nodes are kept.
func (b *Board) Sync(items []Item) {
	next := make(map[string]*CardNodes, len(items))
	for _, item := range items {
		if n, ok := b.cards[item.ID]; ok {
			next[item.ID] = n
			continue
		}
		next[item.ID] = newCardNodes(item.ID)
	}
	b.cards = next
}

func (b *Board) Card(itemID string) (*CardNodes, bool) {
	n, ok := b.cards[itemID]
	return n, ok
}

func (b *Board) Len() int {
	return len(b.cards)
}
