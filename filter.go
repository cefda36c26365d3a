package main

import "strings"

// Chip classes applied to the tag strip.
const (
	chipActive   = "active"
	chipInactive = "inactive"
)

// FilterState is the search text plus at most one selected tag.
type FilterState struct {
	SearchText  string
	SelectedTag string
	TagSelected bool
}

// chipClass returns the class a chip labelled label gets under s. Labels are
// compared by their trimmed text, the same way the chips are rendered.
func (s FilterState) chipClass(label string) string {
	if !s.TagSelected {
		return ""
	}
	if strings.TrimSpace(label) == s.SelectedTag {
		return chipActive
	}
	return chipInactive
}

// matches reports whether item belongs to the visible set under s. Search and
// tag conditions are both required.
func (s FilterState) matches(item Item) bool {
	if !strings.Contains(strings.ToLower(item.Title), s.SearchText) {
		return false
	}
	if !s.TagSelected {
		return true
	}
	for _, t := range item.Tags {
		if t == s.SelectedTag {
			return true
		}
	}
	return false
}

// FilterEngine holds the loaded items and derives the visible subset and tag
// universe from the current filter state.
type FilterEngine struct {
	items   []Item
	state   FilterState
	tags    []string
	visible []Item
}

func NewFilterEngine() *FilterEngine {
	return &FilterEngine{}
}

// SetItems replaces the backing collection. The filter state is kept.
func (f *FilterEngine) SetItems(items []Item) {
	f.items = append([]Item(nil), items...)
	f.tags = tagUniverse(f.items)
	f.recompute()
}

func (f *FilterEngine) SetSearchText(text string) {
	f.state.SearchText = strings.ToLower(text)
	f.recompute()
}

// ToggleTag selects tag exclusively. Toggling the selected tag clears the
// selection; toggling another tag replaces it.
func (f *FilterEngine) ToggleTag(tag string) {
	if f.state.TagSelected && f.state.SelectedTag == tag {
		f.state.SelectedTag = ""
		f.state.TagSelected = false
	} else {
		f.state.SelectedTag = tag
		f.state.TagSelected = true
	}
	f.recompute()
}

func (f *FilterEngine) recompute() {
	visible := make([]Item, 0, len(f.items))
	for _, item := range f.items {
		if f.state.matches(item) {
			visible = append(visible, item)
		}
	}
	f.visible = visible
}

func (f *FilterEngine) State() FilterState { return f.state }
func (f *FilterEngine) Visible() []Item    { return f.visible }
func (f *FilterEngine) Tags() []string     { return f.tags }
func (f *FilterEngine) Items() []Item      { return f.items }

// Item looks up a loaded item by id, visible or not.
func (f *FilterEngine) Item(id string) (Item, bool) {
	for _, item := range f.items {
		if item.ID == id {
			return item, true
		}
	}
	return Item{}, false
}

// tagUniverse flattens the tags of all items into distinct values, in order of
// first appearance.
func tagUniverse(items []Item) []string {
	seen := make(map[string]bool)
	var tags []string
	for _, item := range items {
		for _, t := range item.Tags {
			if seen[t] {
				continue
			}
			seen[t] = true
			tags = append(tags, t)
		}
	}
	return tags
}
