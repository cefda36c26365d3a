package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleItems() []Item {
	return []Item{
		{ID: "1", Title: "Rain", URL: "http://localhost:5000/uploads/rain.mp3", Tags: []string{"nature", "calm"}},
		{ID: "2", Title: "Thunder", URL: "http://localhost:5000/uploads/thunder.mp3", Tags: []string{"nature", "loud"}},
		{ID: "3", Title: "City Rain at Night", URL: "http://localhost:5000/uploads/city.wav", Tags: []string{"urban", "calm"}},
		{ID: "4", Title: "Drum Loop", URL: "http://localhost:5000/uploads/drums.ogg"},
	}
}

func ids(items []Item) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.ID)
	}
	return out
}

func TestTagUniverseKeepsFirstAppearanceOrder(t *testing.T) {
	assert.Equal(t, []string{"nature", "calm", "loud", "urban"}, tagUniverse(sampleItems()))
	assert.Empty(t, tagUniverse(nil))
}

func TestSetItemsShowsEverythingWithoutFilter(t *testing.T) {
	f := NewFilterEngine()
	f.SetItems(sampleItems())

	assert.Equal(t, []string{"1", "2", "3", "4"}, ids(f.Visible()))
	assert.Len(t, f.Tags(), 4)
	assert.False(t, f.State().TagSelected)
}

func TestToggleTagTwiceClearsSelection(t *testing.T) {
	f := NewFilterEngine()
	f.SetItems(sampleItems())

	f.ToggleTag("calm")
	assert.True(t, f.State().TagSelected)
	assert.Equal(t, "calm", f.State().SelectedTag)

	f.ToggleTag("calm")
	assert.False(t, f.State().TagSelected)
	assert.Empty(t, f.State().SelectedTag)
	assert.Equal(t, []string{"1", "2", "3", "4"}, ids(f.Visible()))
}

func TestToggleOtherTagReplacesSelection(t *testing.T) {
	f := NewFilterEngine()
	f.SetItems(sampleItems())

	f.ToggleTag("calm")
	f.ToggleTag("loud")

	assert.Equal(t, "loud", f.State().SelectedTag)
	assert.Equal(t, []string{"2"}, ids(f.Visible()))
	assert.Equal(t, chipActive, f.State().chipClass("loud"))
	assert.Equal(t, chipInactive, f.State().chipClass("calm"))
}

func TestSearchIsCaseInsensitiveSubstring(t *testing.T) {
	f := NewFilterEngine()
	f.SetItems(sampleItems())

	f.SetSearchText("RAIN")
	assert.Equal(t, []string{"1", "3"}, ids(f.Visible()))
	assert.Equal(t, "rain", f.State().SearchText)

	f.SetSearchText("")
	assert.Len(t, f.Visible(), 4)
}

func TestSearchAndTagAreConjunctive(t *testing.T) {
	f := NewFilterEngine()
	f.SetItems(sampleItems())

	f.SetSearchText("rain")
	f.ToggleTag("urban")
	assert.Equal(t, []string{"3"}, ids(f.Visible()))

	f.SetSearchText("thunder")
	assert.Empty(t, f.Visible())
}

func TestVisibleSetMatchesPredicate(t *testing.T) {
	items := sampleItems()
	searches := []string{"", "r", "rain", "loop", "zzz"}
	tags := []string{"", "nature", "calm", "loud", "urban"}

	for _, search := range searches {
		for _, tag := range tags {
			f := NewFilterEngine()
			f.SetItems(items)
			f.SetSearchText(search)
			if tag != "" {
				f.ToggleTag(tag)
			}

			var want []string
			for _, item := range items {
				if f.State().matches(item) {
					want = append(want, item.ID)
				}
			}
			got := ids(f.Visible())
			if want == nil {
				assert.Empty(t, got, "search %q tag %q", search, tag)
				continue
			}
			assert.Equal(t, want, got, "search %q tag %q", search, tag)
		}
	}
}

func TestSetItemsKeepsFilterState(t *testing.T) {
	f := NewFilterEngine()
	f.SetItems(sampleItems())
	f.ToggleTag("nature")
	f.SetSearchText("thu")

	f.SetItems(append(sampleItems(), Item{ID: "5", Title: "Thunderstorm", Tags: []string{"nature"}}))

	assert.Equal(t, []string{"2", "5"}, ids(f.Visible()))
	assert.Equal(t, "nature", f.State().SelectedTag)
}

func TestSetItemsCopiesInput(t *testing.T) {
	items := sampleItems()
	f := NewFilterEngine()
	f.SetItems(items)

	items[0].Title = "Changed"
	item, ok := f.Item("1")
	require.True(t, ok)
	assert.Equal(t, "Rain", item.Title)

	_, ok = f.Item("missing")
	assert.False(t, ok)
}

func TestChipClass(t *testing.T) {
	var none FilterState
	assert.Empty(t, none.chipClass("calm"))

	s := FilterState{SelectedTag: "calm", TagSelected: true}
	assert.Equal(t, chipActive, s.chipClass("calm"))
	assert.Equal(t, chipActive, s.chipClass("  calm "))
	assert.Equal(t, chipInactive, s.chipClass("nature"))
}

func TestTagOnItemWithoutTags(t *testing.T) {
	f := NewFilterEngine()
	f.SetItems([]Item{{ID: "a", Title: "Silence"}})

	assert.Empty(t, f.Tags())
	f.ToggleTag("anything")
	assert.Empty(t, f.Visible())
}

func TestRainThunderScenario(t *testing.T) {
	f := NewFilterEngine()
	f.SetItems([]Item{
		{ID: "1", Title: "Rain", Tags: []string{"ambient", "nature"}},
		{ID: "2", Title: "Thunder", Tags: []string{"nature"}},
	})

	f.SetSearchText("rain")
	assert.Equal(t, []string{"1"}, ids(f.Visible()))

	f.SetSearchText("")
	f.ToggleTag("nature")
	assert.Equal(t, []string{"1", "2"}, ids(f.Visible()))
	assert.True(t, f.State().TagSelected)

	f.ToggleTag("nature")
	assert.Equal(t, []string{"1", "2"}, ids(f.Visible()))
	assert.False(t, f.State().TagSelected)
}
