package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var catalog = []CatalogSlot{
	{ID: "s1", Start: "18:00"},
	{ID: "s2", Start: "19:45"},
}

func pick(y int, m time.Month, d, hh, mm int) PickedSlot {
	start := time.Date(y, m, d, hh, mm, 0, 0, time.UTC)
	return PickedSlot{Start: start, End: start.Add(90 * time.Minute)}
}

func TestToEntries(t *testing.T) {
	picked := []PickedSlot{
		pick(2025, time.January, 6, 18, 0),  // Monday 18:00
		pick(2025, time.January, 8, 19, 45), // Wednesday 19:45
		pick(2025, time.January, 5, 18, 0),  // Sunday 18:00
	}

	entries, unmatched := ToEntries(picked, catalog)
	assert.Empty(t, unmatched)
	assert.Equal(t, []Entry{
		{Day: Monday, SlotID: "s1"},
		{Day: Wednesday, SlotID: "s2"},
		{Day: Sunday, SlotID: "s1"},
	}, entries)
}

func TestToEntriesDeduplicatesAcrossWeeks(t *testing.T) {
	// The same weekday/slot picked in two calendar weeks is one entry.
	picked := []PickedSlot{
		pick(2025, time.January, 6, 18, 0),
		pick(2025, time.January, 13, 18, 0),
		pick(2025, time.January, 20, 18, 0),
	}

	entries, unmatched := ToEntries(picked, catalog)
	assert.Empty(t, unmatched)
	assert.Equal(t, []Entry{{Day: Monday, SlotID: "s1"}}, entries)
}

func TestToEntriesSurfacesUnmatched(t *testing.T) {
	odd := pick(2025, time.January, 6, 18, 30)
	picked := []PickedSlot{
		pick(2025, time.January, 6, 18, 0),
		odd,
	}

	entries, unmatched := ToEntries(picked, catalog)
	assert.Equal(t, []Entry{{Day: Monday, SlotID: "s1"}}, entries)
	require.Len(t, unmatched, 1)
	assert.Equal(t, odd, unmatched[0])
}

func TestToEntriesIdempotent(t *testing.T) {
	picked := []PickedSlot{
		pick(2025, time.January, 6, 18, 0),
		pick(2025, time.January, 8, 19, 45),
		pick(2025, time.January, 13, 18, 0),
	}

	first, unmatched := ToEntries(picked, catalog)
	require.Empty(t, unmatched)

	// Rebuild picked slots from the output and map again: same set.
	slotStarts := map[string]string{"s1": "18:00", "s2": "19:45"}
	var rebuilt []PickedSlot
	for _, entry := range first {
		parsed, err := time.Parse("15:04", slotStarts[entry.SlotID])
		require.NoError(t, err)
		// 2025-01-06 is a Monday; offset to the entry's weekday.
		base := time.Date(2025, time.January, 6, parsed.Hour(), parsed.Minute(), 0, 0, time.UTC)
		rebuilt = append(rebuilt, PickedSlot{Start: base.AddDate(0, 0, int(entry.Day-Monday))})
	}

	second, unmatched := ToEntries(rebuilt, catalog)
	require.Empty(t, unmatched)
	assert.Equal(t, first, second)
}

func TestFromTimeWeekday(t *testing.T) {
	assert.Equal(t, Monday, FromTime(time.Monday))
	assert.Equal(t, Saturday, FromTime(time.Saturday))
	assert.Equal(t, Sunday, FromTime(time.Sunday))
	assert.True(t, Sunday.Weekend())
	assert.False(t, Friday.Weekend())
}
