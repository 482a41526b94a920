package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindConflictsOverlappingRange(t *testing.T) {
	entries := []Entry{{Day: Monday, SlotID: "s1"}}
	busy := []BusyInterval{{
		Day:    Monday,
		SlotID: "s1",
		Start:  date(2025, time.February, 1),
		End:    date(2025, time.February, 15),
	}}

	conflicts := FindConflicts(entries, date(2025, time.January, 1), date(2025, time.March, 1), busy)
	require.Len(t, conflicts, 1)
	assert.True(t, HasConflict(entries, date(2025, time.January, 1), date(2025, time.March, 1), busy))
}

func TestFindConflictsDifferentDayOrSlot(t *testing.T) {
	busy := []BusyInterval{{
		Day:    Monday,
		SlotID: "s1",
		Start:  date(2025, time.January, 1),
		End:    date(2025, time.March, 1),
	}}
	start, end := date(2025, time.January, 1), date(2025, time.March, 1)

	assert.False(t, HasConflict([]Entry{{Day: Tuesday, SlotID: "s1"}}, start, end, busy))
	assert.False(t, HasConflict([]Entry{{Day: Monday, SlotID: "s2"}}, start, end, busy))
}

func TestFindConflictsDisjointRanges(t *testing.T) {
	entries := []Entry{{Day: Monday, SlotID: "s1"}}
	busy := []BusyInterval{{
		Day:    Monday,
		SlotID: "s1",
		Start:  date(2025, time.April, 1),
		End:    date(2025, time.May, 1),
	}}

	assert.False(t, HasConflict(entries, date(2025, time.January, 1), date(2025, time.March, 1), busy))

	// Closed intervals: sharing a single boundary day still collides.
	assert.True(t, HasConflict(entries, date(2025, time.January, 1), date(2025, time.April, 1), busy))
}

func TestFindConflictsSymmetric(t *testing.T) {
	// Swapping candidate and committed roles reports the same collision.
	aStart, aEnd := date(2025, time.January, 1), date(2025, time.March, 1)
	bStart, bEnd := date(2025, time.February, 1), date(2025, time.February, 15)
	entries := []Entry{{Day: Monday, SlotID: "s1"}}

	forward := HasConflict(entries, aStart, aEnd, []BusyInterval{{Day: Monday, SlotID: "s1", Start: bStart, End: bEnd}})
	backward := HasConflict(entries, bStart, bEnd, []BusyInterval{{Day: Monday, SlotID: "s1", Start: aStart, End: aEnd}})
	assert.Equal(t, forward, backward)
	assert.True(t, forward)
}

func TestFindConflictsMissingBoundFailsSafe(t *testing.T) {
	entries := []Entry{{Day: Monday, SlotID: "s1"}}
	busy := []BusyInterval{{Day: Monday, SlotID: "s1"}}

	assert.True(t, HasConflict(entries, date(2025, time.January, 1), date(2025, time.March, 1), busy))
	assert.True(t, HasConflict(entries, time.Time{}, time.Time{}, []BusyInterval{{
		Day:    Monday,
		SlotID: "s1",
		Start:  date(2025, time.April, 1),
		End:    date(2025, time.May, 1),
	}}))
}

func TestCheckWeeklyLoad(t *testing.T) {
	within := []Entry{
		{Day: Monday, SlotID: "s1"},
		{Day: Monday, SlotID: "s2"},
		{Day: Monday, SlotID: "s3"},
		{Day: Saturday, SlotID: "s1"},
	}
	assert.NoError(t, CheckWeeklyLoad(within, 3, 5))

	fourMondays := []Entry{
		{Day: Monday, SlotID: "s1"},
		{Day: Monday, SlotID: "s2"},
		{Day: Monday, SlotID: "s3"},
		{Day: Monday, SlotID: "s4"},
	}
	err := CheckWeeklyLoad(fourMondays, 3, 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Monday")

	fiveSaturdays := make([]Entry, 0, 5)
	for _, slot := range []string{"s1", "s2", "s3", "s4", "s5"} {
		fiveSaturdays = append(fiveSaturdays, Entry{Day: Saturday, SlotID: slot})
	}
	assert.NoError(t, CheckWeeklyLoad(fiveSaturdays, 3, 5))
	assert.Error(t, CheckWeeklyLoad(append(fiveSaturdays, Entry{Day: Saturday, SlotID: "s6"}), 3, 5))
}

func TestBuildGrid(t *testing.T) {
	events := []Event{
		{Day: Monday, SlotID: "s1", ClassID: "c1", ClassName: "Algebra"},
		{Day: Monday, SlotID: "s1", ClassID: "c2", ClassName: "Online English", Mode: "ONLINE"},
		{Day: Friday, SlotID: "s2", ClassID: "c3"},
	}

	grid := BuildGrid(events)
	assert.Equal(t, 3, grid.Len())
	assert.Len(t, grid.Get(Monday, "s1"), 2)
	assert.Len(t, grid.Get(Friday, "s2"), 1)
	assert.Nil(t, grid.Get(Tuesday, "s1"))
	assert.Nil(t, grid.Get(Monday, "s9"))
}
