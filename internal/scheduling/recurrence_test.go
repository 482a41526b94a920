package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestProjectEndDateMondayWednesday(t *testing.T) {
	// Mon 6, Wed 8, Mon 13, Wed 15.
	start := date(2025, time.January, 6)
	pattern := map[Weekday]int{Monday: 1, Wednesday: 1}

	end, err := ProjectEndDate(start, pattern, 4)
	require.NoError(t, err)
	assert.Equal(t, date(2025, time.January, 15), end)
}

func TestProjectEndDateStartMidWeek(t *testing.T) {
	// Start on a Thursday; the first Monday session is Jan 13.
	start := date(2025, time.January, 9)
	pattern := map[Weekday]int{Monday: 1}

	end, err := ProjectEndDate(start, pattern, 3)
	require.NoError(t, err)
	assert.Equal(t, date(2025, time.January, 27), end)
}

func TestProjectEndDateSingleSession(t *testing.T) {
	start := date(2025, time.January, 6)
	pattern := map[Weekday]int{Monday: 1}

	end, err := ProjectEndDate(start, pattern, 1)
	require.NoError(t, err)
	assert.Equal(t, start, end)
}

func TestProjectEndDateDoubleSessionDay(t *testing.T) {
	// Two slots every Saturday: 5 sessions finish on the third Saturday.
	start := date(2025, time.January, 4)
	pattern := map[Weekday]int{Saturday: 2}

	end, err := ProjectEndDate(start, pattern, 5)
	require.NoError(t, err)
	assert.Equal(t, date(2025, time.January, 18), end)
}

func TestProjectEndDateSessionCountProperty(t *testing.T) {
	// Summing the pattern day-by-day from start to the projected end must
	// reproduce totalSessions exactly.
	start := date(2025, time.March, 5)
	pattern := map[Weekday]int{Tuesday: 1, Thursday: 2, Sunday: 1}

	for total := 1; total <= 40; total++ {
		end, err := ProjectEndDate(start, pattern, total)
		require.NoError(t, err, "total=%d", total)

		counted := 0
		for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
			counted += pattern[FromTime(day.Weekday())]
		}
		assert.GreaterOrEqual(t, counted, total, "total=%d", total)
		// The end date itself must contribute; the day before falls short.
		counted -= pattern[FromTime(end.Weekday())]
		assert.Less(t, counted, total, "total=%d", total)
	}
}

func TestProjectEndDateErrors(t *testing.T) {
	start := date(2025, time.January, 6)

	_, err := ProjectEndDate(start, map[Weekday]int{Monday: 1}, 0)
	assert.ErrorIs(t, err, ErrInvalidSessionCount)

	_, err = ProjectEndDate(start, nil, 4)
	assert.ErrorIs(t, err, ErrUndetermined)

	_, err = ProjectEndDate(start, map[Weekday]int{}, 4)
	assert.ErrorIs(t, err, ErrUndetermined)

	// Invalid weekday keys and zero counts contribute nothing.
	_, err = ProjectEndDate(start, map[Weekday]int{Weekday(9): 1, Tuesday: 0}, 4)
	assert.ErrorIs(t, err, ErrUndetermined)
}

func TestExpandSessions(t *testing.T) {
	start := date(2025, time.January, 6)
	entries := []Entry{
		{Day: Monday, SlotID: "s1"},
		{Day: Wednesday, SlotID: "s2"},
	}

	occurrences, err := ExpandSessions(start, entries, 4)
	require.NoError(t, err)
	require.Len(t, occurrences, 4)
	assert.Equal(t, Occurrence{Date: date(2025, time.January, 6), SlotID: "s1"}, occurrences[0])
	assert.Equal(t, Occurrence{Date: date(2025, time.January, 8), SlotID: "s2"}, occurrences[1])
	assert.Equal(t, Occurrence{Date: date(2025, time.January, 13), SlotID: "s1"}, occurrences[2])
	assert.Equal(t, Occurrence{Date: date(2025, time.January, 15), SlotID: "s2"}, occurrences[3])
}

func TestExpandSessionsMatchesProjectedEnd(t *testing.T) {
	start := date(2025, time.February, 3)
	entries := []Entry{
		{Day: Tuesday, SlotID: "s1"},
		{Day: Tuesday, SlotID: "s2"},
		{Day: Friday, SlotID: "s1"},
	}
	pattern := map[Weekday]int{Tuesday: 2, Friday: 1}

	occurrences, err := ExpandSessions(start, entries, 11)
	require.NoError(t, err)
	require.Len(t, occurrences, 11)

	end, err := ProjectEndDate(start, pattern, 11)
	require.NoError(t, err)
	assert.Equal(t, end, occurrences[len(occurrences)-1].Date)
}

func TestExpandSessionsErrors(t *testing.T) {
	start := date(2025, time.January, 6)

	_, err := ExpandSessions(start, nil, 4)
	assert.ErrorIs(t, err, ErrUndetermined)

	_, err = ExpandSessions(start, []Entry{{Day: Monday, SlotID: "s1"}}, -1)
	assert.ErrorIs(t, err, ErrInvalidSessionCount)
}
