package scheduling

import (
	"errors"
	"time"
)

var (
	// ErrUndetermined is returned when the weekly pattern never reaches the
	// requested session count within the iteration bound, e.g. an empty or
	// zero-sessions-per-week pattern.
	ErrUndetermined = errors.New("end date undetermined: weekly pattern yields no sessions")

	// ErrInvalidSessionCount is returned for a non-positive total session count.
	ErrInvalidSessionCount = errors.New("total sessions must be positive")
)

// ProjectEndDate walks forward one calendar day at a time from start and
// returns the date on which the running session count reaches totalSessions.
// pattern maps a weekday to the number of sessions that weekday contributes
// per week. The walk is bounded by ceil(total/perWeek)*7 + 14 days so a
// degenerate pattern terminates with ErrUndetermined instead of looping.
func ProjectEndDate(start time.Time, pattern map[Weekday]int, totalSessions int) (time.Time, error) {
	if totalSessions <= 0 {
		return time.Time{}, ErrInvalidSessionCount
	}

	perWeek := 0
	for day, count := range pattern {
		if !day.Valid() || count <= 0 {
			continue
		}
		perWeek += count
	}
	if perWeek == 0 {
		return time.Time{}, ErrUndetermined
	}

	maxDays := ((totalSessions+perWeek-1)/perWeek)*7 + 14
	day := truncateToDay(start)
	counted := 0
	var last time.Time

	for i := 0; i < maxDays; i++ {
		if n := pattern[FromTime(day.Weekday())]; n > 0 {
			counted += n
			last = day
			if counted >= totalSessions {
				return last, nil
			}
		}
		day = day.AddDate(0, 0, 1)
	}

	return time.Time{}, ErrUndetermined
}

// Occurrence is one dated session produced by expanding a weekly pattern.
type Occurrence struct {
	Date   time.Time
	SlotID string
}

// ExpandSessions materialises entries into dated occurrences starting at
// start, in chronological order, stopping after totalSessions occurrences.
// Entries sharing a weekday are emitted in the order given, so callers sort
// them by slot start time beforehand.
func ExpandSessions(start time.Time, entries []Entry, totalSessions int) ([]Occurrence, error) {
	if totalSessions <= 0 {
		return nil, ErrInvalidSessionCount
	}

	perWeek := len(entries)
	if perWeek == 0 {
		return nil, ErrUndetermined
	}

	byDay := make(map[Weekday][]string, perWeek)
	for _, e := range entries {
		byDay[e.Day] = append(byDay[e.Day], e.SlotID)
	}

	maxDays := ((totalSessions+perWeek-1)/perWeek)*7 + 14
	day := truncateToDay(start)
	occurrences := make([]Occurrence, 0, totalSessions)

	for i := 0; i < maxDays && len(occurrences) < totalSessions; i++ {
		for _, slotID := range byDay[FromTime(day.Weekday())] {
			if len(occurrences) == totalSessions {
				break
			}
			occurrences = append(occurrences, Occurrence{Date: day, SlotID: slotID})
		}
		day = day.AddDate(0, 0, 1)
	}

	if len(occurrences) < totalSessions {
		return nil, ErrUndetermined
	}
	return occurrences, nil
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
