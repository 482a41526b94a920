package scheduling

import (
	"fmt"
	"time"
)

// BusyInterval is a committed occupied date range for a teacher or room at a
// given weekday/slot. Zero Start or End means the bound is unknown.
type BusyInterval struct {
	Day    Weekday
	SlotID string
	Start  time.Time
	End    time.Time
}

// rangesOverlap performs a closed-interval overlap check. A missing bound on
// either side counts as overlapping: when in doubt, report the conflict.
func rangesOverlap(aStart, aEnd, bStart, bEnd time.Time) bool {
	if aStart.IsZero() || aEnd.IsZero() || bStart.IsZero() || bEnd.IsZero() {
		return true
	}
	return !(aEnd.Before(bStart) || bEnd.Before(aStart))
}

// FindConflicts returns the busy intervals that collide with the candidate
// schedule: same weekday, same slot, overlapping date range. The busy set is
// supplied by the caller, so the same check serves teacher and room
// availability alike.
func FindConflicts(entries []Entry, start, end time.Time, busy []BusyInterval) []BusyInterval {
	var conflicts []BusyInterval
	for _, entry := range entries {
		for _, interval := range busy {
			if interval.Day != entry.Day || interval.SlotID != entry.SlotID {
				continue
			}
			if rangesOverlap(start, end, interval.Start, interval.End) {
				conflicts = append(conflicts, interval)
			}
		}
	}
	return conflicts
}

// HasConflict reports whether any busy interval collides with the candidate.
func HasConflict(entries []Entry, start, end time.Time, busy []BusyInterval) bool {
	return len(FindConflicts(entries, start, end, busy)) > 0
}

// CheckWeeklyLoad enforces the per-weekday session caps on a candidate's own
// entry set: at most maxWeekday sessions Monday-Friday and maxWeekend on
// Saturday/Sunday. This is a self-limit, independent of other classes.
func CheckWeeklyLoad(entries []Entry, maxWeekday, maxWeekend int) error {
	counts := make(map[Weekday]int, 7)
	for _, entry := range entries {
		counts[entry.Day]++
	}
	for day, count := range counts {
		limit := maxWeekday
		if day.Weekend() {
			limit = maxWeekend
		}
		if limit > 0 && count > limit {
			return fmt.Errorf("%d sessions on %s exceeds the limit of %d", count, day, limit)
		}
	}
	return nil
}
