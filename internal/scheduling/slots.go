package scheduling

import "time"

// Entry is the canonical weekly-recurrence unit: one time slot on one weekday.
type Entry struct {
	Day    Weekday
	SlotID string
}

// PickedSlot is a concrete calendar occurrence a user selected in the weekly
// grid, standing in for "this weekday at this time" every week.
type PickedSlot struct {
	Start time.Time
	End   time.Time
}

// CatalogSlot is the portion of the time-slot catalog the mapper needs.
// Start is the "HH:MM" start-of-slot string.
type CatalogSlot struct {
	ID    string
	Start string
}

// ToEntries derives schedule entries from picked slots: weekday from the
// slot's local date, slot ID by exact start-time match against the catalog.
// Duplicate (day, slot) pairs collapse to one entry because the recurrence is
// weekly while picks are per calendar week. Picks with no catalog match are
// returned in the second value; callers must surface them, a mismatch here
// usually means a timezone or formatting bug rather than bad user input.
func ToEntries(picked []PickedSlot, catalog []CatalogSlot) ([]Entry, []PickedSlot) {
	byStart := make(map[string]string, len(catalog))
	for _, slot := range catalog {
		byStart[slot.Start] = slot.ID
	}

	type key struct {
		day  Weekday
		slot string
	}
	seen := make(map[key]struct{}, len(picked))

	var entries []Entry
	var unmatched []PickedSlot

	for _, pick := range picked {
		slotID, ok := byStart[pick.Start.Format("15:04")]
		if !ok {
			unmatched = append(unmatched, pick)
			continue
		}
		day := FromTime(pick.Start.Weekday())
		k := key{day: day, slot: slotID}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		entries = append(entries, Entry{Day: day, SlotID: slotID})
	}

	return entries, unmatched
}
