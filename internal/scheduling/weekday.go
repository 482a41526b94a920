package scheduling

import "time"

// Weekday is the ISO day-of-week used everywhere past the API edge:
// Monday=1 .. Sunday=7. time.Weekday counts Sunday as 0, and mixing the two
// conventions is a classic off-by-one-day bug, so this package owns the only
// conversion.
type Weekday int

const (
	Monday    Weekday = 1
	Tuesday   Weekday = 2
	Wednesday Weekday = 3
	Thursday  Weekday = 4
	Friday    Weekday = 5
	Saturday  Weekday = 6
	Sunday    Weekday = 7
)

// FromTime converts a time.Weekday (Sunday=0) into the ISO convention.
func FromTime(d time.Weekday) Weekday {
	if d == time.Sunday {
		return Sunday
	}
	return Weekday(d)
}

// Valid reports whether the day is within Monday..Sunday.
func (d Weekday) Valid() bool {
	return d >= Monday && d <= Sunday
}

// Weekend reports whether the day is Saturday or Sunday.
func (d Weekday) Weekend() bool {
	return d == Saturday || d == Sunday
}

func (d Weekday) String() string {
	switch d {
	case Monday:
		return "Monday"
	case Tuesday:
		return "Tuesday"
	case Wednesday:
		return "Wednesday"
	case Thursday:
		return "Thursday"
	case Friday:
		return "Friday"
	case Saturday:
		return "Saturday"
	case Sunday:
		return "Sunday"
	}
	return "Invalid"
}
