package models

import "time"

// TimeSlot is a named fixed daily time range shared across the whole center,
// e.g. "18:00:00"–"19:30:00". The catalog is global and changes rarely.
type TimeSlot struct {
	ID        string    `db:"id" json:"id"`
	Label     string    `db:"label" json:"label"`
	StartTime string    `db:"start_time" json:"start_time"`
	EndTime   string    `db:"end_time" json:"end_time"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// StartHM returns the "HH:MM" prefix of the slot's start time, the form the
// weekly-grid picker produces.
func (s TimeSlot) StartHM() string {
	if len(s.StartTime) >= 5 {
		return s.StartTime[:5]
	}
	return s.StartTime
}
