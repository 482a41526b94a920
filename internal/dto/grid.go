package dto

import (
	"github.com/edulane/educenter-api/internal/models"
	"github.com/edulane/educenter-api/internal/scheduling"
)

// GridCell is one day x slot cell of a weekly grid. Events holds every class
// occupying the cell; more than one signals a visual conflict.
type GridCell struct {
	Day        int                `json:"day"`
	TimeSlotID string             `json:"time_slot_id"`
	Events     []scheduling.Event `json:"events"`
}

// GridResponse is a weekly schedule grid for one teacher, room or class.
// Slots carries the catalog rows so clients can render labels without a
// second request.
type GridResponse struct {
	Scope   string            `json:"scope"`
	ScopeID string            `json:"scope_id"`
	Slots   []models.TimeSlot `json:"slots"`
	Cells   []GridCell        `json:"cells"`
}

// FreeBusyResponse lists the committed intervals of a teacher or room.
type FreeBusyResponse struct {
	Scope   string                `json:"scope"`
	ScopeID string                `json:"scope_id"`
	Busy    []models.BusyInterval `json:"busy"`
}
