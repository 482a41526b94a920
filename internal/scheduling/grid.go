package scheduling

// Event is one cell occupant in a weekly grid view.
type Event struct {
	Day       Weekday `json:"day"`
	SlotID    string  `json:"slot_id"`
	ClassID   string  `json:"class_id"`
	ClassName string  `json:"class_name"`
	TeacherID string  `json:"teacher_id"`
	RoomID    string  `json:"room_id"`
	Mode      string  `json:"mode"`
}

// Grid indexes events by (day, slot) for O(1) cell retrieval when rendering
// a 7xN table. Cells may hold multiple events; the grid never resolves
// conflicts, it only groups.
type Grid struct {
	cells map[Weekday]map[string][]Event
}

// BuildGrid groups a flat event list into a day x slot lookup table.
func BuildGrid(events []Event) *Grid {
	cells := make(map[Weekday]map[string][]Event)
	for _, event := range events {
		row, ok := cells[event.Day]
		if !ok {
			row = make(map[string][]Event)
			cells[event.Day] = row
		}
		row[event.SlotID] = append(row[event.SlotID], event)
	}
	return &Grid{cells: cells}
}

// Get returns the events occupying one cell, nil when the cell is empty.
func (g *Grid) Get(day Weekday, slotID string) []Event {
	if g == nil {
		return nil
	}
	return g.cells[day][slotID]
}

// Len returns the total number of events in the grid.
func (g *Grid) Len() int {
	if g == nil {
		return 0
	}
	total := 0
	for _, row := range g.cells {
		for _, cell := range row {
			total += len(cell)
		}
	}
	return total
}
