// Package schedule implements the interval arithmetic behind the booking
// engine: which minutes an appointment occupies, which grid cells it spans
// and which slots remain bookable.
package schedule

import (
	"agendei/internal/models"
	"agendei/internal/timeutil"
)

// DurationFunc resolves a service ID to its effective duration in minutes.
// Implementations fall back to 30 for unknown or invalid services.
type DurationFunc func(serviceID string) int

// OccupiedAt reports whether any non-cancelled appointment occupies the given
// minute of day, and returns the occupying appointment. The occupancy test is
// occupied.start <= minute < occupied.start + duration.
func OccupiedAt(appts []models.Appointment, durOf DurationFunc, minute int) (models.Appointment, bool) {
	for _, a := range appts {
		if a.Status == models.StatusCancelled {
			continue
		}
		start := a.StartMinute()
		if minute >= start && minute < start+durOf(a.ServiceID) {
			return a, true
		}
	}
	return models.Appointment{}, false
}

// SpanCells returns how many consecutive 30-minute grid cells a duration
// covers, rounding up.
func SpanCells(durationMin int) int {
	if durationMin <= 0 {
		durationMin = models.DefaultDurationMin
	}
	return (durationMin + timeutil.SlotMinutes - 1) / timeutil.SlotMinutes
}

// HasConflict reports whether a new appointment starting at startMinute with
// the given duration would collide with an existing one. Each grid cell the
// new appointment would span is probed with the occupancy test.
func HasConflict(appts []models.Appointment, durOf DurationFunc, startMinute, durationMin int) bool {
	for i := 0; i < SpanCells(durationMin); i++ {
		if _, busy := OccupiedAt(appts, durOf, startMinute+i*timeutil.SlotMinutes); busy {
			return true
		}
	}
	return false
}

// Cell is one 30-minute cell of a staff member's day grid.
type Cell struct {
	Start        string              `json:"start"`
	StartMinute  int                 `json:"-"`
	Appointment  *models.Appointment `json:"appointment,omitempty"`
	Continuation bool                `json:"continuation,omitempty"`
}

// DayCells projects appointments onto the grid between startMin (inclusive)
// and endMin (exclusive). Only the cell an appointment starts in carries its
// payload; the following cells it spans are continuation cells so renderers
// never draw the same appointment twice.
func DayCells(appts []models.Appointment, durOf DurationFunc, startMin, endMin int) []Cell {
	var cells []Cell
	covered := 0 // remaining continuation cells from the last start cell

	for minute := startMin; minute < endMin; minute += timeutil.SlotMinutes {
		cell := Cell{Start: timeutil.FormatMinute(minute), StartMinute: minute}

		if covered > 0 {
			cell.Continuation = true
			covered--
			cells = append(cells, cell)
			continue
		}

		for i := range appts {
			a := appts[i]
			if a.Status == models.StatusCancelled || a.StartMinute() != minute {
				continue
			}
			cell.Appointment = &a
			covered = SpanCells(durOf(a.ServiceID)) - 1
			break
		}
		cells = append(cells, cell)
	}
	return cells
}
