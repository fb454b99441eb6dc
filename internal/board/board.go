// Package board derives the "now serving" display from the projection: a
// rolling window of grid cells per staff member with a compact entry for
// each appointment.
package board

import (
	"time"

	"agendei/internal/models"
	"agendei/internal/schedule"
	"agendei/internal/store"
	"agendei/internal/timeutil"
)

// Visual state tags for board entries.
const (
	StateFree       = "free"
	StateOccupied   = "occupied"
	StateInProgress = "in-progress"
	StateCompleted  = "completed"
	StatePastEmpty  = "past-empty"
)

// Rolling window around the current time, in minutes.
const (
	windowBack    = 2 * 60
	windowForward = 4 * 60
)

// Entry is one compact board cell. A multi-slot appointment produces exactly
// one entry covering its whole interval; the cells it spans are collapsed.
type Entry struct {
	Start       string              `json:"start"`
	End         string              `json:"end"`
	State       string              `json:"state"`
	Now         bool                `json:"now,omitempty"`
	Appointment *models.Appointment `json:"appointment,omitempty"`
}

// Lane is one staff member's row on the board.
type Lane struct {
	StaffID   string  `json:"staff_id"`
	StaffName string  `json:"staff_name"`
	Entries   []Entry `json:"entries"`
}

// Build projects today's appointments onto the rolling window for every
// staff member participating in scheduling.
func Build(snap store.Snapshot, now time.Time) []Lane {
	durations := make(map[string]int, len(snap.Services))
	for _, svc := range snap.Services {
		durations[svc.ID] = svc.EffectiveDuration()
	}
	durOf := func(serviceID string) int {
		if d, ok := durations[serviceID]; ok {
			return d
		}
		return models.DefaultDurationMin
	}

	today := timeutil.Today(now)
	nowSlot := timeutil.MinuteOfDay(timeutil.SlotFloor(now))

	windowStart := nowSlot - windowBack
	if windowStart < 0 {
		windowStart = 0
	}
	windowEnd := nowSlot + windowForward
	if windowEnd > 24*60 {
		windowEnd = 24 * 60
	}

	var lanes []Lane
	for _, staff := range snap.Staff {
		if !staff.Active {
			continue
		}

		var appts []models.Appointment
		for _, a := range snap.Appointments {
			if a.StaffID == staff.ID && a.Date == today {
				appts = append(appts, a)
			}
		}

		lanes = append(lanes, Lane{
			StaffID:   staff.ID,
			StaffName: staff.Name,
			Entries:   laneEntries(appts, durOf, windowStart, windowEnd, nowSlot),
		})
	}
	return lanes
}

func laneEntries(appts []models.Appointment, durOf schedule.DurationFunc, windowStart, windowEnd, nowSlot int) []Entry {
	var entries []Entry
	for _, cell := range schedule.DayCells(appts, durOf, windowStart, windowEnd) {
		if cell.Continuation {
			continue
		}

		if cell.Appointment != nil {
			a := cell.Appointment
			duration := durOf(a.ServiceID)
			entries = append(entries, Entry{
				Start:       a.StartTime,
				End:         timeutil.AddMinutes(a.StartTime, duration),
				State:       appointmentState(a.Status),
				Now:         nowSlot >= cell.StartMinute && nowSlot < cell.StartMinute+schedule.SpanCells(duration)*timeutil.SlotMinutes,
				Appointment: a,
			})
			continue
		}

		state := StateFree
		if cell.StartMinute < nowSlot {
			state = StatePastEmpty
		}
		entries = append(entries, Entry{
			Start: cell.Start,
			End:   timeutil.FormatMinute(cell.StartMinute + timeutil.SlotMinutes),
			State: state,
			Now:   cell.StartMinute == nowSlot,
		})
	}
	return entries
}

func appointmentState(s models.Status) string {
	switch s {
	case models.StatusInProgress:
		return StateInProgress
	case models.StatusCompleted:
		return StateCompleted
	default:
		return StateOccupied
	}
}
