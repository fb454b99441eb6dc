// Package booking drives the appointment lifecycle: creation with overlap
// rejection, manual status transitions and the clock-triggered automatic
// advance to IN_PROGRESS.
package booking

import (
	"errors"

	"agendei/internal/models"
)

// ErrInvalidTransition is returned when a status change is not allowed by the
// lifecycle state machine.
var ErrInvalidTransition = errors.New("invalid status transition")

// transitions defines the allowed lifecycle moves. COMPLETED and CANCELLED
// are terminal; cancellation is reachable from every non-terminal state and
// is never reversed (a re-booking is a new appointment).
var transitions = map[models.Status][]models.Status{
	models.StatusPending:    {models.StatusConfirmed, models.StatusInProgress, models.StatusCancelled},
	models.StatusConfirmed:  {models.StatusInProgress, models.StatusCancelled},
	models.StatusInProgress: {models.StatusCompleted, models.StatusCancelled},
}

// CanTransition checks if the lifecycle allows moving from one status to
// another.
func CanTransition(from, to models.Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Transition applies a status change to the appointment, or returns
// ErrInvalidTransition when the state machine forbids it.
func Transition(a *models.Appointment, to models.Status) error {
	if !CanTransition(a.Status, to) {
		return ErrInvalidTransition
	}
	a.Status = to
	return nil
}
