// Package models holds the tenant-owned entities projected from the external
// record store.
package models

import (
	"agendei/internal/timeutil"
)

// Defaults applied when an inbound row is missing or malformed.
const (
	DefaultDurationMin = 30
	DefaultStartTime   = "09:00"
	DefaultEndTime     = "19:00"
)

// DefaultWorkDays covers the six business days (Monday through Saturday).
func DefaultWorkDays() []int {
	return []int{1, 2, 3, 4, 5, 6}
}

// Status is the closed set of appointment lifecycle states.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusConfirmed  Status = "CONFIRMED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusCancelled  Status = "CANCELLED"
)

// ParseStatus normalizes an inbound status string to a known Status.
// Unknown or empty values default to StatusPending so loose-typed data from
// the record store never drives undefined transitions.
func ParseStatus(s string) Status {
	switch Status(normalizeStatus(s)) {
	case StatusPending:
		return StatusPending
	case StatusConfirmed:
		return StatusConfirmed
	case StatusInProgress:
		return StatusInProgress
	case StatusCompleted:
		return StatusCompleted
	case StatusCancelled:
		return StatusCancelled
	default:
		return StatusPending
	}
}

func normalizeStatus(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z':
			out = append(out, c-'a'+'A')
		case c == ' ' || c == '-':
			out = append(out, '_')
		default:
			out = append(out, c)
		}
	}
	return string(out)
}

// IsTerminal reports whether no further transition may be applied.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// StaffMember is a bookable professional within a tenant.
type StaffMember struct {
	ID        string `json:"id"`
	TenantID  string `json:"tenant_id"`
	Name      string `json:"name"`
	WorkDays  []int  `json:"work_days"`  // weekday numbers, Sunday = 0
	StartTime string `json:"start_time"` // "HH:MM"
	EndTime   string `json:"end_time"`   // "HH:MM"
	Active    bool   `json:"active"`     // participates in scheduling
}

// Window returns the working window as minutes since midnight.
func (m StaffMember) Window() (start, end int) {
	startClock := m.StartTime
	if startClock == "" {
		startClock = DefaultStartTime
	}
	endClock := m.EndTime
	if endClock == "" {
		endClock = DefaultEndTime
	}
	return timeutil.MinuteOfDay(startClock), timeutil.MinuteOfDay(endClock)
}

// WorksOn reports whether weekday (Sunday = 0) is one of the member's
// working days.
func (m StaffMember) WorksOn(weekday int) bool {
	for _, d := range m.WorkDays {
		if d == weekday {
			return true
		}
	}
	return false
}

// Service is a bookable offering with a duration that drives slot occupancy.
type Service struct {
	ID          string `json:"id"`
	TenantID    string `json:"tenant_id"`
	Name        string `json:"name"`
	DurationMin int    `json:"duration_min"`
	Price       string `json:"price"` // display value as delivered by the store
}

// EffectiveDuration returns the service duration in minutes, falling back to
// DefaultDurationMin for unset or invalid values.
func (s Service) EffectiveDuration() int {
	if s.DurationMin <= 0 {
		return DefaultDurationMin
	}
	return s.DurationMin
}

// Client is a tenant's customer. The scheduling core reads but never mutates
// client records.
type Client struct {
	ID       string `json:"id"`
	TenantID string `json:"tenant_id"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
}

// Appointment binds a client, staff member and service to a date and start
// time. The occupied interval is [start, start + service duration).
type Appointment struct {
	ID        string `json:"id"`
	TenantID  string `json:"tenant_id"`
	StaffID   string `json:"staff_id"`
	ClientID  string `json:"client_id"`
	ServiceID string `json:"service_id"`
	Date      string `json:"date"`  // "YYYY-MM-DD"
	StartTime string `json:"start"` // "HH:MM"
	Status    Status `json:"status"`
}

// StartMinute returns the appointment start as minutes since midnight.
func (a Appointment) StartMinute() int {
	return timeutil.MinuteOfDay(a.StartTime)
}
