package schedule

import (
	"time"

	"agendei/internal/models"
	"agendei/internal/timeutil"
)

// Slot is a candidate start time within a staff member's working window.
type Slot struct {
	Start     string `json:"start"` // "10:00"
	End       string `json:"end"`   // "10:45"
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"` // "booked" or "past" when unavailable
}

// Grid builds the ordered slot grid for a staff member, service and date.
// Slots step at 30-minute granularity from the start of the working window;
// no slot is emitted whose end (start + service duration) would exceed the
// window end. A date outside the member's working days, or a member not
// participating in scheduling, yields no slots at all. For today's date,
// slots already behind now are masked as past.
func Grid(staff models.StaffMember, svc models.Service, date string, appts []models.Appointment, durOf DurationFunc, now time.Time) []Slot {
	if !staff.Active {
		return nil
	}

	date = timeutil.NormalizeDate(date)
	if !staff.WorksOn(timeutil.Weekday(date)) {
		return nil
	}

	startMin, endMin := staff.Window()
	duration := svc.EffectiveDuration()

	isToday := date == timeutil.Today(now)
	nowMinute := now.Hour()*60 + now.Minute()

	var slots []Slot
	for cursor := startMin; cursor+duration <= endMin; cursor += timeutil.SlotMinutes {
		slot := Slot{
			Start:     timeutil.FormatMinute(cursor),
			End:       timeutil.FormatMinute(cursor + duration),
			Available: true,
		}

		if _, busy := OccupiedAt(appts, durOf, cursor); busy {
			slot.Available = false
			slot.Reason = "booked"
		} else if isToday && cursor < nowMinute {
			slot.Available = false
			slot.Reason = "past"
		}

		slots = append(slots, slot)
	}
	return slots
}
