package sheetdb

import (
	"strconv"
	"strings"

	"agendei/internal/models"
	"agendei/internal/timeutil"
)

// Collection names recognized by the record store.
const (
	TabStaff       = "Staff"
	TabService     = "Service"
	TabClient      = "Client"
	TabAppointment = "Appointment"
)

// DecodeStaff maps a semi-structured row onto a StaffMember. Missing fields
// take the documented defaults: 09:00-19:00 window, Mon-Sat working days,
// boolean flags compared against "true".
func DecodeStaff(row Row, tenantID string) models.StaffMember {
	active := true
	if v, ok := Resolve(row, "active"); ok {
		active = strings.EqualFold(strings.TrimSpace(v), "true")
	}

	return models.StaffMember{
		ID:        ResolveOr(row, "id", ""),
		TenantID:  tenantID,
		Name:      ResolveOr(row, "name", ""),
		WorkDays:  parseWorkDays(ResolveOr(row, "workdays", "")),
		StartTime: timeutil.NormalizeClock(ResolveOr(row, "starttime", models.DefaultStartTime)),
		EndTime:   timeutil.NormalizeClock(ResolveOr(row, "endtime", models.DefaultEndTime)),
		Active:    active,
	}
}

// DecodeService maps a row onto a Service. An unparseable duration falls back
// to the 30-minute default.
func DecodeService(row Row, tenantID string) models.Service {
	duration := models.DefaultDurationMin
	if v, ok := Resolve(row, "duration"); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > 0 {
			duration = n
		}
	}

	return models.Service{
		ID:          ResolveOr(row, "id", ""),
		TenantID:    tenantID,
		Name:        ResolveOr(row, "name", ""),
		DurationMin: duration,
		Price:       ResolveOr(row, "price", ""),
	}
}

// DecodeClient maps a row onto a Client.
func DecodeClient(row Row, tenantID string) models.Client {
	return models.Client{
		ID:       ResolveOr(row, "id", ""),
		TenantID: tenantID,
		Name:     ResolveOr(row, "name", ""),
		Phone:    ResolveOr(row, "phone", ""),
		Email:    ResolveOr(row, "email", ""),
	}
}

// DecodeAppointment maps a row onto an Appointment. Dates and clocks are
// canonicalized and unknown status values normalize to PENDING.
func DecodeAppointment(row Row, tenantID string) models.Appointment {
	return models.Appointment{
		ID:        ResolveOr(row, "id", ""),
		TenantID:  tenantID,
		StaffID:   ResolveOr(row, "staffid", ""),
		ClientID:  ResolveOr(row, "clientid", ""),
		ServiceID: ResolveOr(row, "serviceid", ""),
		Date:      timeutil.NormalizeDate(ResolveOr(row, "date", "")),
		StartTime: timeutil.NormalizeClock(ResolveOr(row, "start", "")),
		Status:    models.ParseStatus(ResolveOr(row, "status", "")),
	}
}

// EncodeAppointment renders an appointment as a row in the collection's
// canonical column order, ready for an insert or update envelope.
func EncodeAppointment(a models.Appointment) Row {
	return Row{
		"id":        a.ID,
		"staffId":   a.StaffID,
		"clientId":  a.ClientID,
		"serviceId": a.ServiceID,
		"date":      a.Date,
		"start":     a.StartTime,
		"status":    string(a.Status),
	}
}

// parseWorkDays reads a separated list of weekday numbers ("1,2,3"). Values
// outside 0-6 are dropped; an empty or unusable list defaults to Mon-Sat.
func parseWorkDays(s string) []int {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ';' || r == ' ' || r == '|'
	})

	var days []int
	for _, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil || n < 0 || n > 6 {
			continue
		}
		days = append(days, n)
	}
	if len(days) == 0 {
		return models.DefaultWorkDays()
	}
	return days
}
