package sheetdb

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"agendei/internal/models"
)

func TestDecodeStaffDefaults(t *testing.T) {
	staff := DecodeStaff(Row{"ID": "s1", "Nome": "Ana"}, "t1")

	assert.Equal(t, "s1", staff.ID)
	assert.Equal(t, "t1", staff.TenantID)
	assert.Equal(t, "Ana", staff.Name)
	assert.Equal(t, models.DefaultStartTime, staff.StartTime)
	assert.Equal(t, models.DefaultEndTime, staff.EndTime)
	assert.Equal(t, models.DefaultWorkDays(), staff.WorkDays)
	assert.True(t, staff.Active, "active defaults to true when column is absent")
}

func TestDecodeStaffFuzzyColumns(t *testing.T) {
	row := Row{
		"Codigo":        "s2",
		"Nome":          "Bruno",
		"Entrada":       "8:00",
		"Fechamento":    "18:30:00",
		"Dias Trabalho": "1,2,3",
		"Agenda Ativa":  "false",
	}

	staff := DecodeStaff(row, "t1")
	assert.Equal(t, "s2", staff.ID)
	assert.Equal(t, "08:00", staff.StartTime)
	assert.Equal(t, "18:30", staff.EndTime)
	assert.Equal(t, []int{1, 2, 3}, staff.WorkDays)
	assert.False(t, staff.Active)
}

func TestDecodeStaffActiveStringComparison(t *testing.T) {
	// Anything that is not "true" is false, including "1" and "yes".
	for _, v := range []string{"1", "yes", "sim", ""} {
		staff := DecodeStaff(Row{"id": "s", "active": v}, "t1")
		assert.False(t, staff.Active, "value %q", v)
	}
	staff := DecodeStaff(Row{"id": "s", "active": "TRUE"}, "t1")
	assert.True(t, staff.Active)
}

func TestDecodeService(t *testing.T) {
	svc := DecodeService(Row{"id": "v1", "Nome": "Corte", "Duração": "45", "Valor": "50"}, "t1")
	assert.Equal(t, 45, svc.DurationMin)
	assert.Equal(t, "50", svc.Price)

	// Unparseable duration takes the 30-minute default.
	svc = DecodeService(Row{"id": "v2", "Duração": "quick"}, "t1")
	assert.Equal(t, models.DefaultDurationMin, svc.DurationMin)

	svc = DecodeService(Row{"id": "v3", "Duração": "-5"}, "t1")
	assert.Equal(t, models.DefaultDurationMin, svc.DurationMin)
}

func TestDecodeAppointment(t *testing.T) {
	row := Row{
		"id":           "a1",
		"Profissional": "s1",
		"Cliente":      "c1",
		"Servico":      "v1",
		"Data":         "10/03/2025",
		"Hora Inicio":  "9:30",
		"Situacao":     "confirmado?",
	}

	appt := DecodeAppointment(row, "t1")
	assert.Equal(t, "a1", appt.ID)
	assert.Equal(t, "s1", appt.StaffID)
	assert.Equal(t, "c1", appt.ClientID)
	assert.Equal(t, "v1", appt.ServiceID)
	assert.Equal(t, "2025-03-10", appt.Date)
	assert.Equal(t, "09:30", appt.StartTime)
	assert.Equal(t, models.StatusPending, appt.Status, "unknown status normalizes to PENDING")
}

func TestEncodeAppointmentRoundTrip(t *testing.T) {
	appt := models.Appointment{
		ID: "a1", TenantID: "t1", StaffID: "s1", ClientID: "c1", ServiceID: "v1",
		Date: "2025-03-10", StartTime: "10:00", Status: models.StatusConfirmed,
	}

	decoded := DecodeAppointment(EncodeAppointment(appt), "t1")
	assert.Equal(t, appt, decoded)
}

func TestParseWorkDays(t *testing.T) {
	assert.Equal(t, []int{1, 3, 5}, parseWorkDays("1,3,5"))
	assert.Equal(t, []int{0, 6}, parseWorkDays("0; 6"))
	assert.Equal(t, models.DefaultWorkDays(), parseWorkDays(""))
	assert.Equal(t, models.DefaultWorkDays(), parseWorkDays("8,9"))
	assert.Equal(t, []int{2}, parseWorkDays("2,77"))
}
