package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"agendei/internal/metrics"
	"agendei/internal/models"
	"agendei/internal/schedule"
	"agendei/internal/sheetdb"
	"agendei/internal/store"
	"agendei/internal/timeutil"
)

var (
	// ErrConflict is returned when the requested interval overlaps an
	// existing non-cancelled appointment. Creation is rejected before any
	// write-back is attempted.
	ErrConflict = errors.New("time slot already taken")

	// ErrNotFound is returned for an unknown appointment ID.
	ErrNotFound = errors.New("appointment not found")
)

// StoreWriter applies mutations to a tenant's record store.
type StoreWriter interface {
	Insert(ctx context.Context, tab string, row sheetdb.Row) error
	Update(ctx context.Context, tab string, row sheetdb.Row) error
	Delete(ctx context.Context, tab string, row sheetdb.Row) error
}

// WriterFactory resolves the record-store writer for a tenant.
type WriterFactory func(tenantID string) StoreWriter

// AuditLog records lifecycle events. May be nil when auditing is disabled.
type AuditLog interface {
	Record(ctx context.Context, tenantID, entity, entityID, action, detail string) error
}

// Service owns appointment writes: it validates against the in-memory
// projection, applies changes optimistically and pushes them to the record
// store. A failed push is logged and dropped; the next periodic pull is the
// only recovery path.
type Service struct {
	store   *store.Store
	writers WriterFactory
	journal AuditLog
	logger  *zerolog.Logger
	now     func() time.Time
}

// NewService constructs a booking service.
func NewService(st *store.Store, writers WriterFactory, journal AuditLog, logger *zerolog.Logger) *Service {
	return &Service{
		store:   st,
		writers: writers,
		journal: journal,
		logger:  logger,
		now:     time.Now,
	}
}

// CreateRequest carries the fields of a booking action.
type CreateRequest struct {
	StaffID   string `json:"staff_id"`
	ClientID  string `json:"client_id"`
	ServiceID string `json:"service_id"`
	Date      string `json:"date"`
	StartTime string `json:"start"`
}

// Create books a new PENDING appointment. The occupied interval of the new
// appointment is checked cell by cell against the staff member's day; an
// overlap fails synchronously with ErrConflict and nothing is written.
func (s *Service) Create(ctx context.Context, tenantID string, req CreateRequest) (models.Appointment, error) {
	date := timeutil.NormalizeDate(req.Date)
	start := timeutil.NormalizeClock(req.StartTime)

	durOf := s.durationResolver(tenantID)
	duration := s.store.ServiceDuration(tenantID, req.ServiceID)
	existing := s.store.StaffAppointments(tenantID, req.StaffID, date)

	if schedule.HasConflict(existing, durOf, timeutil.MinuteOfDay(start), duration) {
		metrics.IncBookingConflict()
		return models.Appointment{}, fmt.Errorf("%s %s for staff %s: %w", date, start, req.StaffID, ErrConflict)
	}

	appt := models.Appointment{
		ID:        uuid.NewString(),
		TenantID:  tenantID,
		StaffID:   req.StaffID,
		ClientID:  req.ClientID,
		ServiceID: req.ServiceID,
		Date:      date,
		StartTime: start,
		Status:    models.StatusPending,
	}

	s.store.UpsertAppointment(tenantID, appt)
	s.writeBack(ctx, tenantID, "insert", appt)
	s.audit(ctx, tenantID, appt.ID, "create", fmt.Sprintf("%s %s staff=%s", date, start, req.StaffID))

	return appt, nil
}

// Confirm moves a PENDING appointment to CONFIRMED.
func (s *Service) Confirm(ctx context.Context, tenantID, id string) (models.Appointment, error) {
	return s.transition(ctx, tenantID, id, models.StatusConfirmed)
}

// Cancel moves any non-terminal appointment to CANCELLED. The move is not
// reversible through this state machine.
func (s *Service) Cancel(ctx context.Context, tenantID, id string) (models.Appointment, error) {
	return s.transition(ctx, tenantID, id, models.StatusCancelled)
}

// Complete moves an IN_PROGRESS appointment to COMPLETED. Completion is an
// explicit action only; the clock trigger never completes appointments.
func (s *Service) Complete(ctx context.Context, tenantID, id string) (models.Appointment, error) {
	return s.transition(ctx, tenantID, id, models.StatusCompleted)
}

// Remove deletes an appointment from the projection and the record store.
func (s *Service) Remove(ctx context.Context, tenantID, id string) error {
	appt, ok := s.store.AppointmentByID(tenantID, id)
	if !ok {
		return ErrNotFound
	}

	s.store.RemoveAppointment(tenantID, id)
	if w := s.writers(tenantID); w != nil {
		if err := w.Delete(ctx, sheetdb.TabAppointment, sheetdb.Row{"id": appt.ID}); err != nil {
			s.logger.Error().Err(err).Str("tenant", tenantID).Str("appointment", id).Msg("record store delete failed")
		}
	}
	s.audit(ctx, tenantID, id, "remove", "")
	return nil
}

// AutoStart advances every PENDING or CONFIRMED appointment whose start
// equals the current 30-minute slot, for today's date, to IN_PROGRESS. It is
// idempotent: appointments already IN_PROGRESS are left alone. Returns the
// number of appointments advanced.
func (s *Service) AutoStart(ctx context.Context, tenantID string, now time.Time) int {
	slot := timeutil.SlotFloor(now)
	today := timeutil.Today(now)

	advanced := 0
	for _, appt := range s.store.Snapshot(tenantID).Appointments {
		if appt.Date != today || timeutil.NormalizeClock(appt.StartTime) != slot {
			continue
		}
		if appt.Status != models.StatusPending && appt.Status != models.StatusConfirmed {
			continue
		}

		if err := Transition(&appt, models.StatusInProgress); err != nil {
			continue
		}
		s.store.UpsertAppointment(tenantID, appt)
		s.writeBack(ctx, tenantID, "update", appt)
		s.audit(ctx, tenantID, appt.ID, "auto_start", slot)
		metrics.IncAutoStart()
		advanced++
	}

	if advanced > 0 {
		s.logger.Info().Str("tenant", tenantID).Str("slot", slot).Int("advanced", advanced).
			Msg("appointments auto-started")
	}
	return advanced
}

func (s *Service) transition(ctx context.Context, tenantID, id string, to models.Status) (models.Appointment, error) {
	appt, ok := s.store.AppointmentByID(tenantID, id)
	if !ok {
		return models.Appointment{}, ErrNotFound
	}

	if err := Transition(&appt, to); err != nil {
		return models.Appointment{}, fmt.Errorf("appointment %s: %s -> %s: %w", id, appt.Status, to, err)
	}

	s.store.UpsertAppointment(tenantID, appt)
	s.writeBack(ctx, tenantID, "update", appt)
	s.audit(ctx, tenantID, id, "status", string(to))
	return appt, nil
}

// writeBack pushes the appointment to the record store. Failures are logged
// and dropped with no retry; the projection keeps the optimistic value until
// the next pull settles it.
func (s *Service) writeBack(ctx context.Context, tenantID, action string, appt models.Appointment) {
	w := s.writers(tenantID)
	if w == nil {
		return
	}

	row := sheetdb.EncodeAppointment(appt)
	var err error
	if action == "insert" {
		err = w.Insert(ctx, sheetdb.TabAppointment, row)
	} else {
		err = w.Update(ctx, sheetdb.TabAppointment, row)
	}
	if err != nil {
		s.logger.Error().Err(err).Str("tenant", tenantID).Str("appointment", appt.ID).
			Str("action", action).Msg("record store write failed")
	}
}

func (s *Service) audit(ctx context.Context, tenantID, id, action, detail string) {
	if s.journal == nil {
		return
	}
	if err := s.journal.Record(ctx, tenantID, "appointment", id, action, detail); err != nil {
		s.logger.Warn().Err(err).Msg("audit record failed")
	}
}

func (s *Service) durationResolver(tenantID string) schedule.DurationFunc {
	return func(serviceID string) int {
		return s.store.ServiceDuration(tenantID, serviceID)
	}
}

// Availability builds the bookable slot grid for a staff member, service and
// date from the current projection.
func (s *Service) Availability(tenantID, staffID, serviceID, date string) ([]schedule.Slot, bool) {
	staff, ok := s.store.StaffByID(tenantID, staffID)
	if !ok {
		return nil, false
	}
	svc, _ := s.store.ServiceByID(tenantID, serviceID)
	date = timeutil.NormalizeDate(date)

	appts := s.store.StaffAppointments(tenantID, staffID, date)
	return schedule.Grid(staff, svc, date, appts, s.durationResolver(tenantID), s.now()), true
}
