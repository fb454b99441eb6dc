// Package store keeps the in-memory projection of tenant data pulled from
// the external record store. The store is the working copy only; the record
// store remains the system of record and each successful pull replaces a
// tenant's snapshot wholesale.
package store

import (
	"sync"

	"agendei/internal/models"
)

// Snapshot is one tenant's full set of projected collections.
type Snapshot struct {
	Staff        []models.StaffMember
	Services     []models.Service
	Clients      []models.Client
	Appointments []models.Appointment
}

// Store holds snapshots keyed by tenant. Replace swaps one tenant's snapshot
// atomically and never touches other tenants' data.
type Store struct {
	mu      sync.RWMutex
	tenants map[string]*Snapshot
}

// New constructs an empty store.
func New() *Store {
	return &Store{tenants: make(map[string]*Snapshot)}
}

// Replace installs a freshly pulled snapshot for a tenant.
func (s *Store) Replace(tenantID string, snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := snap
	s.tenants[tenantID] = &copied
}

// Drop removes a tenant's snapshot entirely.
func (s *Store) Drop(tenantID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tenants, tenantID)
}

// Snapshot returns a copy of the tenant's current snapshot. Empty slices for
// an unknown tenant.
func (s *Store) Snapshot(tenantID string) Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, ok := s.tenants[tenantID]
	if !ok {
		return Snapshot{}
	}
	return Snapshot{
		Staff:        append([]models.StaffMember(nil), snap.Staff...),
		Services:     append([]models.Service(nil), snap.Services...),
		Clients:      append([]models.Client(nil), snap.Clients...),
		Appointments: append([]models.Appointment(nil), snap.Appointments...),
	}
}

// StaffByID returns a staff member of the tenant.
func (s *Store) StaffByID(tenantID, staffID string) (models.StaffMember, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if snap, ok := s.tenants[tenantID]; ok {
		for _, m := range snap.Staff {
			if m.ID == staffID {
				return m, true
			}
		}
	}
	return models.StaffMember{}, false
}

// ServiceByID returns a service of the tenant.
func (s *Store) ServiceByID(tenantID, serviceID string) (models.Service, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if snap, ok := s.tenants[tenantID]; ok {
		for _, v := range snap.Services {
			if v.ID == serviceID {
				return v, true
			}
		}
	}
	return models.Service{}, false
}

// ServiceDuration returns the effective duration of a service, defaulting to
// 30 minutes when the service is unknown.
func (s *Store) ServiceDuration(tenantID, serviceID string) int {
	svc, ok := s.ServiceByID(tenantID, serviceID)
	if !ok {
		return models.DefaultDurationMin
	}
	return svc.EffectiveDuration()
}

// StaffAppointments returns the tenant's appointments for one staff member
// and date, cancelled ones included; callers filter by status.
func (s *Store) StaffAppointments(tenantID, staffID, date string) []models.Appointment {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, ok := s.tenants[tenantID]
	if !ok {
		return nil
	}
	var out []models.Appointment
	for _, a := range snap.Appointments {
		if a.StaffID == staffID && a.Date == date {
			out = append(out, a)
		}
	}
	return out
}

// AppointmentByID returns one appointment of the tenant.
func (s *Store) AppointmentByID(tenantID, id string) (models.Appointment, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if snap, ok := s.tenants[tenantID]; ok {
		for _, a := range snap.Appointments {
			if a.ID == id {
				return a, true
			}
		}
	}
	return models.Appointment{}, false
}

// UpsertAppointment applies a local write optimistically. The next pull may
// overwrite it if the record store has not observed the write yet; that gap
// is an accepted trade-off of the polling protocol.
func (s *Store) UpsertAppointment(tenantID string, appt models.Appointment) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, ok := s.tenants[tenantID]
	if !ok {
		snap = &Snapshot{}
		s.tenants[tenantID] = snap
	}
	for i, a := range snap.Appointments {
		if a.ID == appt.ID {
			snap.Appointments[i] = appt
			return
		}
	}
	snap.Appointments = append(snap.Appointments, appt)
}

// RemoveAppointment deletes a locally removed appointment from the projection.
func (s *Store) RemoveAppointment(tenantID, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, ok := s.tenants[tenantID]
	if !ok {
		return
	}
	for i, a := range snap.Appointments {
		if a.ID == id {
			snap.Appointments = append(snap.Appointments[:i], snap.Appointments[i+1:]...)
			return
		}
	}
}
