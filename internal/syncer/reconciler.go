// Package syncer keeps the in-memory projection aligned with the external
// record store. One tenant is active at a time: selecting it pulls
// immediately and then on a fixed interval, and selecting another tenant
// cancels the previous loop. A pull still in flight when the selection
// changes is allowed to finish, but its result is discarded.
package syncer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"agendei/internal/metrics"
	"agendei/internal/sheetdb"
	"agendei/internal/store"
)

// RecordStore is the read side of a tenant's record store endpoint.
type RecordStore interface {
	Fetch(ctx context.Context, tab string) ([]sheetdb.Row, error)
}

// Factory resolves the record store for a tenant.
type Factory func(tenantID string) (RecordStore, error)

// DefaultInterval is the poll period while a tenant stays selected.
const DefaultInterval = 60 * time.Second

// Manager binds the polling loop to the tenant-selection lifetime.
type Manager struct {
	store    *store.Store
	factory  Factory
	interval time.Duration
	logger   *zerolog.Logger

	mu      sync.Mutex
	current string
	gen     uint64
	cancel  context.CancelFunc
}

// NewManager constructs a reconciler over the given projection store.
func NewManager(st *store.Store, factory Factory, interval time.Duration, logger *zerolog.Logger) *Manager {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Manager{
		store:    st,
		factory:  factory,
		interval: interval,
		logger:   logger,
	}
}

// Current returns the selected tenant ID, empty when none.
func (m *Manager) Current() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Select makes tenantID the active tenant: the previous polling loop is
// cancelled and a new one starts with an immediate pull. Selecting the
// already-active tenant is a no-op.
func (m *Manager) Select(tenantID string) error {
	m.mu.Lock()
	if m.current == tenantID {
		m.mu.Unlock()
		return nil
	}

	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}

	m.current = tenantID
	m.gen++
	gen := m.gen

	if tenantID == "" {
		m.mu.Unlock()
		return nil
	}

	rs, err := m.factory(tenantID)
	if err != nil {
		m.current = ""
		m.mu.Unlock()
		return fmt.Errorf("resolve record store for tenant %s: %w", tenantID, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.mu.Unlock()

	m.logger.Info().Str("tenant", tenantID).Msg("tenant selected, sync loop started")
	go m.loop(ctx, tenantID, rs, gen)
	return nil
}

// Deselect stops the polling loop and clears the active tenant.
func (m *Manager) Deselect() {
	_ = m.Select("")
}

func (m *Manager) loop(ctx context.Context, tenantID string, rs RecordStore, gen uint64) {
	m.pull(ctx, tenantID, rs, gen)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.pull(ctx, tenantID, rs, gen)
		}
	}
}

// pull fetches the four collections and swaps the tenant's snapshot in one
// replace. Any fetch failure keeps the previous snapshot; a result arriving
// after the selection moved on is dropped.
func (m *Manager) pull(ctx context.Context, tenantID string, rs RecordStore, gen uint64) {
	snap, err := m.fetchSnapshot(ctx, tenantID, rs)
	if err != nil {
		metrics.IncSyncRun("error")
		m.logger.Error().Err(err).Str("tenant", tenantID).Msg("pull failed, keeping previous snapshot")
		return
	}

	m.mu.Lock()
	stale := m.gen != gen || m.current != tenantID
	m.mu.Unlock()
	if stale {
		metrics.IncSyncRun("stale")
		m.logger.Debug().Str("tenant", tenantID).Msg("discarding late pull result")
		return
	}

	m.store.Replace(tenantID, snap)
	metrics.IncSyncRun("ok")
	metrics.IncSnapshotReplaced(tenantID)
	m.logger.Debug().Str("tenant", tenantID).
		Int("staff", len(snap.Staff)).
		Int("services", len(snap.Services)).
		Int("clients", len(snap.Clients)).
		Int("appointments", len(snap.Appointments)).
		Msg("snapshot replaced")
}

func (m *Manager) fetchSnapshot(ctx context.Context, tenantID string, rs RecordStore) (store.Snapshot, error) {
	var snap store.Snapshot

	staffRows, err := rs.Fetch(ctx, sheetdb.TabStaff)
	if err != nil {
		return snap, err
	}
	for _, row := range staffRows {
		snap.Staff = append(snap.Staff, sheetdb.DecodeStaff(row, tenantID))
	}

	serviceRows, err := rs.Fetch(ctx, sheetdb.TabService)
	if err != nil {
		return snap, err
	}
	for _, row := range serviceRows {
		snap.Services = append(snap.Services, sheetdb.DecodeService(row, tenantID))
	}

	clientRows, err := rs.Fetch(ctx, sheetdb.TabClient)
	if err != nil {
		return snap, err
	}
	for _, row := range clientRows {
		snap.Clients = append(snap.Clients, sheetdb.DecodeClient(row, tenantID))
	}

	apptRows, err := rs.Fetch(ctx, sheetdb.TabAppointment)
	if err != nil {
		return snap, err
	}
	for _, row := range apptRows {
		snap.Appointments = append(snap.Appointments, sheetdb.DecodeAppointment(row, tenantID))
	}

	return snap, nil
}
