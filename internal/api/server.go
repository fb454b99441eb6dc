// Package api exposes the scheduling engine over HTTP: tenant selection,
// availability grids, the live board and appointment actions.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"agendei/internal/board"
	"agendei/internal/booking"
	"agendei/internal/metrics"
	"agendei/internal/store"
	"agendei/internal/syncer"
)

// HTTPServer serves the scheduling API.
type HTTPServer struct {
	store   *store.Store
	booking *booking.Service
	syncer  *syncer.Manager
	logger  *zerolog.Logger
	now     func() time.Time
}

// NewHTTPServer constructs the API server.
func NewHTTPServer(st *store.Store, bookingSvc *booking.Service, sync *syncer.Manager, logger *zerolog.Logger) *HTTPServer {
	return &HTTPServer{
		store:   st,
		booking: bookingSvc,
		syncer:  sync,
		logger:  logger,
		now:     time.Now,
	}
}

// Handler returns the routed HTTP handler.
func (s *HTTPServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/tenant/select", s.handleTenantSelect)
	mux.HandleFunc("/api/availability", s.handleAvailability)
	mux.HandleFunc("/api/board", s.handleBoard)
	mux.HandleFunc("/api/appointments", s.handleCreateAppointment)
	mux.HandleFunc("/api/appointments/confirm", s.handleStatus("confirm"))
	mux.HandleFunc("/api/appointments/cancel", s.handleStatus("cancel"))
	mux.HandleFunc("/api/appointments/complete", s.handleStatus("complete"))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

// Run serves until ctx is cancelled.
func (s *HTTPServer) Run(ctx context.Context, port int) error {
	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: s.Handler()}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// TenantSelectRequest selects the active tenant for polling.
type TenantSelectRequest struct {
	TenantID string `json:"tenant_id"`
}

// handleTenantSelect switches the active tenant.
// POST /api/tenant/select
func (s *HTTPServer) handleTenantSelect(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("tenant_select")
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed; use POST")
		return
	}

	var req TenantSelectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.TenantID == "" {
		writeError(w, http.StatusBadRequest, "tenant_id is required")
		return
	}

	if err := s.syncer.Select(req.TenantID); err != nil {
		s.logger.Error().Err(err).Str("tenant", req.TenantID).Msg("tenant select failed")
		writeError(w, http.StatusBadGateway, "tenant record store unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"selected": req.TenantID})
}

// handleAvailability returns the slot grid for a staff/service/date.
// GET /api/availability?tenant=&staff=&service=&date=YYYY-MM-DD
func (s *HTTPServer) handleAvailability(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("availability")
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	q := r.URL.Query()
	tenant, staff, service, date := q.Get("tenant"), q.Get("staff"), q.Get("service"), q.Get("date")
	if tenant == "" || staff == "" || date == "" {
		writeError(w, http.StatusBadRequest, "tenant, staff and date are required")
		return
	}

	slots, ok := s.booking.Availability(tenant, staff, service, date)
	if !ok {
		writeError(w, http.StatusNotFound, "staff member not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"date": date, "slots": slots})
}

// handleBoard returns the live occupancy board for the tenant.
// GET /api/board?tenant=
func (s *HTTPServer) handleBoard(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("board")
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	tenant := r.URL.Query().Get("tenant")
	if tenant == "" {
		writeError(w, http.StatusBadRequest, "tenant is required")
		return
	}

	lanes := board.Build(s.store.Snapshot(tenant), s.now())
	writeJSON(w, http.StatusOK, map[string]any{"lanes": lanes})
}

// CreateAppointmentRequest is the booking action payload.
type CreateAppointmentRequest struct {
	TenantID string `json:"tenant_id"`
	booking.CreateRequest
}

// handleCreateAppointment books a new appointment.
// POST /api/appointments
func (s *HTTPServer) handleCreateAppointment(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("appointment_create")
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed; use POST")
		return
	}

	var req CreateAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.TenantID == "" || req.StaffID == "" || req.Date == "" || req.StartTime == "" {
		writeError(w, http.StatusBadRequest, "tenant_id, staff_id, date and start are required")
		return
	}

	appt, err := s.booking.Create(r.Context(), req.TenantID, req.CreateRequest)
	if err != nil {
		if errors.Is(err, booking.ErrConflict) {
			writeError(w, http.StatusConflict, "time slot already taken")
			return
		}
		s.logger.Error().Err(err).Msg("appointment create failed")
		writeError(w, http.StatusInternalServerError, "could not create appointment")
		return
	}
	writeJSON(w, http.StatusCreated, appt)
}

// StatusRequest identifies the appointment for a status action.
type StatusRequest struct {
	TenantID      string `json:"tenant_id"`
	AppointmentID string `json:"appointment_id"`
}

// handleStatus applies a manual lifecycle action.
// POST /api/appointments/{confirm|cancel|complete}
func (s *HTTPServer) handleStatus(action string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		metrics.IncHTTP("appointment_" + action)
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed; use POST")
			return
		}

		var req StatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if req.TenantID == "" || req.AppointmentID == "" {
			writeError(w, http.StatusBadRequest, "tenant_id and appointment_id are required")
			return
		}

		var err error
		var appt any
		switch action {
		case "confirm":
			appt, err = s.booking.Confirm(r.Context(), req.TenantID, req.AppointmentID)
		case "cancel":
			appt, err = s.booking.Cancel(r.Context(), req.TenantID, req.AppointmentID)
		case "complete":
			appt, err = s.booking.Complete(r.Context(), req.TenantID, req.AppointmentID)
		}

		switch {
		case errors.Is(err, booking.ErrNotFound):
			writeError(w, http.StatusNotFound, "appointment not found")
		case errors.Is(err, booking.ErrInvalidTransition):
			writeError(w, http.StatusConflict, err.Error())
		case err != nil:
			s.logger.Error().Err(err).Str("action", action).Msg("status change failed")
			writeError(w, http.StatusInternalServerError, "status change failed")
		default:
			writeJSON(w, http.StatusOK, appt)
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
