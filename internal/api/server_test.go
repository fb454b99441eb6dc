package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agendei/internal/booking"
	"agendei/internal/models"
	"agendei/internal/sheetdb"
	"agendei/internal/store"
	"agendei/internal/syncer"
)

type nopWriter struct{}

func (nopWriter) Insert(context.Context, string, sheetdb.Row) error { return nil }
func (nopWriter) Update(context.Context, string, sheetdb.Row) error { return nil }
func (nopWriter) Delete(context.Context, string, sheetdb.Row) error { return nil }

type emptyRecordStore struct{}

func (emptyRecordStore) Fetch(context.Context, string) ([]sheetdb.Row, error) {
	return []sheetdb.Row{}, nil
}

type testServer struct {
	*httptest.Server
	store *store.Store
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := zerolog.Nop()
	st := store.New()
	svc := booking.NewService(st, func(string) booking.StoreWriter { return nopWriter{} }, nil, &logger)
	mgr := syncer.NewManager(st, func(string) (syncer.RecordStore, error) {
		return emptyRecordStore{}, nil
	}, time.Hour, &logger)
	t.Cleanup(mgr.Deselect)

	srv := NewHTTPServer(st, svc, mgr, &logger)
	srv.now = func() time.Time {
		return time.Date(2025, 3, 10, 10, 15, 0, 0, time.UTC)
	}
	return &testServer{Server: httptest.NewServer(srv.Handler()), store: st}
}

func seedSalon(st *store.Store) {
	st.Replace("salon-1", store.Snapshot{
		Staff: []models.StaffMember{
			{ID: "st1", TenantID: "salon-1", Name: "Ana", WorkDays: models.DefaultWorkDays(), Active: true},
		},
		Services: []models.Service{
			{ID: "sv1", TenantID: "salon-1", Name: "Corte", DurationMin: 30},
		},
		Appointments: []models.Appointment{
			{ID: "a1", TenantID: "salon-1", StaffID: "st1", ServiceID: "sv1",
				Date: "2025-03-10", StartTime: "14:00", Status: models.StatusConfirmed},
		},
	})
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	buf, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(buf))
	require.NoError(t, err)
	return resp
}

func TestAvailabilityEndpoint(t *testing.T) {
	srv := setupTestServer(t)
	defer srv.Close()
	seedSalon(srv.store)

	resp, err := http.Get(srv.URL + "/api/availability?tenant=salon-1&staff=st1&service=sv1&date=2025-03-11")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Date  string `json:"date"`
		Slots []struct {
			Start     string `json:"start"`
			Available bool   `json:"available"`
		} `json:"slots"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "2025-03-11", out.Date)
	assert.Len(t, out.Slots, 20)
	assert.Equal(t, "09:00", out.Slots[0].Start)
}

func TestAvailabilityValidation(t *testing.T) {
	srv := setupTestServer(t)
	defer srv.Close()
	seedSalon(srv.store)

	tests := []struct {
		name       string
		query      string
		wantStatus int
	}{
		{"missing params", "?tenant=salon-1", http.StatusBadRequest},
		{"unknown staff", "?tenant=salon-1&staff=nope&service=sv1&date=2025-03-11", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Get(srv.URL + "/api/availability" + tt.query)
			require.NoError(t, err)
			resp.Body.Close()
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}

func TestCreateAppointmentConflict(t *testing.T) {
	srv := setupTestServer(t)
	defer srv.Close()
	seedSalon(srv.store)

	body := map[string]string{
		"tenant_id":  "salon-1",
		"staff_id":   "st1",
		"service_id": "sv1",
		"client_id":  "c1",
		"date":       "2025-03-11",
		"start":      "10:00",
	}
	resp := postJSON(t, srv.URL+"/api/appointments", body)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// Same slot again collides.
	resp = postJSON(t, srv.URL+"/api/appointments", body)
	resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestStatusActions(t *testing.T) {
	srv := setupTestServer(t)
	defer srv.Close()
	seedSalon(srv.store)

	resp := postJSON(t, srv.URL+"/api/appointments", map[string]string{
		"tenant_id": "salon-1", "staff_id": "st1", "service_id": "sv1",
		"client_id": "c1", "date": "2025-03-11", "start": "11:00",
	})
	var created models.Appointment
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	resp.Body.Close()
	require.Equal(t, models.StatusPending, created.Status)

	resp = postJSON(t, srv.URL+"/api/appointments/confirm", map[string]string{
		"tenant_id": "salon-1", "appointment_id": created.ID,
	})
	var confirmed models.Appointment
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&confirmed))
	resp.Body.Close()
	assert.Equal(t, models.StatusConfirmed, confirmed.Status)

	resp = postJSON(t, srv.URL+"/api/appointments/complete", map[string]string{
		"tenant_id": "salon-1", "appointment_id": created.ID,
	})
	resp.Body.Close()
	// Confirmed appointments must start before they complete.
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = postJSON(t, srv.URL+"/api/appointments/cancel", map[string]string{
		"tenant_id": "salon-1", "appointment_id": created.ID,
	})
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestStatusUnknownAppointment(t *testing.T) {
	srv := setupTestServer(t)
	defer srv.Close()
	seedSalon(srv.store)

	resp := postJSON(t, srv.URL+"/api/appointments/cancel", map[string]string{
		"tenant_id": "salon-1", "appointment_id": "ghost",
	})
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestBoardEndpoint(t *testing.T) {
	srv := setupTestServer(t)
	defer srv.Close()
	seedSalon(srv.store)

	resp, err := http.Get(srv.URL + "/api/board?tenant=salon-1")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Lanes []struct {
			StaffID string `json:"staff_id"`
			Entries []struct {
				Start string `json:"start"`
				State string `json:"state"`
			} `json:"entries"`
		} `json:"lanes"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Len(t, out.Lanes, 1)
	assert.Equal(t, "st1", out.Lanes[0].StaffID)
	assert.NotEmpty(t, out.Lanes[0].Entries)
}

func TestTenantSelect(t *testing.T) {
	srv := setupTestServer(t)
	defer srv.Close()

	resp := postJSON(t, srv.URL+"/api/tenant/select", map[string]string{"tenant_id": "salon-2"})
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = postJSON(t, srv.URL+"/api/tenant/select", map[string]string{})
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMethodGuards(t *testing.T) {
	srv := setupTestServer(t)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/appointments")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

	resp = postJSON(t, srv.URL+"/api/board", map[string]string{})
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}
