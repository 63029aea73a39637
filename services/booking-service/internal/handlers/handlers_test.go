package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/md-rashed-zaman/carebook/libs/auth"
	"github.com/md-rashed-zaman/carebook/services/booking-service/internal/accounts"
	"github.com/md-rashed-zaman/carebook/services/booking-service/internal/appointment"
	"github.com/md-rashed-zaman/carebook/services/booking-service/internal/availability"
	"github.com/md-rashed-zaman/carebook/services/booking-service/internal/notify"
	"github.com/md-rashed-zaman/carebook/services/booking-service/internal/storetest"
	"github.com/md-rashed-zaman/carebook/services/booking-service/internal/validation"
)

type testServer struct {
	store *storetest.Store
	mux   *http.ServeMux
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := storetest.New()
	issuer, err := auth.NewIssuer("handler-test-secret", "carebook", time.Hour)
	if err != nil {
		t.Fatalf("NewIssuer failed: %v", err)
	}
	v := validation.New()
	now := func() time.Time { return time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC) }
	h := New(Deps{
		Appointments: appointment.NewService(store, appointment.WithClock(now), appointment.WithLocation(time.UTC), appointment.WithValidator(v)),
		Accounts:     accounts.NewService(store, issuer, v),
		Templates:    availability.NewService(store, v),
		Inbox:        notify.NewInbox(store),
		Verifier:     issuer,
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	mux := http.NewServeMux()
	h.Register(mux)
	return &testServer{store: store, mux: mux}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rw := httptest.NewRecorder()
	s.mux.ServeHTTP(rw, req)
	return rw
}

func decode[T any](t *testing.T, rw *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rw.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rw.Body.String(), err)
	}
	return out
}

func (s *testServer) register(t *testing.T, role, first, email string) accounts.Session {
	t.Helper()
	body := map[string]any{
		"role":             role,
		"first_name":       first,
		"last_name":        "Tester",
		"email":            email,
		"password":         "password123",
		"confirm_password": "password123",
	}
	if role == "provider" {
		body["specialization"] = "Cardiology"
		body["consultation_fee"] = 80.5
	}
	rw := s.do(t, http.MethodPost, "/api/v1/auth/register", "", body)
	if rw.Code != http.StatusCreated {
		t.Fatalf("register %s: expected 201, got %d: %s", email, rw.Code, rw.Body.String())
	}
	return decode[accounts.Session](t, rw)
}

func TestBookingFlow(t *testing.T) {
	s := newTestServer(t)
	patient := s.register(t, "patient", "Jane", "jane@example.com")
	other := s.register(t, "patient", "John", "john@example.com")
	provider := s.register(t, "provider", "Greg", "greg@example.com")
	providerID := provider.Account.ID

	rw := s.do(t, http.MethodGet, "/api/v1/available-slots?providerId="+providerID+"&date=2026-03-02", "", nil)
	if rw.Code != http.StatusOK {
		t.Fatalf("slots: expected 200, got %d", rw.Code)
	}
	slots := decode[[]map[string]string](t, rw)
	if len(slots) != 16 || slots[0]["start"] != "09:00:00" || slots[0]["display"] != "9:00 AM - 9:30 AM" {
		t.Fatalf("unexpected slots %v", slots)
	}

	create := map[string]string{"provider_id": providerID, "date": "2026-03-02", "start_time": "09:00", "purpose": "Checkup"}
	rw = s.do(t, http.MethodPost, "/api/v1/appointments", patient.AccessToken, create)
	if rw.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", rw.Code, rw.Body.String())
	}
	created := decode[map[string]any](t, rw)
	id, _ := created["id"].(string)
	if id == "" || created["status"] != "pending" {
		t.Fatalf("unexpected create response %v", created)
	}

	rw = s.do(t, http.MethodPost, "/api/v1/appointments", other.AccessToken, create)
	if rw.Code != http.StatusConflict {
		t.Fatalf("duplicate slot: expected 409, got %d", rw.Code)
	}
	if errs := decode[map[string][]string](t, rw)["errors"]; len(errs) != 1 {
		t.Fatalf("expected one error message, got %v", errs)
	}

	transition := func(token, id, action string) *httptest.ResponseRecorder {
		return s.do(t, http.MethodPost, "/api/v1/appointments/"+id+"/transition", token, map[string]string{"action": action})
	}
	if rw := transition(patient.AccessToken, id, "approve"); rw.Code != http.StatusForbidden {
		t.Fatalf("patient approve: expected 403, got %d", rw.Code)
	}
	if rw := transition(provider.AccessToken, id, "approve"); rw.Code != http.StatusOK {
		t.Fatalf("approve: expected 200, got %d: %s", rw.Code, rw.Body.String())
	}
	if rw := transition(provider.AccessToken, id, "approve"); rw.Code != http.StatusConflict {
		t.Fatalf("second approve: expected 409, got %d", rw.Code)
	}
	if rw := transition(provider.AccessToken, "00000000-0000-0000-0000-000000000000", "approve"); rw.Code != http.StatusNotFound {
		t.Fatalf("unknown appointment: expected 404, got %d", rw.Code)
	}
	if rw := transition(provider.AccessToken, id, "archive"); rw.Code != http.StatusBadRequest {
		t.Fatalf("unknown action: expected 400, got %d", rw.Code)
	}

	rw = s.do(t, http.MethodGet, "/api/v1/appointments/"+id, other.AccessToken, nil)
	if rw.Code != http.StatusForbidden {
		t.Fatalf("stranger get: expected 403, got %d", rw.Code)
	}
	rw = s.do(t, http.MethodGet, "/api/v1/appointments?status=approved", provider.AccessToken, nil)
	if rw.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", rw.Code)
	}
	if list := decode[map[string][]map[string]any](t, rw)["appointments"]; len(list) != 1 || list[0]["start_time"] != "09:00:00" {
		t.Fatalf("unexpected list %v", list)
	}

	rw = s.do(t, http.MethodGet, "/api/v1/notifications?unread=true", patient.AccessToken, nil)
	inbox := decode[map[string][]notify.Notification](t, rw)["notifications"]
	if len(inbox) != 1 || inbox[0].Title != "Appointment Approved" {
		t.Fatalf("unexpected patient inbox %+v", inbox)
	}
	rw = s.do(t, http.MethodPost, "/api/v1/notifications/"+inbox[0].ID+"/read", patient.AccessToken, nil)
	if rw.Code != http.StatusNoContent {
		t.Fatalf("mark read: expected 204, got %d", rw.Code)
	}
	rw = s.do(t, http.MethodPost, "/api/v1/notifications/"+inbox[0].ID+"/read", provider.AccessToken, nil)
	if rw.Code != http.StatusNotFound {
		t.Fatalf("mark other user's notification: expected 404, got %d", rw.Code)
	}
	rw = s.do(t, http.MethodGet, "/api/v1/notifications?unread=true", patient.AccessToken, nil)
	if inbox := decode[map[string][]notify.Notification](t, rw)["notifications"]; len(inbox) != 0 {
		t.Fatalf("expected empty unread inbox, got %+v", inbox)
	}
}

func TestAvailableSlotsErrors(t *testing.T) {
	s := newTestServer(t)
	provider := s.register(t, "provider", "Greg", "greg@example.com")

	rw := s.do(t, http.MethodGet, "/api/v1/available-slots?provider_id="+provider.Account.ID+"&date=2026/03/02", "", nil)
	if rw.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rw.Code)
	}
	if msg := decode[map[string]string](t, rw)["error"]; !strings.Contains(msg, "YYYY-MM-DD") {
		t.Fatalf("unexpected error %q", msg)
	}

	rw = s.do(t, http.MethodGet, "/api/v1/available-slots?provider_id=nobody&date=2026-03-02", "", nil)
	if rw.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rw.Code)
	}
}

func TestCreateRequiresPatientToken(t *testing.T) {
	s := newTestServer(t)
	provider := s.register(t, "provider", "Greg", "greg@example.com")
	body := map[string]string{"provider_id": provider.Account.ID, "date": "2026-03-02", "start_time": "09:00", "purpose": "Checkup"}

	if rw := s.do(t, http.MethodPost, "/api/v1/appointments", "", body); rw.Code != http.StatusUnauthorized {
		t.Fatalf("no token: expected 401, got %d", rw.Code)
	}
	if rw := s.do(t, http.MethodPost, "/api/v1/appointments", provider.AccessToken, body); rw.Code != http.StatusForbidden {
		t.Fatalf("provider token: expected 403, got %d", rw.Code)
	}
}

func TestCreateValidationErrors(t *testing.T) {
	s := newTestServer(t)
	patient := s.register(t, "patient", "Jane", "jane@example.com")

	rw := s.do(t, http.MethodPost, "/api/v1/appointments", patient.AccessToken, map[string]string{"purpose": ""})
	if rw.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rw.Code)
	}
	if errs := decode[map[string][]string](t, rw)["errors"]; len(errs) != 4 {
		t.Fatalf("expected 4 messages, got %v", errs)
	}
}

func TestStorageFailureIsGeneric(t *testing.T) {
	s := newTestServer(t)
	patient := s.register(t, "patient", "Jane", "jane@example.com")
	provider := s.register(t, "provider", "Greg", "greg@example.com")
	s.store.FailOn("AppendEvent", errors.New("relation outbox_events does not exist"))

	body := map[string]string{"provider_id": provider.Account.ID, "date": "2026-03-02", "start_time": "09:00", "purpose": "Checkup"}
	rw := s.do(t, http.MethodPost, "/api/v1/appointments", patient.AccessToken, body)
	if rw.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rw.Code)
	}
	if msg := decode[map[string]string](t, rw)["error"]; msg != retryMessage {
		t.Fatalf("internal details leaked: %q", msg)
	}
}

func TestAccounts(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "provider", "Greg", "greg@example.com")

	dup := map[string]any{
		"role": "patient", "first_name": "G", "last_name": "H", "email": "GREG@example.com",
		"password": "password123", "confirm_password": "password123",
	}
	if rw := s.do(t, http.MethodPost, "/api/v1/auth/register", "", dup); rw.Code != http.StatusConflict {
		t.Fatalf("duplicate email: expected 409, got %d", rw.Code)
	}

	bad := map[string]any{"role": "admin", "email": "nope", "password": "short", "confirm_password": "other"}
	rw := s.do(t, http.MethodPost, "/api/v1/auth/register", "", bad)
	if rw.Code != http.StatusBadRequest {
		t.Fatalf("invalid register: expected 400, got %d", rw.Code)
	}
	errs := decode[map[string][]string](t, rw)["errors"]
	want := map[string]bool{
		"Role must be patient or provider":            true,
		"First name is required":                      true,
		"Last name is required":                       true,
		"Please enter a valid email address":          true,
		"Password must be at least 8 characters long": true,
		"Passwords do not match":                      true,
	}
	if len(errs) != len(want) {
		t.Fatalf("unexpected errors %v", errs)
	}
	for _, e := range errs {
		if !want[e] {
			t.Fatalf("unexpected message %q", e)
		}
	}

	rw = s.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "greg@example.com", "password": "wrong-password"})
	if rw.Code != http.StatusUnauthorized {
		t.Fatalf("bad login: expected 401, got %d", rw.Code)
	}
	rw = s.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "Greg@Example.com", "password": "password123"})
	if rw.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d", rw.Code)
	}
	session := decode[accounts.Session](t, rw)

	rw = s.do(t, http.MethodGet, "/api/v1/auth/me", session.AccessToken, nil)
	me := decode[accounts.Account](t, rw)
	if me.Role != appointment.RoleProvider || me.Profile == nil || me.Profile.Specialization != "Cardiology" {
		t.Fatalf("unexpected me %+v", me)
	}

	rw = s.do(t, http.MethodGet, "/api/v1/providers", "", nil)
	if providers := decode[map[string][]accounts.Account](t, rw)["providers"]; len(providers) != 1 || providers[0].Profile.ConsultationFee != 80.5 {
		t.Fatalf("unexpected providers %+v", providers)
	}
}

func TestTemplateRoundTrip(t *testing.T) {
	s := newTestServer(t)
	provider := s.register(t, "provider", "Greg", "greg@example.com")
	patient := s.register(t, "patient", "Jane", "jane@example.com")

	body := map[string]any{"days": []map[string]any{
		{"weekday": 1, "is_working": true, "start_time": "09:00", "end_time": "12:00"},
		{"weekday": 2, "is_working": false},
	}}
	if rw := s.do(t, http.MethodPut, "/api/v1/availability", patient.AccessToken, body); rw.Code != http.StatusForbidden {
		t.Fatalf("patient template: expected 403, got %d", rw.Code)
	}
	rw := s.do(t, http.MethodPut, "/api/v1/availability", provider.AccessToken, body)
	if rw.Code != http.StatusOK {
		t.Fatalf("put template: expected 200, got %d: %s", rw.Code, rw.Body.String())
	}
	days := decode[map[string][]availability.Day](t, rw)["days"]
	if len(days) != 7 || !days[1].IsWorking || days[1].End != "12:00" || days[2].IsWorking || !days[3].Default {
		t.Fatalf("unexpected template %+v", days)
	}

	rw = s.do(t, http.MethodGet, "/api/v1/available-slots?provider_id="+provider.Account.ID+"&date=2026-03-02", "", nil)
	if slots := decode[[]map[string]string](t, rw); len(slots) != 6 {
		t.Fatalf("expected 6 Monday slots, got %d", len(slots))
	}
	rw = s.do(t, http.MethodGet, "/api/v1/available-slots?provider_id="+provider.Account.ID+"&date=2026-03-03", "", nil)
	if slots := decode[[]map[string]string](t, rw); len(slots) != 0 {
		t.Fatalf("expected no Tuesday slots, got %d", len(slots))
	}

	invalid := map[string]any{"days": []map[string]any{
		{"weekday": 1, "is_working": true, "start_time": "12:00", "end_time": "09:00"},
	}}
	if rw := s.do(t, http.MethodPut, "/api/v1/availability", provider.AccessToken, invalid); rw.Code != http.StatusBadRequest {
		t.Fatalf("inverted window: expected 400, got %d", rw.Code)
	}
}
