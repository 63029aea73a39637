package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/md-rashed-zaman/carebook/libs/auth"
	"github.com/md-rashed-zaman/carebook/libs/httpx"
	"github.com/md-rashed-zaman/carebook/services/booking-service/internal/accounts"
	"github.com/md-rashed-zaman/carebook/services/booking-service/internal/apperr"
	"github.com/md-rashed-zaman/carebook/services/booking-service/internal/appointment"
	"github.com/md-rashed-zaman/carebook/services/booking-service/internal/availability"
	"github.com/md-rashed-zaman/carebook/services/booking-service/internal/notify"
)

const retryMessage = "An error occurred while processing your request. Please try again."

type Handler struct {
	appointments *appointment.Service
	accounts     *accounts.Service
	templates    *availability.Service
	inbox        *notify.Inbox
	verifier     auth.Verifier
	logger       *slog.Logger
}

type Deps struct {
	Appointments *appointment.Service
	Accounts     *accounts.Service
	Templates    *availability.Service
	Inbox        *notify.Inbox
	Verifier     auth.Verifier
	Logger       *slog.Logger
}

func New(d Deps) *Handler {
	return &Handler{
		appointments: d.Appointments,
		accounts:     d.Accounts,
		templates:    d.Templates,
		inbox:        d.Inbox,
		verifier:     d.Verifier,
		logger:       d.Logger,
	}
}

// Register mounts the API on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	authed := func(fn http.HandlerFunc) http.Handler {
		return auth.RequireAuth(h.verifier)(fn)
	}

	mux.HandleFunc("GET /api/v1/available-slots", h.AvailableSlots)
	mux.HandleFunc("GET /api/v1/providers", h.Providers)

	mux.Handle("POST /api/v1/appointments", authed(h.CreateAppointment))
	mux.Handle("GET /api/v1/appointments", authed(h.ListAppointments))
	mux.Handle("GET /api/v1/appointments/{id}", authed(h.GetAppointment))
	mux.Handle("POST /api/v1/appointments/{id}/transition", authed(h.TransitionAppointment))

	mux.Handle("GET /api/v1/availability", authed(h.GetTemplate))
	mux.Handle("PUT /api/v1/availability", authed(h.ReplaceTemplate))

	mux.Handle("GET /api/v1/notifications", authed(h.ListNotifications))
	mux.Handle("POST /api/v1/notifications/{id}/read", authed(h.MarkNotificationRead))

	mux.HandleFunc("POST /api/v1/auth/register", h.RegisterAccount)
	mux.HandleFunc("POST /api/v1/auth/login", h.Login)
	mux.Handle("GET /api/v1/auth/me", authed(h.Me))
}

func actorFrom(r *http.Request) (appointment.Actor, bool) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		return appointment.Actor{}, false
	}
	role, ok := appointment.ParseRole(claims.Role)
	if !ok {
		return appointment.Actor{}, false
	}
	return appointment.Actor{ID: claims.UserID(), Role: role}, true
}

// writeServiceError maps the error taxonomy onto HTTP.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *apperr.ValidationError
	switch {
	case errors.Is(err, apperr.ErrSlotUnavailable):
		httpx.WriteErrors(w, http.StatusConflict, conflictMessages(err))
	case errors.As(err, &ve):
		httpx.WriteErrors(w, http.StatusBadRequest, ve.Messages)
	case errors.Is(err, apperr.ErrForbidden):
		httpx.WriteError(w, http.StatusForbidden, "You are not allowed to perform this action")
	case errors.Is(err, apperr.ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, "Not found")
	case errors.Is(err, apperr.ErrInvalidTransition):
		httpx.WriteError(w, http.StatusConflict, "This action is not allowed for the appointment's current status")
	case errors.Is(err, accounts.ErrEmailTaken):
		httpx.WriteErrors(w, http.StatusConflict, []string{"Email is already registered"})
	case errors.Is(err, accounts.ErrInvalidCredentials):
		httpx.WriteError(w, http.StatusUnauthorized, "Invalid email or password")
	default:
		h.logger.ErrorContext(r.Context(), "request failed",
			"err", err,
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", httpx.RequestIDFromContext(r.Context()),
		)
		httpx.WriteError(w, http.StatusInternalServerError, retryMessage)
	}
}

func conflictMessages(err error) []string {
	if msgs := apperr.Messages(err); len(msgs) > 0 {
		return msgs
	}
	return []string{apperr.SlotUnavailableMessage}
}

func queryLimit(r *http.Request) int {
	n, err := strconv.Atoi(strings.TrimSpace(r.URL.Query().Get("limit")))
	if err != nil || n <= 0 {
		return 0
	}
	return n
}

func unauthenticated(w http.ResponseWriter) {
	httpx.WriteError(w, http.StatusUnauthorized, "unauthenticated")
}
