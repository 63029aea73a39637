package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/md-rashed-zaman/carebook/libs/httpx"
	"github.com/md-rashed-zaman/carebook/services/booking-service/internal/apperr"
	"github.com/md-rashed-zaman/carebook/services/booking-service/internal/appointment"
	"github.com/md-rashed-zaman/carebook/services/booking-service/internal/schedule"
)

type appointmentView struct {
	ID         string             `json:"id"`
	PatientID  string             `json:"patient_id"`
	ProviderID string             `json:"provider_id"`
	Date       string             `json:"date"`
	StartTime  string             `json:"start_time"`
	EndTime    string             `json:"end_time"`
	Display    string             `json:"display"`
	Purpose    string             `json:"purpose"`
	Notes      string             `json:"notes"`
	Status     appointment.Status `json:"status"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

func toView(a appointment.Appointment) appointmentView {
	slot := schedule.Slot{Start: a.Start, End: a.End}
	return appointmentView{
		ID:         a.ID,
		PatientID:  a.PatientID,
		ProviderID: a.ProviderID,
		Date:       a.Start.Format(schedule.DateLayout),
		StartTime:  a.Start.Format(schedule.ClockLayout),
		EndTime:    a.End.Format(schedule.ClockLayout),
		Display:    slot.Display(),
		Purpose:    a.Purpose,
		Notes:      a.Notes,
		Status:     a.Status,
		CreatedAt:  a.CreatedAt,
		UpdatedAt:  a.UpdatedAt,
	}
}

func (h *Handler) AvailableSlots(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	providerID := q.Get("provider_id")
	if providerID == "" {
		providerID = q.Get("providerId")
	}
	slots, err := h.appointments.AvailableSlots(r.Context(), providerID, q.Get("date"))
	if err != nil {
		if msgs := apperr.Messages(err); len(msgs) > 0 {
			httpx.WriteError(w, http.StatusBadRequest, msgs[0])
			return
		}
		h.writeServiceError(w, r, err)
		return
	}
	if slots == nil {
		slots = []schedule.Slot{}
	}
	httpx.WriteJSON(w, http.StatusOK, slots)
}

func (h *Handler) CreateAppointment(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		unauthenticated(w)
		return
	}
	var req appointment.CreateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteErrors(w, http.StatusBadRequest, []string{"invalid json body"})
		return
	}
	appt, err := h.appointments.Create(r.Context(), actor, req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toView(appt))
}

type transitionRequest struct {
	Action string `json:"action"`
	Notes  string `json:"notes"`
}

func (h *Handler) TransitionAppointment(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		unauthenticated(w)
		return
	}
	var req transitionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteErrors(w, http.StatusBadRequest, []string{"invalid json body"})
		return
	}
	action, ok := appointment.ParseAction(req.Action)
	if !ok {
		httpx.WriteErrors(w, http.StatusBadRequest, []string{"action must be one of approve, reject, complete, cancel"})
		return
	}
	appt, err := h.appointments.Transition(r.Context(), actor, r.PathValue("id"), action, req.Notes)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toView(appt))
}

func (h *Handler) GetAppointment(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		unauthenticated(w)
		return
	}
	appt, err := h.appointments.Get(r.Context(), actor, r.PathValue("id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toView(appt))
}

func (h *Handler) ListAppointments(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		unauthenticated(w)
		return
	}
	appts, err := h.appointments.List(r.Context(), actor, strings.TrimSpace(r.URL.Query().Get("status")), queryLimit(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	out := make([]appointmentView, 0, len(appts))
	for _, a := range appts {
		out = append(out, toView(a))
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"appointments": out})
}
