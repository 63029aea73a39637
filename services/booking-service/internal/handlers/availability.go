package handlers

import (
	"net/http"

	"github.com/md-rashed-zaman/carebook/libs/httpx"
	"github.com/md-rashed-zaman/carebook/services/booking-service/internal/availability"
)

type templateRequest struct {
	Days []availability.Day `json:"days"`
}

func (h *Handler) GetTemplate(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		unauthenticated(w)
		return
	}
	days, err := h.templates.Get(r.Context(), actor)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, templateRequest{Days: days})
}

func (h *Handler) ReplaceTemplate(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		unauthenticated(w)
		return
	}
	var req templateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteErrors(w, http.StatusBadRequest, []string{"invalid json body"})
		return
	}
	if err := h.templates.Replace(r.Context(), actor, req.Days); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.GetTemplate(w, r)
}
