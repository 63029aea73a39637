package handlers

import (
	"net/http"

	"github.com/md-rashed-zaman/carebook/libs/httpx"
	"github.com/md-rashed-zaman/carebook/services/booking-service/internal/accounts"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) RegisterAccount(w http.ResponseWriter, r *http.Request) {
	var req accounts.RegisterRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteErrors(w, http.StatusBadRequest, []string{"invalid json body"})
		return
	}
	session, err := h.accounts.Register(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, session)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteErrors(w, http.StatusBadRequest, []string{"invalid json body"})
		return
	}
	session, err := h.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, session)
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		unauthenticated(w)
		return
	}
	acct, err := h.accounts.Me(r.Context(), actor.ID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, acct)
}

func (h *Handler) Providers(w http.ResponseWriter, r *http.Request) {
	providers, err := h.accounts.Providers(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if providers == nil {
		providers = []accounts.Account{}
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"providers": providers})
}
