// Package api implements the HTTP interface of the stub rewards backend:
// the exact endpoints the dashboard panels consume, with realistic balance
// and credential semantics over in-memory state.
package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/pointsdash/pointsdash/internal/stub/server"
	"github.com/pointsdash/pointsdash/internal/stub/store"
)

// Handler holds the API handler state.
type Handler struct {
	store *store.MemoryStore
	mw    *server.Middleware
}

// NewHandler creates an API handler.
func NewHandler(s *store.MemoryStore, mw *server.Middleware) *Handler {
	return &Handler{store: s, mw: mw}
}

// Routes mounts the API endpoints.
func (h *Handler) Routes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.mw.FaultInjection)

		// Survey catalog is readable without a session.
		r.Get("/api/surveys", h.ListSurveys)

		r.Group(func(r chi.Router) {
			r.Use(h.requireAuth)

			r.Get("/users/me", h.Me)
			r.Post("/users/change-password", h.ChangePassword)
			r.Post("/users/change-pin", h.ChangePIN)

			r.Get("/redemption/rates", h.Rates)
			r.Post("/redemption/request", h.RequestRedemption)
			r.Get("/redemption/history", h.History)

			r.Post("/points/transfer", h.Transfer)
		})
	})
}
