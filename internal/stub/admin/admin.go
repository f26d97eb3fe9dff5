// Package admin provides the /admin/* control plane of the stub backend:
// state reset and replacement, fault injection, request inspection, and
// simulated time. Tests use it to force the degenerate backend states the
// panels must survive.
package admin

import (
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pointsdash/pointsdash/internal/stub/server"
	pkgstore "github.com/pointsdash/pointsdash/pkg/store"
)

// StateStore is the state-management surface the stub store exposes.
type StateStore interface {
	Snapshot() any
	LoadState(data []byte) error
	Reset()
}

// Handler provides the admin endpoints.
type Handler struct {
	state StateStore
	mw    *server.Middleware
	clock *pkgstore.Clock
}

// NewHandler creates an admin handler.
func NewHandler(state StateStore, mw *server.Middleware, clock *pkgstore.Clock) *Handler {
	return &Handler{state: state, mw: mw, clock: clock}
}

// Routes mounts the admin endpoints.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/admin", func(r chi.Router) {
		r.Post("/reset", h.handleReset)
		r.Get("/state", h.handleGetState)
		r.Post("/state", h.handleLoadState)
		r.Post("/fault/*", h.handleInjectFault)
		r.Delete("/fault/*", h.handleRemoveFault)
		r.Get("/faults", h.handleListFaults)
		r.Get("/requests", h.handleGetRequests)
		r.Post("/time/advance", h.handleTimeAdvance)
		r.Get("/health", h.handleHealth)
	})
}

func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	h.state.Reset()
	h.mw.ReqLog.Clear()
	h.mw.Faults.Reset()
	if h.clock != nil {
		h.clock.Reset()
	}
	server.JSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

func (h *Handler) handleGetState(w http.ResponseWriter, r *http.Request) {
	server.JSON(w, http.StatusOK, h.state.Snapshot())
}

func (h *Handler) handleLoadState(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		server.Error(w, http.StatusBadRequest, "reading body failed")
		return
	}
	if err := h.state.LoadState(data); err != nil {
		server.Error(w, http.StatusBadRequest, "invalid state payload: "+err.Error())
		return
	}
	server.JSON(w, http.StatusOK, map[string]string{"status": "loaded"})
}

func (h *Handler) handleInjectFault(w http.ResponseWriter, r *http.Request) {
	endpoint := "/" + chi.URLParam(r, "*")

	var fault server.FaultConfig
	if err := server.DecodeJSON(r.Body, &fault); err != nil {
		server.Error(w, http.StatusBadRequest, "invalid fault payload")
		return
	}
	if fault.StatusCode == 0 {
		fault.StatusCode = http.StatusInternalServerError
	}
	h.mw.Faults.Set(endpoint, fault)
	server.JSON(w, http.StatusOK, map[string]string{"status": "fault set", "endpoint": endpoint})
}

func (h *Handler) handleRemoveFault(w http.ResponseWriter, r *http.Request) {
	endpoint := "/" + chi.URLParam(r, "*")
	if !h.mw.Faults.Remove(endpoint) {
		server.Error(w, http.StatusNotFound, "no fault registered for "+endpoint)
		return
	}
	server.JSON(w, http.StatusOK, map[string]string{"status": "fault removed"})
}

func (h *Handler) handleListFaults(w http.ResponseWriter, r *http.Request) {
	server.JSON(w, http.StatusOK, h.mw.Faults.All())
}

func (h *Handler) handleGetRequests(w http.ResponseWriter, r *http.Request) {
	server.JSON(w, http.StatusOK, h.mw.ReqLog.Entries())
}

func (h *Handler) handleTimeAdvance(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Duration string `json:"duration"`
	}
	if err := server.DecodeJSON(r.Body, &req); err != nil {
		server.Error(w, http.StatusBadRequest, "invalid body")
		return
	}
	d, err := time.ParseDuration(req.Duration)
	if err != nil {
		server.Error(w, http.StatusBadRequest, "invalid duration: "+req.Duration)
		return
	}
	h.clock.Advance(d)
	server.JSON(w, http.StatusOK, map[string]string{
		"status": "advanced",
		"now":    h.clock.Now().Format(time.RFC3339),
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	server.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
