package api

import (
	"net/http"

	"github.com/pointsdash/pointsdash/internal/stub/server"
)

// ListSurveys handles GET /api/surveys. The full catalog is returned,
// inactive entries included; filtering to active surveys is the client's
// concern.
func (h *Handler) ListSurveys(w http.ResponseWriter, r *http.Request) {
	server.JSON(w, http.StatusOK, h.store.Surveys.List())
}
