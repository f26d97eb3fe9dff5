package api

import (
	"encoding/json"
	"net/http"
	"regexp"

	"github.com/pointsdash/pointsdash/internal/stub/server"
	"github.com/pointsdash/pointsdash/internal/stub/store"
)

// Me handles GET /users/me.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)
	server.JSON(w, http.StatusOK, u.UserProfile)
}

// ChangePassword handles POST /users/change-password.
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		server.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.NewPassword == "" {
		server.Error(w, http.StatusUnprocessableEntity, "New password must not be empty.")
		return
	}

	u := currentUser(r)
	if !store.VerifyHash(u.PasswordHash, req.CurrentPassword) {
		server.Error(w, http.StatusUnprocessableEntity, "Current password is incorrect.")
		return
	}

	u.PasswordHash = store.MustHash(req.NewPassword)
	h.store.Users.Set(u.Email, u)
	server.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

var pinPattern = regexp.MustCompile(`^\d{4}$`)

// ChangePIN handles POST /users/change-pin.
func (h *Handler) ChangePIN(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CurrentPIN string `json:"current_pin"`
		NewPIN     string `json:"new_pin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		server.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if !pinPattern.MatchString(req.NewPIN) {
		server.Error(w, http.StatusUnprocessableEntity, "New PIN must be a 4-digit number.")
		return
	}

	u := currentUser(r)
	if !store.VerifyHash(u.PINHash, req.CurrentPIN) {
		server.Error(w, http.StatusUnprocessableEntity, "Current PIN is incorrect.")
		return
	}

	u.PINHash = store.MustHash(req.NewPIN)
	h.store.Users.Set(u.Email, u)
	server.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
