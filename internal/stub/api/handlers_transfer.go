package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/pointsdash/pointsdash/internal/stub/server"
)

// Transfer handles POST /points/transfer: debit the sender, credit the
// receiver looked up by email.
func (h *Handler) Transfer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ToEmail string `json:"to_email"`
		Amount  int    `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		server.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if req.Amount <= 0 {
		server.Error(w, http.StatusUnprocessableEntity, "Transfer amount must be positive.")
		return
	}
	toEmail := strings.ToLower(strings.TrimSpace(req.ToEmail))

	u := currentUser(r)
	if toEmail == u.Email {
		server.Error(w, http.StatusUnprocessableEntity, "Cannot transfer points to yourself.")
		return
	}
	receiver, ok := h.store.GetUser(toEmail)
	if !ok {
		server.Error(w, http.StatusUnprocessableEntity, "Recipient account not found.")
		return
	}
	if req.Amount > u.PointsBalance {
		server.Error(w, http.StatusUnprocessableEntity, "Insufficient points balance.")
		return
	}

	u.PointsBalance -= req.Amount
	receiver.PointsBalance += req.Amount
	h.store.Users.Set(u.Email, u)
	h.store.Users.Set(receiver.Email, receiver)

	server.JSON(w, http.StatusOK, map[string]any{
		"status":         "ok",
		"points_balance": u.PointsBalance,
	})
}
