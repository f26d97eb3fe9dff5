package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/pointsdash/pointsdash/internal/model"
	"github.com/pointsdash/pointsdash/internal/stub/server"
	"github.com/pointsdash/pointsdash/internal/stub/store"
)

// Rates handles GET /redemption/rates.
func (h *Handler) Rates(w http.ResponseWriter, r *http.Request) {
	server.JSON(w, http.StatusOK, h.store.Rates())
}

// RequestRedemption handles POST /redemption/request. It debits the user's
// balance and records a pending redemption; approval happens elsewhere (the
// admin control plane can rewrite status in tests).
func (h *Handler) RequestRedemption(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Type          string  `json:"type"`
		PointsAmount  float64 `json:"points_amount"`
		WalletAddress string  `json:"wallet_address"`
		EmailAddress  string  `json:"email_address"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		server.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	var rate float64
	var destination string
	switch req.Type {
	case model.RedeemBitcoin:
		rate = float64(h.store.Rates().BitcoinRate)
		destination = req.WalletAddress
	case model.RedeemGiftCard:
		rate = float64(h.store.Rates().GiftCardRate)
		destination = req.EmailAddress
	default:
		server.Error(w, http.StatusUnprocessableEntity, fmt.Sprintf("Unknown redemption type %q.", req.Type))
		return
	}
	if req.PointsAmount <= 0 {
		server.Error(w, http.StatusUnprocessableEntity, "Points amount must be positive.")
		return
	}
	if destination == "" {
		server.Error(w, http.StatusUnprocessableEntity, "Redemption destination is required.")
		return
	}

	u := currentUser(r)
	points := int(req.PointsAmount)
	if points > u.PointsBalance {
		server.Error(w, http.StatusUnprocessableEntity, "Insufficient points balance.")
		return
	}

	u.PointsBalance -= points
	h.store.Users.Set(u.Email, u)

	rec := store.Redemption{
		Redemption: model.Redemption{
			ID:              "rdm-" + uuid.NewString(),
			Type:            req.Type,
			PointsAmount:    points,
			EquivalentValue: req.PointsAmount * rate,
			Status:          model.RedemptionPending,
			CreatedAt:       h.store.Clock.Now().Format(time.RFC3339),
		},
		UserEmail:   u.Email,
		Destination: destination,
	}
	h.store.Redemptions.Set(rec.ID, rec)

	server.JSON(w, http.StatusCreated, rec.Redemption)
}

// History handles GET /redemption/history with start_date, end_date
// (YYYY-MM-DD) and limit query parameters. Results are returned in storage
// order; ordering for display is the client's concern.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	start, err := time.Parse("2006-01-02", q.Get("start_date"))
	if err != nil {
		server.Error(w, http.StatusBadRequest, "start_date must be YYYY-MM-DD")
		return
	}
	end, err := time.Parse("2006-01-02", q.Get("end_date"))
	if err != nil {
		server.Error(w, http.StatusBadRequest, "end_date must be YYYY-MM-DD")
		return
	}
	limit := 10
	if raw := q.Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			server.Error(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
	}

	// The range is inclusive of both endpoint days.
	cutoff := end.AddDate(0, 0, 1)

	u := currentUser(r)
	items := make([]model.Redemption, 0)
	for _, rec := range h.store.RedemptionsByUser(u.Email) {
		t, err := time.Parse(time.RFC3339, rec.CreatedAt)
		if err != nil {
			continue
		}
		if t.Before(start) || !t.Before(cutoff) {
			continue
		}
		items = append(items, rec.Redemption)
		if len(items) >= limit {
			break
		}
	}
	server.JSON(w, http.StatusOK, items)
}
