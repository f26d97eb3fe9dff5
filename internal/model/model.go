// Package model defines the backend-owned records consumed by the dashboard
// panels. Every entity here is created and mutated by the rewards backend;
// this layer only reads them or triggers mutations over HTTP.
package model

// UserProfile is the authenticated user's account record from GET /users/me.
type UserProfile struct {
	Email         string `json:"email"`
	Name          string `json:"name,omitempty"`
	Status        string `json:"status"`
	PointsBalance int    `json:"points_balance"`
	ReferralCode  string `json:"referral_code,omitempty"`
	EmailVerified bool   `json:"email_verified"`
	IsAdmin       bool   `json:"is_admin"`
	IsAgent       bool   `json:"is_agent"`
	CreatedAt     string `json:"created_at"`
}

// Survey is one entry from the survey catalog. Only surveys with
// IsActive=true are offered to the user.
type Survey struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Reward      int    `json:"reward"`
	IsActive    bool   `json:"isActive"`
}

// Redemption statuses assigned by the backend. The client never transitions
// a redemption between statuses.
const (
	RedemptionPending  = "pending"
	RedemptionApproved = "approved"
	RedemptionRejected = "rejected"
)

// Redemption types accepted by POST /redemption/request.
const (
	RedeemBitcoin  = "bitcoin"
	RedeemGiftCard = "gift_card"
)

// Redemption is a user-initiated request to convert points into an external
// reward, as returned by GET /redemption/history.
type Redemption struct {
	ID              string  `json:"id"`
	Type            string  `json:"type"`
	PointsAmount    int     `json:"points_amount"`
	EquivalentValue float64 `json:"equivalent_value"`
	Status          string  `json:"status"`
	CreatedAt       string  `json:"created_at"`
}

// RedemptionRates holds the backend-configured conversion ratios from
// GET /redemption/rates. The backend has been observed returning these as
// both JSON numbers and strings, so they decode through Decimal.
type RedemptionRates struct {
	BitcoinRate  Decimal `json:"bitcoin_rate"`
	GiftCardRate Decimal `json:"gift_card_rate"`
	BaseDollar   Decimal `json:"base_dollar"`
}

// BitcoinLabel returns the display label for the bitcoin rate.
func (r RedemptionRates) BitcoinLabel() string {
	return FormatRate(float64(r.BitcoinRate), float64(r.BaseDollar))
}

// GiftCardLabel returns the display label for the gift card rate.
func (r RedemptionRates) GiftCardLabel() string {
	return FormatRate(float64(r.GiftCardRate), float64(r.BaseDollar))
}
