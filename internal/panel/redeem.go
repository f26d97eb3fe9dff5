package panel

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/pointsdash/pointsdash/internal/api"
	"github.com/pointsdash/pointsdash/internal/model"
	"github.com/pointsdash/pointsdash/internal/notify"
)

// RedeemPanel converts points into bitcoin or a gift card.
type RedeemPanel struct {
	lifecycle
	// Type selects the redemption kind: model.RedeemBitcoin or
	// model.RedeemGiftCard.
	Type        string
	Amount      string
	Destination string
	// OnSuccess is invoked after a successful submission, letting the shell
	// refresh its own view of the points balance.
	OnSuccess func()

	rates *model.RedemptionRates
}

// NewRedeemPanel creates the panel with bitcoin preselected.
func NewRedeemPanel(client *api.Client, notifier notify.Notifier) *RedeemPanel {
	return &RedeemPanel{
		lifecycle: newLifecycle(client, notifier),
		Type:      model.RedeemBitcoin,
	}
}

// Load fetches the current rates from GET /redemption/rates.
func (p *RedeemPanel) Load(ctx context.Context) error {
	p.phase = PhaseLoading

	raw, err := p.client.Call(ctx, "GET", "/redemption/rates", nil, true, nil)
	if err != nil {
		return p.failLoad("Error", "Failed to load redemption rates.", err)
	}
	var rates model.RedemptionRates
	if err := json.Unmarshal(raw, &rates); err != nil {
		return p.failLoad("Error", "Failed to load redemption rates.", err)
	}
	p.rates = &rates
	p.phase = PhaseReady
	return nil
}

// Rates returns the loaded rates, or nil before a successful Load.
func (p *RedeemPanel) Rates() *model.RedemptionRates { return p.rates }

// BitcoinRateLabel returns the display label for the bitcoin option.
func (p *RedeemPanel) BitcoinRateLabel() string {
	if p.rates == nil {
		return "Loading..."
	}
	return p.rates.BitcoinLabel()
}

// GiftCardRateLabel returns the display label for the gift card option.
func (p *RedeemPanel) GiftCardRateLabel() string {
	if p.rates == nil {
		return "Loading..."
	}
	return p.rates.GiftCardLabel()
}

// Submit validates locally and posts to /redemption/request. The payload
// carries the destination under wallet_address for bitcoin and
// email_address for gift cards.
func (p *RedeemPanel) Submit(ctx context.Context) error {
	if err := p.beginSubmit(); err != nil {
		return err
	}

	amount, err := strconv.ParseFloat(strings.TrimSpace(p.Amount), 64)
	if err != nil || amount <= 0 {
		return p.reject("Invalid Amount", "Please enter a valid amount greater than zero.")
	}
	if strings.TrimSpace(p.Destination) == "" {
		return p.reject("Missing Destination", "Please enter a destination (wallet or email).")
	}

	payload := map[string]any{
		"type":          p.Type,
		"points_amount": amount,
	}
	switch p.Type {
	case model.RedeemBitcoin:
		payload["wallet_address"] = p.Destination
	case model.RedeemGiftCard:
		payload["email_address"] = p.Destination
	default:
		return p.reject("Invalid Type", "Please select a redemption type.")
	}

	if _, err := p.client.Call(ctx, "POST", "/redemption/request", payload, true, nil); err != nil {
		return p.fail("Redemption Failed", "Failed to submit redemption request.", err)
	}

	p.Amount = ""
	p.Destination = ""
	p.succeed("Redemption Submitted", "Redemption request submitted successfully!")
	if p.OnSuccess != nil {
		p.OnSuccess()
	}
	return nil
}
