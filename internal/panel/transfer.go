package panel

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/pointsdash/pointsdash/internal/api"
	"github.com/pointsdash/pointsdash/internal/notify"
)

// leadingInt matches an optionally signed integer prefix, the way a numeric
// form input is coerced: "3.7" yields 3, "abc" yields nothing.
var leadingInt = regexp.MustCompile(`^[+-]?\d+`)

func parseIntPrefix(s string) (int, bool) {
	m := leadingInt.FindString(strings.TrimSpace(s))
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return n, true
}

// TransferPanel sends points to another account by email.
type TransferPanel struct {
	lifecycle
	ReceiverEmail string
	Amount        string
	// OnSuccess is invoked after a successful transfer so the shell can
	// refresh the displayed balance.
	OnSuccess func()
}

// NewTransferPanel creates the panel.
func NewTransferPanel(client *api.Client, notifier notify.Notifier) *TransferPanel {
	return &TransferPanel{lifecycle: newLifecycle(client, notifier)}
}

// Submit validates locally and posts to /points/transfer.
func (p *TransferPanel) Submit(ctx context.Context) error {
	if err := p.beginSubmit(); err != nil {
		return err
	}

	amount, ok := parseIntPrefix(p.Amount)
	if strings.TrimSpace(p.ReceiverEmail) == "" || !ok || amount <= 0 {
		return p.reject("Invalid Input", "Please enter a valid email and amount greater than zero.")
	}

	payload := map[string]any{
		"to_email": p.ReceiverEmail,
		"amount":   amount,
	}
	if _, err := p.client.Call(ctx, "POST", "/points/transfer", payload, true, nil); err != nil {
		return p.fail("Transfer Failed", "Failed to transfer points.", err)
	}

	p.ReceiverEmail = ""
	p.Amount = ""
	p.succeed("Transfer Successful", "Points transferred successfully!")
	if p.OnSuccess != nil {
		p.OnSuccess()
	}
	return nil
}
