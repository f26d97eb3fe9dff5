package panel

import (
	"context"
	"regexp"

	"github.com/pointsdash/pointsdash/internal/api"
	"github.com/pointsdash/pointsdash/internal/notify"
)

var pinPattern = regexp.MustCompile(`^\d{4}$`)

// ChangePINPanel lets the user rotate their 4-digit PIN.
type ChangePINPanel struct {
	lifecycle
	CurrentPIN string
	NewPIN     string
}

// NewChangePINPanel creates the panel.
func NewChangePINPanel(client *api.Client, notifier notify.Notifier) *ChangePINPanel {
	return &ChangePINPanel{lifecycle: newLifecycle(client, notifier)}
}

// Submit validates the new PIN locally and posts to /users/change-pin.
func (p *ChangePINPanel) Submit(ctx context.Context) error {
	if err := p.beginSubmit(); err != nil {
		return err
	}

	if !pinPattern.MatchString(p.NewPIN) {
		return p.reject("Invalid PIN", "New PIN must be a 4-digit number.")
	}

	payload := map[string]string{
		"current_pin": p.CurrentPIN,
		"new_pin":     p.NewPIN,
	}
	if _, err := p.client.Call(ctx, "POST", "/users/change-pin", payload, true, nil); err != nil {
		return p.fail("Change Failed", "Failed to change PIN.", err)
	}

	p.CurrentPIN = ""
	p.NewPIN = ""
	p.succeed("PIN Changed", "PIN changed successfully!")
	return nil
}
