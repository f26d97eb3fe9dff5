package panel

import (
	"context"

	"github.com/pointsdash/pointsdash/internal/api"
	"github.com/pointsdash/pointsdash/internal/notify"
)

// ChangePasswordPanel lets the user rotate their password.
type ChangePasswordPanel struct {
	lifecycle
	CurrentPassword    string
	NewPassword        string
	ConfirmNewPassword string
}

// NewChangePasswordPanel creates the panel.
func NewChangePasswordPanel(client *api.Client, notifier notify.Notifier) *ChangePasswordPanel {
	return &ChangePasswordPanel{lifecycle: newLifecycle(client, notifier)}
}

// Submit validates locally and posts to /users/change-password. On success
// all three fields are cleared; on failure they are left intact for
// correction.
func (p *ChangePasswordPanel) Submit(ctx context.Context) error {
	if err := p.beginSubmit(); err != nil {
		return err
	}

	if p.NewPassword != p.ConfirmNewPassword {
		return p.reject("Password Mismatch", "New passwords do not match.")
	}

	payload := map[string]string{
		"current_password": p.CurrentPassword,
		"new_password":     p.NewPassword,
	}
	if _, err := p.client.Call(ctx, "POST", "/users/change-password", payload, true, nil); err != nil {
		return p.fail("Change Failed", "Failed to change password.", err)
	}

	p.CurrentPassword = ""
	p.NewPassword = ""
	p.ConfirmNewPassword = ""
	p.succeed("Password Changed", "Password changed successfully!")
	return nil
}
