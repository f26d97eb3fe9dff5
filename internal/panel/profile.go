package panel

import (
	"context"
	"encoding/json"

	"github.com/pointsdash/pointsdash/internal/api"
	"github.com/pointsdash/pointsdash/internal/model"
	"github.com/pointsdash/pointsdash/internal/notify"
)

// ProfilePanel displays the authenticated user's account record.
type ProfilePanel struct {
	lifecycle
	user *model.UserProfile
}

// NewProfilePanel creates the panel.
func NewProfilePanel(client *api.Client, notifier notify.Notifier) *ProfilePanel {
	return &ProfilePanel{lifecycle: newLifecycle(client, notifier)}
}

// Load fetches the profile from GET /users/me.
func (p *ProfilePanel) Load(ctx context.Context) error {
	p.phase = PhaseLoading
	p.user = nil

	raw, err := p.client.Call(ctx, "GET", "/users/me", nil, true, nil)
	if err != nil {
		return p.failLoad("Error", "Failed to load profile.", err)
	}

	var user model.UserProfile
	if err := json.Unmarshal(raw, &user); err != nil {
		return p.failLoad("Error", "Failed to load profile.", err)
	}
	p.user = &user
	p.phase = PhaseReady
	return nil
}

// User returns the loaded profile, or nil before a successful Load.
func (p *ProfilePanel) User() *model.UserProfile { return p.user }
