package panel

import (
	"context"
	"encoding/json"

	"github.com/pointsdash/pointsdash/internal/api"
	"github.com/pointsdash/pointsdash/internal/model"
	"github.com/pointsdash/pointsdash/internal/notify"
)

// SurveysPanel lists the surveys currently open to the user.
type SurveysPanel struct {
	lifecycle
	surveys []model.Survey
}

// NewSurveysPanel creates the panel.
func NewSurveysPanel(client *api.Client, notifier notify.Notifier) *SurveysPanel {
	return &SurveysPanel{lifecycle: newLifecycle(client, notifier)}
}

// Load fetches the catalog from GET /api/surveys and keeps only active
// surveys. An empty catalog is an empty state, not a failure.
func (p *SurveysPanel) Load(ctx context.Context) error {
	p.phase = PhaseLoading
	p.surveys = nil

	raw, err := p.client.Call(ctx, "GET", "/api/surveys", nil, false, nil)
	if err != nil {
		return p.failLoad("Error", "Failed to load surveys.", err)
	}

	var all []model.Survey
	if err := json.Unmarshal(raw, &all); err != nil {
		return p.failLoad("Error", "Failed to load surveys.", err)
	}

	active := make([]model.Survey, 0, len(all))
	for _, s := range all {
		if s.IsActive {
			active = append(active, s)
		}
	}
	p.surveys = active
	p.phase = PhaseReady
	return nil
}

// Surveys returns the active surveys from the last successful Load.
func (p *SurveysPanel) Surveys() []model.Survey { return p.surveys }
