package panel

import (
	"context"
	"encoding/json"
	"math"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/pointsdash/pointsdash/internal/api"
	"github.com/pointsdash/pointsdash/internal/model"
	"github.com/pointsdash/pointsdash/internal/notify"
)

const dateLayout = "2006-01-02"

// maxHistorySpanDays is the largest inclusive date range the history filter
// accepts.
const maxHistorySpanDays = 30

// HistoryPanel shows the user's redemption requests within a date range.
// Load re-runs whenever the filter fields change; a filter that fails
// validation aborts the fetch and leaves the displayed history untouched.
type HistoryPanel struct {
	lifecycle
	StartDate string // YYYY-MM-DD
	EndDate   string // YYYY-MM-DD
	Limit     int

	history []model.Redemption
}

// NewHistoryPanel creates the panel with the default filter: the last 30
// days, 10 items.
func NewHistoryPanel(client *api.Client, notifier notify.Notifier) *HistoryPanel {
	now := time.Now()
	return &HistoryPanel{
		lifecycle: newLifecycle(client, notifier),
		StartDate: now.AddDate(0, 0, -maxHistorySpanDays).Format(dateLayout),
		EndDate:   now.Format(dateLayout),
		Limit:     10,
	}
}

// Load validates the filter, fetches GET /redemption/history, and stores
// the results sorted newest-first regardless of server ordering. A body
// that is not a JSON array is treated as empty history.
func (p *HistoryPanel) Load(ctx context.Context) error {
	start, err := time.Parse(dateLayout, p.StartDate)
	if err != nil {
		return p.reject("Invalid Date Range", "Start date must be YYYY-MM-DD.")
	}
	end, err := time.Parse(dateLayout, p.EndDate)
	if err != nil {
		return p.reject("Invalid Date Range", "End date must be YYYY-MM-DD.")
	}
	if start.After(end) {
		return p.reject("Invalid Date Range", "Start date cannot be after end date.")
	}
	if spanDays(start, end) > maxHistorySpanDays {
		return p.reject("Date Range Exceeded", "Date range cannot exceed 30 days.")
	}

	p.phase = PhaseLoading

	q := url.Values{}
	q.Set("start_date", p.StartDate)
	q.Set("end_date", p.EndDate)
	q.Set("limit", strconv.Itoa(p.Limit))

	raw, err := p.client.Call(ctx, "GET", "/redemption/history", nil, true, q)
	if err != nil {
		// Keep whatever was already displayed; the panel stays usable.
		p.phase = PhaseReady
		p.notifier.Notify(notify.Notification{
			Title:       "Error",
			Description: api.Message(err, "Failed to load redemption history."),
			Severity:    notify.SeverityDestructive,
		})
		return err
	}

	var items []model.Redemption
	if err := json.Unmarshal(raw, &items); err != nil {
		items = nil
	}
	sort.SliceStable(items, func(i, j int) bool {
		return redemptionTime(items[i]).After(redemptionTime(items[j]))
	})

	p.history = items
	p.phase = PhaseReady
	return nil
}

// History returns the currently displayed redemptions, newest first.
func (p *HistoryPanel) History() []model.Redemption { return p.history }

// spanDays returns the inclusive span between two dates in whole days,
// rounding partial days up.
func spanDays(start, end time.Time) int {
	return int(math.Ceil(end.Sub(start).Hours() / 24))
}

func redemptionTime(r model.Redemption) time.Time {
	t, err := time.Parse(time.RFC3339, r.CreatedAt)
	if err != nil {
		return time.Time{}
	}
	return t
}
