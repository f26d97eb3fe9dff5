// Package panel implements the dashboard panels of the rewards app: each
// panel composes the HTTP client and the notification sink into a specific
// load/validate/submit lifecycle. Panels hold no state beyond their current
// fields and the last fetched data; everything durable lives behind the
// backend.
package panel

import (
	"errors"

	"github.com/pointsdash/pointsdash/internal/api"
	"github.com/pointsdash/pointsdash/internal/notify"
)

// Phase is the lifecycle state of a panel.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseReady
	PhaseSubmitting
	PhaseFailed
)

// String returns the phase name for logging and rendering.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	case PhaseSubmitting:
		return "submitting"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ErrBusy is returned when Submit is called while a write is already in
// flight. The submit-in-progress state stands in for the disabled submit
// button: at most one write call per panel at a time.
var ErrBusy = errors.New("a submission is already in progress")

// lifecycle is the shared state machine embedded by every panel.
type lifecycle struct {
	client   *api.Client
	notifier notify.Notifier
	phase    Phase

	// ReturnToDashboard is the shell-supplied callback a panel's error
	// affordance invokes to yield control back to the host.
	ReturnToDashboard func()
}

func newLifecycle(client *api.Client, notifier notify.Notifier) lifecycle {
	if notifier == nil {
		notifier = notify.NewLogNotifier(nil)
	}
	return lifecycle{client: client, notifier: notifier, phase: PhaseIdle}
}

// Phase returns the panel's current lifecycle phase.
func (l *lifecycle) Phase() Phase { return l.phase }

// Return invokes the shell's return-to-dashboard callback, if supplied.
func (l *lifecycle) Return() {
	if l.ReturnToDashboard != nil {
		l.ReturnToDashboard()
	}
}

// beginSubmit moves the panel into Submitting unless a write is already in
// flight.
func (l *lifecycle) beginSubmit() error {
	if l.phase == PhaseSubmitting {
		return ErrBusy
	}
	l.phase = PhaseSubmitting
	return nil
}

// reject surfaces a local validation failure. No network call is made and
// the panel returns to Ready with its fields intact.
func (l *lifecycle) reject(title, description string) error {
	l.phase = PhaseReady
	l.notifier.Notify(notify.Notification{
		Title:       title,
		Description: description,
		Severity:    notify.SeverityDestructive,
	})
	return api.Validation(description)
}

// fail surfaces a network or backend failure, preferring the backend's own
// message, and leaves the panel recoverable.
func (l *lifecycle) fail(title, fallback string, err error) error {
	l.phase = PhaseReady
	l.notifier.Notify(notify.Notification{
		Title:       title,
		Description: api.Message(err, fallback),
		Severity:    notify.SeverityDestructive,
	})
	return err
}

// succeed surfaces a successful write.
func (l *lifecycle) succeed(title, description string) {
	l.phase = PhaseReady
	l.notifier.Notify(notify.Notification{
		Title:       title,
		Description: description,
		Severity:    notify.SeveritySuccess,
	})
}

// failLoad surfaces a failed initial fetch: the panel shows an error
// placeholder (with the return-to-dashboard affordance) instead of data.
func (l *lifecycle) failLoad(title, fallback string, err error) error {
	l.phase = PhaseFailed
	l.notifier.Notify(notify.Notification{
		Title:       title,
		Description: api.Message(err, fallback),
		Severity:    notify.SeverityDestructive,
	})
	return err
}
