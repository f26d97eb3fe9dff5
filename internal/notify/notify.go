// Package notify abstracts the transient user notification sink (the toast
// system in a browser UI). Panels depend only on the Notifier interface, so
// any surface that can show a message can host them.
package notify

import "log/slog"

// Severity classifies a notification for display.
type Severity string

const (
	SeverityInfo        Severity = "info"
	SeveritySuccess     Severity = "success"
	SeverityDestructive Severity = "destructive"
)

// Notification is one transient message. Fire-and-forget: no caller consumes
// a return value from delivering it.
type Notification struct {
	Title       string
	Description string
	Severity    Severity
}

// Notifier accepts notifications for display.
type Notifier interface {
	Notify(n Notification)
}

// LogNotifier writes notifications to a structured logger.
type LogNotifier struct {
	Logger *slog.Logger
}

// NewLogNotifier creates a LogNotifier. A nil logger uses slog.Default().
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{Logger: logger}
}

// Notify logs the notification at a level matching its severity.
func (l *LogNotifier) Notify(n Notification) {
	attrs := []any{"title", n.Title, "description", n.Description}
	if n.Severity == SeverityDestructive {
		l.Logger.Error("notification", attrs...)
		return
	}
	l.Logger.Info("notification", append(attrs, "severity", string(n.Severity))...)
}

// Recorder captures notifications in order for assertions in tests.
type Recorder struct {
	Notifications []Notification
}

// Notify appends the notification.
func (r *Recorder) Notify(n Notification) {
	r.Notifications = append(r.Notifications, n)
}

// Last returns the most recent notification, or a zero value if none.
func (r *Recorder) Last() Notification {
	if len(r.Notifications) == 0 {
		return Notification{}
	}
	return r.Notifications[len(r.Notifications)-1]
}

// Count returns how many notifications were delivered.
func (r *Recorder) Count() int {
	return len(r.Notifications)
}

// Reset clears recorded notifications.
func (r *Recorder) Reset() {
	r.Notifications = nil
}
