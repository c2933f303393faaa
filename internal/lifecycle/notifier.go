package lifecycle

import (
	"log/slog"
	"sync"
)

// LogNotifier sends notifications to a logger. Used when the host has not
// attached a UI.
type LogNotifier struct {
	Logger *slog.Logger
}

// Info implements Notifier.
func (n LogNotifier) Info(msg string) {
	n.Logger.Info(msg, slog.String("source", "notification"))
}

// Error implements Notifier.
func (n LogNotifier) Error(msg, detail string) {
	n.Logger.Error(msg, slog.String("source", "notification"), slog.String("detail", detail))
}

// Notification is one message recorded by a Recorder.
type Notification struct {
	Level  string `json:"level"`
	Text   string `json:"text"`
	Detail string `json:"detail,omitempty"`
}

// Recorder collects notifications so a bridge can return them to the host.
type Recorder struct {
	mu    sync.Mutex
	items []Notification
}

// Info implements Notifier.
func (r *Recorder) Info(msg string) { r.add(Notification{Level: "info", Text: msg}) }

// Error implements Notifier.
func (r *Recorder) Error(msg, detail string) {
	r.add(Notification{Level: "error", Text: msg, Detail: detail})
}

func (r *Recorder) add(n Notification) {
	r.mu.Lock()
	r.items = append(r.items, n)
	r.mu.Unlock()
}

// Drain returns and clears the recorded notifications.
func (r *Recorder) Drain() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.items
	r.items = nil
	return out
}
