// Package events carries optional observability notifications out of the
// loaders and galleries. Nothing in the storefront depends on them for
// correctness.
package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Event types.
const (
	TypeStateChanged = "loader.state_changed"
	TypeStaleDropped = "loader.stale_dropped"
	TypeImageLoaded  = "gallery.image_loaded"
	TypeImageFailed  = "gallery.image_failed"
)

// Event is a single notification.
type Event struct {
	ID         string            `json:"id"`
	Type       string            `json:"type"`
	Component  string            `json:"component"`
	Attributes map[string]string `json:"attributes,omitempty"`
	Timestamp  time.Time         `json:"timestamp"`
}

// New stamps an event with the current time.
func New(eventType, component string, attrs map[string]string) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		Component:  component,
		Attributes: attrs,
		Timestamp:  time.Now().UTC(),
	}
}

// Recorder receives events. Implementations must be safe for concurrent use
// and must not block the caller for long.
type Recorder interface {
	Record(ctx context.Context, e Event)
}

// Nop discards every event.
type Nop struct{}

func (Nop) Record(context.Context, Event) {}

// LogRecorder writes events to a structured logger at debug level.
type LogRecorder struct {
	logger *slog.Logger
}

// NewLogRecorder creates a recorder that logs through l.
func NewLogRecorder(l *slog.Logger) *LogRecorder {
	return &LogRecorder{logger: l}
}

func (r *LogRecorder) Record(ctx context.Context, e Event) {
	attrs := make([]slog.Attr, 0, len(e.Attributes)+2)
	attrs = append(attrs, slog.String("event_type", e.Type), slog.String("component", e.Component))
	for k, v := range e.Attributes {
		attrs = append(attrs, slog.String(k, v))
	}
	r.logger.LogAttrs(ctx, slog.LevelDebug, "storefront event", attrs...)
}

// Multi fans an event out to several recorders in order.
type Multi []Recorder

func (m Multi) Record(ctx context.Context, e Event) {
	for _, r := range m {
		r.Record(ctx, e)
	}
}
