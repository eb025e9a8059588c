package events

import (
	"context"
	"log/slog"

	"github.com/TiagoSD22/amigurumi-store/pkg/kafka"
	"github.com/TiagoSD22/amigurumi-store/pkg/logger"
)

// Publisher is the part of kafka.Producer the recorder uses.
type Publisher interface {
	Publish(ctx context.Context, event *kafka.Event) error
}

// KafkaRecorder publishes events as kafka envelopes keyed by component.
// Publish failures are logged and otherwise ignored.
type KafkaRecorder struct {
	publisher Publisher
	source    string
	logger    *slog.Logger
}

// NewKafkaRecorder creates a recorder publishing through p.
func NewKafkaRecorder(p Publisher, source string, l *slog.Logger) *KafkaRecorder {
	return &KafkaRecorder{publisher: p, source: source, logger: l}
}

func (r *KafkaRecorder) Record(ctx context.Context, e Event) {
	envelope, err := kafka.NewEvent(e.Type, e.Component, r.source, e)
	if err != nil {
		r.logger.WarnContext(ctx, "encode event", slog.String("error", err.Error()))
		return
	}
	envelope.Timestamp = e.Timestamp
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		envelope.WithCorrelationID(id)
	}
	if err := r.publisher.Publish(context.WithoutCancel(ctx), envelope); err != nil {
		r.logger.WarnContext(ctx, "publish event",
			slog.String("event_type", e.Type),
			slog.String("error", err.Error()),
		)
	}
}
