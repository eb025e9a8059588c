// Package storefront assembles the page view models of the shop from the
// filter, loader and gallery controllers.
package storefront

import (
	"log/slog"

	"github.com/TiagoSD22/amigurumi-store/internal/events"
	"github.com/TiagoSD22/amigurumi-store/internal/loader"
	apperrors "github.com/TiagoSD22/amigurumi-store/pkg/errors"
)

type options struct {
	logger   *slog.Logger
	recorder events.Recorder
}

func buildOptions(opts []Option) options {
	o := options{logger: slog.Default(), recorder: events.Nop{}}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Option configures a page.
type Option func(*options)

// WithLogger sets the logger passed down to the page's controllers.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithRecorder sets the event sink passed down to the page's controllers.
func WithRecorder(r events.Recorder) Option {
	return func(o *options) { o.recorder = r }
}

// LoadStatus is the serializable lifecycle of a page's resource.
type LoadStatus struct {
	Status  loader.Status  `json:"status"`
	Message string         `json:"message,omitempty"`
	Kind    apperrors.Kind `json:"kind,omitempty"`
}

func statusOf[T any](s loader.State[T]) LoadStatus {
	return LoadStatus{Status: s.Status(), Message: s.Message(), Kind: s.Kind()}
}
