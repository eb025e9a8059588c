// Package filter keeps the active category of the product listing in step
// with the route and the shopper's selections.
package filter

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/TiagoSD22/amigurumi-store/internal/catalog"
	"github.com/TiagoSD22/amigurumi-store/internal/domain"
	"github.com/TiagoSD22/amigurumi-store/internal/events"
	"github.com/TiagoSD22/amigurumi-store/internal/loader"
	"github.com/TiagoSD22/amigurumi-store/pkg/logger"
)

// LoadFailedMessage is shown when the product list cannot be loaded.
const LoadFailedMessage = "Failed to load products"

type options struct {
	logger   *slog.Logger
	recorder events.Recorder
}

// Option configures a Controller.
type Option func(*options)

// WithLogger sets the controller's logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithRecorder sets the event sink for the underlying loader.
func WithRecorder(r events.Recorder) Option {
	return func(o *options) { o.recorder = r }
}

// Controller owns the active selection and the product list loader. Each
// change of selection issues exactly one fetch for the new query; the loader
// discards responses for queries that are no longer active.
type Controller struct {
	catalog catalog.Catalog
	loader  *loader.Loader[[]domain.Product]
	logger  *slog.Logger

	// triggerMu orders selection changes with the fetches they issue.
	triggerMu sync.Mutex
	started   bool

	mu     sync.Mutex
	active domain.CategorySelection
}

// New creates a controller whose initial selection comes from routeParam.
// Nothing is fetched until Start.
func New(c catalog.Catalog, routeParam string, opts ...Option) *Controller {
	o := options{logger: slog.Default(), recorder: events.Nop{}}
	for _, opt := range opts {
		opt(&o)
	}

	ctrl := &Controller{
		catalog: c,
		logger:  logger.Component(o.logger, "filter"),
		active:  domain.ParseSelection(routeParam),
	}
	ctrl.loader = loader.New("products",
		catalog.QueryFor(ctrl.active).Fetch(c),
		loader.WithLogger[[]domain.Product](o.logger),
		loader.WithRecorder[[]domain.Product](o.recorder),
		loader.WithMessage[[]domain.Product](func(error) string { return LoadFailedMessage }),
	)
	return ctrl
}

// Start issues the initial fetch for the route's selection. Only the first
// call, and only if no selection was made before it, has any effect.
func (c *Controller) Start(ctx context.Context) bool {
	c.triggerMu.Lock()
	defer c.triggerMu.Unlock()
	if c.started {
		return false
	}
	c.fetch(ctx, c.Active())
	return true
}

// Select applies an explicit selection from the category buttons. It reports
// whether the selection changed and a fetch was issued.
func (c *Controller) Select(ctx context.Context, raw string) bool {
	return c.apply(ctx, domain.ParseSelection(raw), "select")
}

// SyncRoute applies the category route parameter after navigation. An
// empty parameter selects everything.
func (c *Controller) SyncRoute(ctx context.Context, param string) bool {
	return c.apply(ctx, domain.ParseSelection(param), "route")
}

func (c *Controller) apply(ctx context.Context, sel domain.CategorySelection, source string) bool {
	c.triggerMu.Lock()
	defer c.triggerMu.Unlock()

	c.mu.Lock()
	if sel == c.active && c.started {
		c.mu.Unlock()
		return false
	}
	prev := c.active
	c.active = sel
	c.mu.Unlock()

	c.logger.DebugContext(ctx, "category changed",
		slog.String("from", string(prev)),
		slog.String("to", string(sel)),
		slog.String("source", source),
	)
	c.fetch(ctx, sel)
	return true
}

// fetch issues the query for sel; callers hold triggerMu.
func (c *Controller) fetch(ctx context.Context, sel domain.CategorySelection) {
	c.started = true
	c.loader.Run(ctx, catalog.QueryFor(sel).Fetch(c.catalog))
}

// Active returns the current selection.
func (c *Controller) Active() domain.CategorySelection {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Title is the display label of the active selection.
func (c *Controller) Title() string {
	return domain.Lookup(c.Active()).Label
}

// Subtitle is the line shown under the title.
func (c *Controller) Subtitle() string {
	sel := c.Active()
	info := domain.Lookup(sel)
	if sel.IsAll() {
		return info.Description
	}
	return "Beautiful " + strings.ToLower(info.Label) + " made with love and care"
}

// State returns the product list state.
func (c *Controller) State() loader.State[[]domain.Product] {
	return c.loader.State()
}

// Wait blocks until the latest fetch settles.
func (c *Controller) Wait(ctx context.Context) (loader.State[[]domain.Product], error) {
	return c.loader.Wait(ctx)
}

// FetchCount is the number of fetches issued so far.
func (c *Controller) FetchCount() uint64 {
	return c.loader.Token()
}
