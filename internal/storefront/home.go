package storefront

import (
	"context"

	"github.com/TiagoSD22/amigurumi-store/internal/catalog"
	"github.com/TiagoSD22/amigurumi-store/internal/domain"
	"github.com/TiagoSD22/amigurumi-store/internal/loader"
)

// Messages shown on the home page.
const (
	FeaturedFailedMessage = "Failed to load featured products"
	NoFeaturedMessage     = "No featured products available at the moment."
)

// HomeSnapshot is the rendered state of the home page.
type HomeSnapshot struct {
	Load       LoadStatus            `json:"state"`
	Featured   []Card                `json:"featured"`
	Empty      string                `json:"empty_message,omitempty"`
	Categories []domain.CategoryInfo `json:"categories"`
}

// HomePage shows the featured products and the category shortcuts.
type HomePage struct {
	featured *loader.Loader[[]domain.Product]
	opts     options
}

// NewHomePage creates the home page backed by c.
func NewHomePage(c catalog.Catalog, opts ...Option) *HomePage {
	o := buildOptions(opts)
	return &HomePage{
		featured: loader.New("featured", c.ListFeatured,
			loader.WithLogger[[]domain.Product](o.logger),
			loader.WithRecorder[[]domain.Product](o.recorder),
			loader.WithMessage[[]domain.Product](func(error) string { return FeaturedFailedMessage }),
		),
		opts: o,
	}
}

// Start fetches the featured products.
func (h *HomePage) Start(ctx context.Context) { h.featured.Trigger(ctx) }

// Wait blocks until the featured list settles.
func (h *HomePage) Wait(ctx context.Context) error {
	_, err := h.featured.Wait(ctx)
	return err
}

// Snapshot renders the current state.
func (h *HomePage) Snapshot() HomeSnapshot {
	state := h.featured.State()
	s := HomeSnapshot{
		Load:       statusOf(state),
		Featured:   []Card{},
		Categories: shopCategories(),
	}
	if products, ok := state.Data(); ok {
		s.Featured = cards(products, h.opts)
		if len(products) == 0 {
			s.Empty = NoFeaturedMessage
		}
	}
	return s
}

// shopCategories lists the category shortcuts, every selection except all.
func shopCategories() []domain.CategoryInfo {
	infos := domain.Selections()
	out := make([]domain.CategoryInfo, 0, len(infos)-1)
	for _, info := range infos {
		if !info.Selection.IsAll() {
			out = append(out, info)
		}
	}
	return out
}
