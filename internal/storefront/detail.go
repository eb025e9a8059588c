package storefront

import (
	"context"
	"strings"
	"sync"

	"github.com/TiagoSD22/amigurumi-store/internal/catalog"
	"github.com/TiagoSD22/amigurumi-store/internal/domain"
	"github.com/TiagoSD22/amigurumi-store/internal/gallery"
	"github.com/TiagoSD22/amigurumi-store/internal/loader"
	apperrors "github.com/TiagoSD22/amigurumi-store/pkg/errors"
)

// Messages shown on the detail page.
const (
	ProductNotFoundMessage = "Product not found"
	ProductFailedMessage   = "Failed to load product"
	AvailableLabel         = "✅ Available"
	OutOfStockLabel        = "❌ Out of Stock"
	ContactLabel           = "Contact for Purchase"
)

// Feature is one line of the craftsmanship list on the detail page.
type Feature struct {
	Icon string `json:"icon"`
	Text string `json:"text"`
}

// productFeatures is shared by every product; callers receive copies.
var productFeatures = [...]Feature{
	{"🧶", "Handcrafted with premium materials"},
	{"❤️", "Made with love and attention to detail"},
	{"🎨", "Unique design and colors"},
	{"🛡️", "Safe and durable materials"},
}

// ProductView is the rendered product on its detail page.
type ProductView struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	Description  string           `json:"description"`
	Price        string           `json:"price"`
	CategoryIcon string           `json:"category_icon"`
	CategoryName string           `json:"category_name"`
	CategoryLink string           `json:"category_link"`
	Added        string           `json:"added"`
	Available    bool             `json:"available"`
	Availability string           `json:"availability"`
	Featured     bool             `json:"featured"`
	Badge        string           `json:"badge,omitempty"`
	Features     []Feature        `json:"features"`
	Contact      string           `json:"contact_action"`
	Gallery      gallery.Snapshot `json:"gallery"`
}

// DetailSnapshot is the rendered state of the detail page.
type DetailSnapshot struct {
	Load    LoadStatus   `json:"state"`
	Product *ProductView `json:"product,omitempty"`
}

// DetailPage shows one product with its image carousel.
type DetailPage struct {
	id      string
	product *loader.Loader[*domain.Product]
	opts    options

	mu      sync.Mutex
	gallery *gallery.Controller
}

// NewDetailPage creates the detail page for product id.
func NewDetailPage(c catalog.Catalog, id string, opts ...Option) *DetailPage {
	o := buildOptions(opts)
	fetch := func(ctx context.Context) (*domain.Product, error) {
		return c.Get(ctx, id)
	}
	return &DetailPage{
		id: id,
		product: loader.New("product", fetch,
			loader.WithLogger[*domain.Product](o.logger),
			loader.WithRecorder[*domain.Product](o.recorder),
			loader.WithMessage[*domain.Product](detailMessage),
		),
		opts: o,
	}
}

func detailMessage(err error) string {
	if apperrors.KindOf(err) == apperrors.KindNotFound {
		return ProductNotFoundMessage
	}
	return ProductFailedMessage
}

// ID is the requested product id.
func (d *DetailPage) ID() string { return d.id }

// Start fetches the product.
func (d *DetailPage) Start(ctx context.Context) { d.product.Trigger(ctx) }

// Wait blocks until the product settles.
func (d *DetailPage) Wait(ctx context.Context) error {
	_, err := d.product.Wait(ctx)
	return err
}

// Gallery returns the carousel of the loaded product, or nil before the
// product has loaded.
func (d *DetailPage) Gallery() *gallery.Controller {
	p, ok := d.product.State().Data()
	if !ok || p == nil {
		return nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.gallery == nil {
		d.gallery = gallery.New(p.Images,
			gallery.WithName("product-"+p.ID),
			gallery.WithRecorder(d.opts.recorder),
			gallery.WithLogger(d.opts.logger),
		)
	}
	return d.gallery
}

// Snapshot renders the current state.
func (d *DetailPage) Snapshot() DetailSnapshot {
	state := d.product.State()
	s := DetailSnapshot{Load: statusOf(state)}

	p, ok := state.Data()
	if !ok || p == nil {
		return s
	}
	view := &ProductView{
		ID:           p.ID,
		Name:         p.Name,
		Description:  p.Description,
		Price:        FormatPrice(p.Price),
		CategoryIcon: domain.IconFor(p.Category),
		CategoryName: strings.ToLower(string(p.Category)),
		CategoryLink: CategoryLink(p.Category),
		Added:        FormatDate(p.CreatedAt),
		Available:    p.IsAvailable,
		Availability: OutOfStockLabel,
		Featured:     p.IsFeatured,
		Features:     append([]Feature(nil), productFeatures[:]...),
		Contact:      ContactLabel,
		Gallery:      d.Gallery().Snapshot(),
	}
	if p.IsAvailable {
		view.Availability = AvailableLabel
	}
	if p.IsFeatured {
		view.Badge = FeaturedBadge
	}
	s.Product = view
	return s
}
