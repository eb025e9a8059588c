package storefront

import (
	"net/url"
	"strings"

	"github.com/TiagoSD22/amigurumi-store/internal/domain"
	"github.com/TiagoSD22/amigurumi-store/internal/gallery"
)

// FeaturedBadge marks featured products.
const FeaturedBadge = "⭐ Featured"

// Card is one product tile in a listing.
type Card struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	Description  string           `json:"description"`
	Price        string           `json:"price"`
	CategoryIcon string           `json:"category_icon"`
	CategoryName string           `json:"category_name"`
	Featured     bool             `json:"featured"`
	Badge        string           `json:"badge,omitempty"`
	DetailLink   string           `json:"detail_link"`
	Gallery      gallery.Snapshot `json:"gallery"`
}

// newCard builds the tile for p. Each card owns its own carousel.
func newCard(p domain.Product, o options) Card {
	g := gallery.New(p.Images,
		gallery.WithName("product-"+p.ID),
		gallery.WithRecorder(o.recorder),
		gallery.WithLogger(o.logger),
	)
	c := Card{
		ID:           p.ID,
		Name:         p.Name,
		Description:  Truncate(p.Description, DescriptionLimit),
		Price:        FormatPrice(p.Price),
		CategoryIcon: domain.IconFor(p.Category),
		CategoryName: strings.ToLower(string(p.Category)),
		Featured:     p.IsFeatured,
		DetailLink:   ProductLink(p.ID),
		Gallery:      g.Snapshot(),
	}
	if p.IsFeatured {
		c.Badge = FeaturedBadge
	}
	return c
}

// ProductLink is the storefront path of a product's detail page.
func ProductLink(id string) string {
	return "/products/" + url.PathEscape(id)
}

// CategoryLink is the storefront path of a category listing.
func CategoryLink(c domain.Category) string {
	return "/category/" + c.Token()
}

func cards(products []domain.Product, o options) []Card {
	out := make([]Card, 0, len(products))
	for _, p := range products {
		out = append(out, newCard(p, o))
	}
	return out
}
