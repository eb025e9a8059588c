package storefront

import (
	"context"
	"fmt"
	"strings"

	"github.com/TiagoSD22/amigurumi-store/internal/catalog"
	"github.com/TiagoSD22/amigurumi-store/internal/domain"
	"github.com/TiagoSD22/amigurumi-store/internal/filter"
	"github.com/TiagoSD22/amigurumi-store/internal/loader"
)

// CategoryButton is one entry of the listing's filter bar.
type CategoryButton struct {
	domain.CategoryInfo
	Active bool `json:"active"`
}

// ProductsSnapshot is the rendered state of the product listing.
type ProductsSnapshot struct {
	Active     domain.CategorySelection `json:"active"`
	Title      string                   `json:"title"`
	Subtitle   string                   `json:"subtitle"`
	Categories []CategoryButton         `json:"categories"`
	Load       LoadStatus               `json:"state"`
	Products   []Card                   `json:"products"`
	CountLabel string                   `json:"count_label,omitempty"`
	Empty      string                   `json:"empty_message,omitempty"`
}

// ProductsPage is the product listing, filterable by category.
type ProductsPage struct {
	filter *filter.Controller
	opts   options
}

// NewProductsPage creates the listing for the category route parameter.
func NewProductsPage(c catalog.Catalog, routeParam string, opts ...Option) *ProductsPage {
	o := buildOptions(opts)
	return &ProductsPage{
		filter: filter.New(c, routeParam, filter.WithLogger(o.logger), filter.WithRecorder(o.recorder)),
		opts:   o,
	}
}

// Filter exposes the page's category controller.
func (p *ProductsPage) Filter() *filter.Controller { return p.filter }

// Start issues the initial fetch.
func (p *ProductsPage) Start(ctx context.Context) { p.filter.Start(ctx) }

// Wait blocks until the current listing settles.
func (p *ProductsPage) Wait(ctx context.Context) error {
	_, err := p.filter.Wait(ctx)
	return err
}

// Snapshot renders the current state.
func (p *ProductsPage) Snapshot() ProductsSnapshot {
	active := p.filter.Active()
	state := p.filter.State()

	s := ProductsSnapshot{
		Active:     active,
		Title:      p.filter.Title(),
		Subtitle:   p.filter.Subtitle(),
		Categories: buttons(active),
		Load:       statusOf(state),
		Products:   []Card{},
	}
	if state.Status() != loader.StatusSuccess {
		return s
	}

	products, _ := state.Data()
	s.Products = cards(products, p.opts)
	s.CountLabel = CountLabel(len(products))
	if len(products) == 0 {
		s.Empty = EmptyListingMessage(active)
	}
	return s
}

func buttons(active domain.CategorySelection) []CategoryButton {
	infos := domain.Selections()
	out := make([]CategoryButton, len(infos))
	for i, info := range infos {
		out[i] = CategoryButton{CategoryInfo: info, Active: info.Selection == active}
	}
	return out
}

// CountLabel reports how many products were found.
func CountLabel(n int) string {
	if n == 1 {
		return "1 product found"
	}
	return fmt.Sprintf("%d products found", n)
}

// EmptyListingMessage is shown when a listing loads with no products.
func EmptyListingMessage(sel domain.CategorySelection) string {
	if sel.IsAll() {
		return "We don't have any products available at the moment."
	}
	return "No products found in the " + strings.ToLower(domain.Lookup(sel).Label) + " category."
}
