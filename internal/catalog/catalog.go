// Package catalog reads products from the remote catalog service.
package catalog

import (
	"context"

	"github.com/TiagoSD22/amigurumi-store/internal/domain"
)

// Catalog is the read-only view of the catalog service the storefront needs.
type Catalog interface {
	List(ctx context.Context) ([]domain.Product, error)
	ListByCategory(ctx context.Context, category domain.Category) ([]domain.Product, error)
	ListFeatured(ctx context.Context) ([]domain.Product, error)
	Get(ctx context.Context, id string) (*domain.Product, error)
}

// Query identifies one product list derived from a category selection.
type Query struct {
	Selection domain.CategorySelection
}

// QueryFor derives the list query for sel.
func QueryFor(sel domain.CategorySelection) Query {
	if sel.IsAll() {
		return Query{Selection: domain.SelectAll}
	}
	return Query{Selection: sel}
}

// Key is the resource identity of the query.
func (q Query) Key() string {
	if c, ok := q.Selection.Category(); ok {
		return "products:category:" + c.Token()
	}
	return "products:all"
}

// Fetch returns the producer for the query bound to c.
func (q Query) Fetch(c Catalog) func(ctx context.Context) ([]domain.Product, error) {
	category, filtered := q.Selection.Category()
	return func(ctx context.Context) ([]domain.Product, error) {
		if filtered {
			return c.ListByCategory(ctx, category)
		}
		return c.List(ctx)
	}
}
