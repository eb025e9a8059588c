package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/TiagoSD22/amigurumi-store/internal/catalog"
	"github.com/TiagoSD22/amigurumi-store/internal/events"
	"github.com/TiagoSD22/amigurumi-store/internal/storefront"
	apperrors "github.com/TiagoSD22/amigurumi-store/pkg/errors"
	"github.com/TiagoSD22/amigurumi-store/pkg/httputil"
	"github.com/TiagoSD22/amigurumi-store/pkg/logger"
)

// DefaultWaitTimeout bounds how long a request waits for its page to settle.
const DefaultWaitTimeout = 15 * time.Second

// StorefrontHandler serves the page view models.
type StorefrontHandler struct {
	catalog     catalog.Catalog
	recorder    events.Recorder
	waitTimeout time.Duration
	logger      *slog.Logger
}

// NewStorefrontHandler creates the page handlers. A non-positive waitTimeout
// falls back to DefaultWaitTimeout.
func NewStorefrontHandler(c catalog.Catalog, recorder events.Recorder, waitTimeout time.Duration, logger *slog.Logger) *StorefrontHandler {
	if recorder == nil {
		recorder = events.Nop{}
	}
	if waitTimeout <= 0 {
		waitTimeout = DefaultWaitTimeout
	}
	return &StorefrontHandler{
		catalog:     c,
		recorder:    recorder,
		waitTimeout: waitTimeout,
		logger:      logger,
	}
}

func (h *StorefrontHandler) pageOptions(r *http.Request) []storefront.Option {
	return []storefront.Option{
		storefront.WithLogger(logger.WithContext(r.Context(), h.logger)),
		storefront.WithRecorder(h.recorder),
	}
}

// settle waits for a started page. The error, if any, is already written.
// Pages fetch under a context that ends with the request.
func (h *StorefrontHandler) settle(w http.ResponseWriter, r *http.Request, wait func(context.Context) error) bool {
	ctx, cancel := context.WithTimeout(r.Context(), h.waitTimeout)
	defer cancel()

	if err := wait(ctx); err != nil {
		httputil.WriteError(w, r, &apperrors.AppError{
			Code:    "TIMEOUT",
			Message: "the store took too long to respond",
			Status:  http.StatusGatewayTimeout,
			Err:     err,
		}, h.logger)
		return false
	}
	return true
}

// Home handles GET /api/v1/storefront/home
func (h *StorefrontHandler) Home(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	page := storefront.NewHomePage(h.catalog, h.pageOptions(r)...)
	page.Start(ctx)
	if !h.settle(w, r, page.Wait) {
		return
	}
	httputil.WriteData(w, http.StatusOK, page.Snapshot())
}

// Products handles GET /api/v1/storefront/products. The optional category
// query parameter is applied as an explicit selection.
func (h *StorefrontHandler) Products(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	page := storefront.NewProductsPage(h.catalog, "", h.pageOptions(r)...)
	if category := r.URL.Query().Get("category"); category != "" {
		page.Filter().Select(ctx, category)
	}
	page.Start(ctx)
	if !h.settle(w, r, page.Wait) {
		return
	}
	httputil.WriteData(w, http.StatusOK, page.Snapshot())
}

// Category handles GET /api/v1/storefront/category/{category}
func (h *StorefrontHandler) Category(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	page := storefront.NewProductsPage(h.catalog, chi.URLParam(r, "category"), h.pageOptions(r)...)
	page.Start(ctx)
	if !h.settle(w, r, page.Wait) {
		return
	}
	httputil.WriteData(w, http.StatusOK, page.Snapshot())
}

// Product handles GET /api/v1/storefront/products/{id}. The optional image
// query parameter moves the carousel; out-of-range values are ignored.
func (h *StorefrontHandler) Product(w http.ResponseWriter, r *http.Request) {
	image, hasImage, err := httputil.QueryInt(r, "image")
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	page := storefront.NewDetailPage(h.catalog, chi.URLParam(r, "id"), h.pageOptions(r)...)
	page.Start(ctx)
	if !h.settle(w, r, page.Wait) {
		return
	}
	if g := page.Gallery(); g != nil && hasImage {
		g.Goto(image)
	}
	httputil.WriteData(w, http.StatusOK, page.Snapshot())
}
