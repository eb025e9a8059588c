package catalog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/TiagoSD22/amigurumi-store/internal/domain"
	apperrors "github.com/TiagoSD22/amigurumi-store/pkg/errors"
	"github.com/TiagoSD22/amigurumi-store/pkg/httpclient"
	"github.com/TiagoSD22/amigurumi-store/pkg/tracing"
)

const (
	serviceName  = "catalog"
	maxBodyBytes = 8 << 20
)

// HTTPDoer is satisfied by httpclient.Client and httpclient.CircuitBreakerClient.
type HTTPDoer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// HTTPCatalog talks to the catalog service's REST API.
type HTTPCatalog struct {
	client  HTTPDoer
	baseURL string
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewHTTPCatalog creates a client for the API rooted at baseURL, for example
// http://localhost:8000/api.
func NewHTTPCatalog(client HTTPDoer, baseURL string, logger *slog.Logger) *HTTPCatalog {
	return &HTTPCatalog{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
		tracer:  tracing.Tracer("github.com/TiagoSD22/amigurumi-store/internal/catalog"),
	}
}

// List fetches every available product, newest first.
func (c *HTTPCatalog) List(ctx context.Context) ([]domain.Product, error) {
	return c.list(ctx, "list", "/products/")
}

// ListByCategory fetches the available products of one category.
func (c *HTTPCatalog) ListByCategory(ctx context.Context, category domain.Category) ([]domain.Product, error) {
	return c.list(ctx, "list_by_category", "/products/category/"+url.PathEscape(category.Token())+"/")
}

// ListFeatured fetches the featured products shown on the home page.
func (c *HTTPCatalog) ListFeatured(ctx context.Context) ([]domain.Product, error) {
	return c.list(ctx, "list_featured", "/products/featured/")
}

// Get fetches one product. An empty id is reported as not found without a
// request.
func (c *HTTPCatalog) Get(ctx context.Context, id string) (*domain.Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperrors.NotFound("product", "(empty)")
	}

	body, err := c.get(ctx, "get", "/products/"+url.PathEscape(id)+"/")
	if err != nil {
		if apperrors.KindOf(err) == apperrors.KindNotFound {
			return nil, apperrors.NotFound("product", id)
		}
		return nil, fmt.Errorf("get product %s: %w", id, err)
	}

	p, err := domain.DecodeProduct(body)
	if err != nil {
		c.logger.ErrorContext(ctx, "decode product", slog.String("id", id), slog.String("error", err.Error()))
		return nil, fmt.Errorf("decode product %s: %w", id, err)
	}
	return p, nil
}

// Ping checks that the catalog answers at all. Any HTTP response counts.
func (c *HTTPCatalog) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.baseURL+"/products/", http.NoBody)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(ctx, req)
	if err != nil {
		return err
	}
	_ = resp.Body.Close()
	return nil
}

func (c *HTTPCatalog) list(ctx context.Context, op, path string) ([]domain.Product, error) {
	body, err := c.get(ctx, op, path)
	if err != nil {
		return nil, fmt.Errorf("%s products: %w", strings.ReplaceAll(op, "_", " "), err)
	}
	products, err := domain.DecodeProducts(body)
	if err != nil {
		c.logger.ErrorContext(ctx, "decode products", slog.String("path", path), slog.String("error", err.Error()))
		return nil, fmt.Errorf("decode products: %w", err)
	}
	return products, nil
}

func (c *HTTPCatalog) get(ctx context.Context, op, path string) ([]byte, error) {
	ctx, span := c.tracer.Start(ctx, "catalog."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("catalog.path", path)),
	)
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	tracing.InjectHeaders(ctx, req.Header)

	resp, err := c.client.Do(ctx, req)
	if err != nil {
		err = classifyTransport(err)
		tracing.Fail(span, err)
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if !httpclient.IsSuccess(resp.StatusCode) {
		err := httpclient.ParseResponseError(resp, serviceName)
		if apperrors.KindOf(err) != apperrors.KindNotFound {
			tracing.Fail(span, err)
		}
		return nil, err
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		err = apperrors.NetworkFailure(serviceName, err)
		tracing.Fail(span, err)
		return nil, err
	}
	return body, nil
}

// classifyTransport maps an error from the HTTP doer to the taxonomy. Errors
// the breaker already translated from a 5xx response pass through.
func classifyTransport(err error) error {
	switch apperrors.KindOf(err) {
	case apperrors.KindServerFailure, apperrors.KindNotFound:
		return err
	}
	return apperrors.NetworkFailure(serviceName, err)
}
