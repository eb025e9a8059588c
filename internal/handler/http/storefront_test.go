package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/TiagoSD22/amigurumi-store/internal/domain"
	apperrors "github.com/TiagoSD22/amigurumi-store/pkg/errors"
	"github.com/TiagoSD22/amigurumi-store/pkg/health"
	"github.com/TiagoSD22/amigurumi-store/pkg/logger"
	"github.com/TiagoSD22/amigurumi-store/pkg/middleware"
)

type mockCatalog struct {
	mock.Mock
}

func (m *mockCatalog) List(ctx context.Context) ([]domain.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *mockCatalog) ListByCategory(ctx context.Context, category domain.Category) ([]domain.Product, error) {
	args := m.Called(ctx, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *mockCatalog) ListFeatured(ctx context.Context) ([]domain.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *mockCatalog) Get(ctx context.Context, id string) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

// blockingCatalog never answers until its context ends.
type blockingCatalog struct {
	mockCatalog
}

func (b *blockingCatalog) List(ctx context.Context) ([]domain.Product, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Kind    string `json:"kind"`
	} `json:"error"`
}

type pageBody struct {
	Active     string `json:"active"`
	Title      string `json:"title"`
	CountLabel string `json:"count_label"`
	Empty      string `json:"empty_message"`
	State      struct {
		Status  string `json:"status"`
		Message string `json:"message"`
		Kind    string `json:"kind"`
	} `json:"state"`
	Products []struct {
		ID    string `json:"id"`
		Price string `json:"price"`
	} `json:"products"`
	Featured   []json.RawMessage `json:"featured"`
	Categories []json.RawMessage `json:"categories"`
	Product    *struct {
		Name    string `json:"name"`
		Gallery struct {
			Index   int `json:"index"`
			Current struct {
				Filename string `json:"filename"`
			} `json:"current"`
		} `json:"gallery"`
	} `json:"product"`
}

func newTestRouter(t *testing.T, c *mockCatalog, wait time.Duration) http.Handler {
	t.Helper()
	l := logger.Discard()
	h := NewStorefrontHandler(c, nil, wait, l)
	return NewRouter(context.Background(), h, health.NewHandler(), RouterConfig{CORS: middleware.DefaultCORSConfig()}, l)
}

func doGet(t *testing.T, router http.Handler, target string) (*httptest.ResponseRecorder, envelope, pageBody) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	var body pageBody
	if len(env.Data) > 0 {
		require.NoError(t, json.Unmarshal(env.Data, &body))
	}
	return w, env, body
}

func sampleProducts() []domain.Product {
	return []domain.Product{
		{
			ID:          "1",
			Name:        "Bunny",
			Price:       decimal.RequireFromString("25"),
			Category:    domain.CategoryAnimal,
			Images:      []domain.ProductImage{{URL: "/media/a.jpg", Filename: "a.jpg"}, {URL: "/media/b.jpg", Filename: "b.jpg"}},
			IsAvailable: true,
		},
	}
}

func TestHome(t *testing.T) {
	m := new(mockCatalog)
	m.On("ListFeatured", mock.Anything).Return(sampleProducts(), nil).Once()

	w, _, body := doGet(t, newTestRouter(t, m, time.Second), "/api/v1/storefront/home")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "success", body.State.Status)
	assert.Len(t, body.Featured, 1)
	assert.Len(t, body.Categories, 5)
	m.AssertExpectations(t)
}

func TestProducts_All(t *testing.T) {
	m := new(mockCatalog)
	m.On("List", mock.Anything).Return(sampleProducts(), nil).Once()

	w, _, body := doGet(t, newTestRouter(t, m, time.Second), "/api/v1/storefront/products")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "all", body.Active)
	assert.Equal(t, "All Products", body.Title)
	assert.Equal(t, "1 product found", body.CountLabel)
	require.Len(t, body.Products, 1)
	assert.Equal(t, "$25.00", body.Products[0].Price)
	assert.NotEmpty(t, w.Header().Get(middleware.CorrelationHeader))
	m.AssertExpectations(t)
}

func TestProducts_CategoryQuery(t *testing.T) {
	m := new(mockCatalog)
	m.On("ListByCategory", mock.Anything, domain.CategoryDoll).Return([]domain.Product{}, nil).Once()

	w, _, body := doGet(t, newTestRouter(t, m, time.Second), "/api/v1/storefront/products?category=doll")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "doll", body.Active)
	assert.Equal(t, "No products found in the dolls category.", body.Empty)
	m.AssertExpectations(t)
}

func TestCategoryRoute(t *testing.T) {
	m := new(mockCatalog)
	m.On("ListByCategory", mock.Anything, domain.CategoryAnimal).Return(sampleProducts(), nil).Once()

	w, _, body := doGet(t, newTestRouter(t, m, time.Second), "/api/v1/storefront/category/ANIMAL")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "animal", body.Active)
	assert.Equal(t, "Animals", body.Title)
	m.AssertExpectations(t)
}

func TestCategoryRoute_UnknownFallsBackToAll(t *testing.T) {
	m := new(mockCatalog)
	m.On("List", mock.Anything).Return([]domain.Product{}, nil).Once()

	w, _, body := doGet(t, newTestRouter(t, m, time.Second), "/api/v1/storefront/category/robots")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "all", body.Active)
	assert.Equal(t, "We don't have any products available at the moment.", body.Empty)
}

func TestProducts_ErrorIsViewState(t *testing.T) {
	m := new(mockCatalog)
	m.On("List", mock.Anything).Return(nil, apperrors.ServerFailure("catalog", 500, "")).Once()

	w, env, body := doGet(t, newTestRouter(t, m, time.Second), "/api/v1/storefront/products")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, env.Error)
	assert.Equal(t, "error", body.State.Status)
	assert.Equal(t, "Failed to load products", body.State.Message)
	assert.Equal(t, "server_failure", body.State.Kind)
	assert.Empty(t, body.Products)
}

func TestProduct_Detail(t *testing.T) {
	m := new(mockCatalog)
	p := sampleProducts()[0]
	m.On("Get", mock.Anything, "1").Return(&p, nil).Once()

	w, _, body := doGet(t, newTestRouter(t, m, time.Second), "/api/v1/storefront/products/1?image=1")
	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, body.Product)
	assert.Equal(t, "Bunny", body.Product.Name)
	assert.Equal(t, 1, body.Product.Gallery.Index)
	assert.Equal(t, "b.jpg", body.Product.Gallery.Current.Filename)
}

func TestProduct_ImageOutOfRangeIgnored(t *testing.T) {
	m := new(mockCatalog)
	p := sampleProducts()[0]
	m.On("Get", mock.Anything, "1").Return(&p, nil).Once()

	_, _, body := doGet(t, newTestRouter(t, m, time.Second), "/api/v1/storefront/products/1?image=9")
	require.NotNil(t, body.Product)
	assert.Equal(t, 0, body.Product.Gallery.Index)
}

func TestProduct_InvalidImageParam(t *testing.T) {
	m := new(mockCatalog)

	w, env, _ := doGet(t, newTestRouter(t, m, time.Second), "/api/v1/storefront/products/1?image=abc")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "INVALID_INPUT", env.Error.Code)
	m.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestProduct_NotFound(t *testing.T) {
	m := new(mockCatalog)
	m.On("Get", mock.Anything, "42").Return(nil, apperrors.NotFound("product", "42")).Once()

	w, _, body := doGet(t, newTestRouter(t, m, time.Second), "/api/v1/storefront/products/42")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "error", body.State.Status)
	assert.Equal(t, "Product not found", body.State.Message)
	assert.Equal(t, "not_found", body.State.Kind)
	assert.Nil(t, body.Product)
}

func TestProducts_WaitTimeout(t *testing.T) {
	b := &blockingCatalog{}
	l := logger.Discard()
	h := NewStorefrontHandler(b, nil, 50*time.Millisecond, l)
	router := NewRouter(context.Background(), h, health.NewHandler(), RouterConfig{}, l)

	w, env, _ := doGet(t, router, "/api/v1/storefront/products")
	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "TIMEOUT", env.Error.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	router := newTestRouter(t, new(mockCatalog), time.Second)

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "storefront_http_requests_total")
}
