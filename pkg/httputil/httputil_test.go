package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/TiagoSD22/amigurumi-store/pkg/errors"
	"github.com/TiagoSD22/amigurumi-store/pkg/logger"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestWriteJSON_SetsContentType(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, http.StatusOK, Response{Data: "hello"})

	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestWriteData_WrapsEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteData(rec, http.StatusOK, map[string]string{"title": "Animals"})

	resp := decode(t, rec)
	assert.Nil(t, resp.Error)
	assert.Equal(t, map[string]any{"title": "Animals"}, resp.Data)
}

func TestWriteError_AppError(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/storefront/products/9", nil)

	WriteError(rec, req, apperrors.NotFound("product", "9"), testLogger())

	assert.Equal(t, http.StatusNotFound, rec.Code)
	resp := decode(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)
	assert.Equal(t, "not_found", resp.Error.Kind)
}

func TestWriteError_WrappedNetworkFailure(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	err := fmt.Errorf("list products: %w", apperrors.NetworkFailure("catalog", errors.New("refused")))
	WriteError(rec, req, err, testLogger())

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	resp := decode(t, rec)
	assert.Equal(t, "NETWORK_FAILURE", resp.Error.Code)
	assert.Equal(t, "network_failure", resp.Error.Kind)
	assert.NotContains(t, resp.Error.Message, "refused")
}

func TestWriteError_DeadlineExceeded(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	WriteError(rec, req, context.DeadlineExceeded, testLogger())

	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
	assert.Equal(t, "TIMEOUT", decode(t, rec).Error.Code)
}

func TestWriteError_UnknownError_Returns500(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	WriteError(rec, req, errors.New("secret detail"), testLogger())

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decode(t, rec)
	assert.Equal(t, "an internal error occurred", resp.Error.Message)
	assert.Empty(t, resp.Error.Kind)
}

func TestWriteError_IncludesRequestID(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(logger.WithCorrelationID(req.Context(), "corr-1"))

	WriteError(rec, req, apperrors.InvalidInput("bad"), testLogger())

	assert.Equal(t, "corr-1", decode(t, rec).Error.RequestID)
}

func TestQueryInt(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?image=2", nil)
	v, ok, err := QueryInt(req, "image")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2, v)

	_, ok, err = QueryInt(httptest.NewRequest(http.MethodGet, "/", nil), "image")
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = QueryInt(httptest.NewRequest(http.MethodGet, "/?image=x", nil), "image")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}
