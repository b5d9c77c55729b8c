package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"DeviceLineage/internal/config"
	"DeviceLineage/internal/domain"
)

func testApplication(t *testing.T) *Application {
	t.Helper()
	cfg := config.LoadFrom("")
	cfg.Server.Addr = "127.0.0.1:0"
	return New(cfg, slog.New(slog.DiscardHandler))
}

func TestHandlerServesLiveness(t *testing.T) {
	application := testApplication(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/test", nil)
	application.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "hello", w.Body.String())
}

func TestBlankInputIsRejectedBeforeAnyFetch(t *testing.T) {
	application := testApplication(t)

	_, err := application.Tree(context.Background(), " ")
	require.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, err = application.Branch(context.Background(), "")
	require.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestServeStopsWithContext(t *testing.T) {
	application := testApplication(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, application.Serve(ctx))
}
