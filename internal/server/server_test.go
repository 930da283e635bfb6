package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"foodstall/internal/auth"
	"foodstall/internal/cart"
	"foodstall/internal/catalog"
	"foodstall/internal/config"
	"foodstall/internal/livequery"
	"foodstall/internal/logger"
	"foodstall/internal/orders"
	"foodstall/internal/services/dashboard"
	"foodstall/internal/services/storefront"
	"foodstall/internal/store"
)

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func newRouter(t *testing.T, health Pinger) http.Handler {
	t.Helper()
	log := logger.Discard()
	mem := store.NewMemory()
	broker := livequery.NewBroker()

	hash, err := bcrypt.GenerateFromPassword([]byte("tandoor"), bcrypt.MinCost)
	require.NoError(t, err)
	authService, err := auth.NewService(config.AuthConfig{
		JWTSecret:  "test-secret",
		SessionTTL: time.Hour,
		Admins:     []config.AdminAccount{{Username: "chef", Email: "chef@foodstall.local", PasswordHash: string(hash)}},
	}, auth.NewMemoryRevocations(), log)
	require.NoError(t, err)

	cat := catalog.New(mem, broker, broker, log)
	orderStore := orders.NewStore(mem, broker, broker, log)
	return NewRouter(Routes{
		Storefront: storefront.NewHandler(cat, cart.NewRegistry(orderStore, time.Hour), orderStore, time.Hour, log),
		Dashboard:  dashboard.NewHandler(authService, orderStore, orders.NewLifecycle(orderStore, log), cat, log),
		Health:     health,
	}, log)
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name    string
		pinger  Pinger
		status  int
		healthy bool
	}{
		{"reachable", stubPinger{}, http.StatusOK, true},
		{"unreachable", stubPinger{err: errors.New("refused")}, http.StatusServiceUnavailable, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			newRouter(t, tt.pinger).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

			require.Equal(t, tt.status, rec.Code)
			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.healthy, body["healthy"])
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	router := newRouter(t, stubPinger{})
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/menu", nil))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "foodstall_http_request_duration_seconds")
	assert.Contains(t, rec.Body.String(), `route="/api/menu"`)
}

func TestUnknownRoute(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter(t, stubPinger{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestRun_StopsOnCancel(t *testing.T) {
	srv := New(config.ServerConfig{Port: 0, ShutdownTimeout: time.Second}, http.NotFoundHandler(), logger.Discard())
	srv.http.Addr = "127.0.0.1:0"

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop")
	}
}
