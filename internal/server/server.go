// Package server wires the HTTP router and runs it with graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"foodstall/internal/config"
	"foodstall/internal/logger"
	"foodstall/internal/metrics"
	"foodstall/internal/services/dashboard"
	"foodstall/internal/services/storefront"
	"foodstall/internal/web"
)

// Pinger reports whether a dependency is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// Routes holds the handlers mounted on the router
type Routes struct {
	Storefront *storefront.Handler
	Dashboard  *dashboard.Handler
	Health     Pinger
}

// NewRouter builds the full HTTP surface
func NewRouter(routes Routes, log *logger.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(web.Recover(log))
	r.Use(web.Logging(log))
	r.Use(metrics.Middleware)

	r.Get("/health", healthCheck(routes.Health))
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	routes.Storefront.Routes(r)
	routes.Dashboard.Routes(r)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		web.WriteErrorResponse(w, http.StatusNotFound, "Not found", web.RequestID(r.Context()))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		web.WriteErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed", web.RequestID(r.Context()))
	})
	return r
}

// healthCheck handles GET /health
func healthCheck(p Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		healthy := p == nil || p.Ping(ctx) == nil
		response := map[string]interface{}{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"service":   "foodstall",
			"healthy":   healthy,
		}

		status := http.StatusOK
		if !healthy {
			status = http.StatusServiceUnavailable
			response["status"] = "unhealthy"
		}
		web.WriteJSON(w, status, response)
	}
}

// Server is the HTTP listener
type Server struct {
	http            *http.Server
	logger          *logger.Logger
	shutdownTimeout time.Duration
}

// New creates a server for handler on cfg.Port.
func New(cfg config.ServerConfig, handler http.Handler, log *logger.Logger) *Server {
	return &Server{
		http: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger:          log,
		shutdownTimeout: cfg.ShutdownTimeout,
	}
}

// Run serves until ctx is cancelled, then drains in-flight requests. Open
// streams that outlive the shutdown timeout are cut off.
func (s *Server) Run(ctx context.Context) error {
	requestID := logger.GenerateRequestID()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("service_started", fmt.Sprintf("HTTP server listening on %s", s.http.Addr), requestID, map[string]interface{}{
			"addr": s.http.Addr,
		})
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("graceful_shutdown", "Shutting down HTTP server", requestID, map[string]interface{}{
		"timeout": s.shutdownTimeout.String(),
	})
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.shutdownTimeout)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("graceful_shutdown", "Drain timed out, closing open connections", requestID, nil)
		if closeErr := s.http.Close(); closeErr != nil {
			return fmt.Errorf("failed to close http server: %w", closeErr)
		}
	}
	return nil
}
