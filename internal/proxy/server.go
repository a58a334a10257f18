// Package proxy serves the Steam Web API proxy used by the library browser.
package proxy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lepinkainen/steamshelf/internal/steam"
)

const (
	pathOwnedGames  = "/api/steam"
	pathGameDetails = "/api/gameDetails"
	pathHealth      = "/healthz"
	pathMetrics     = "/metrics"

	shutdownTimeout = 10 * time.Second
)

// Upstream is the part of the Steam client the proxy needs.
type Upstream interface {
	OwnedGamesRaw(ctx context.Context, steamID, apiKey string) ([]byte, error)
	OwnedGames(ctx context.Context, steamID, apiKey string) ([]steam.OwnedGame, error)
	AppDetailsRaw(ctx context.Context, appIDs, filters string) ([]byte, error)
	steam.ScoreFetcher
}

// Config holds the server settings.
type Config struct {
	Port              int
	AllowedOrigins    []string
	PageSize          int
	EnrichScores      bool
	EnrichConcurrency int
}

// Server handles proxy HTTP requests.
type Server struct {
	upstream Upstream
	cfg      Config
	allowed  map[string]struct{}
	mux      *http.ServeMux
	handler  http.Handler
}

// NewServer creates a proxy server in front of upstream.
func NewServer(upstream Upstream, cfg Config) *Server {
	if cfg.PageSize <= 0 {
		cfg.PageSize = steam.DefaultPageSize
	}

	s := &Server{
		upstream: upstream,
		cfg:      cfg,
		allowed:  originSet(cfg.AllowedOrigins),
		mux:      http.NewServeMux(),
	}
	s.setupRoutes()
	s.handler = s.logRequests(s.cors(s.mux))
	return s
}

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("GET "+pathOwnedGames, s.handleOwnedGames)
	s.mux.HandleFunc("GET "+pathGameDetails, s.handleGameDetails)
	s.mux.HandleFunc("GET "+pathHealth, s.handleHealth)
	s.mux.Handle("GET "+pathMetrics, promhttp.Handler())
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// ListenAndServe listens on the configured port and serves until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.cfg.Port))
	if err != nil {
		return fmt.Errorf("failed to listen on port %d: %w", s.cfg.Port, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      s,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	slog.Info("Proxy listening", "addr", ln.Addr().String(), "origins", s.cfg.AllowedOrigins)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		slog.Info("Shutting down proxy")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// logRequests logs the path only: the query carries the caller's API key.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		RequestsTotal.WithLabelValues(endpointLabel(r.URL.Path), fmt.Sprint(rec.status)).Inc()
		slog.Info("Request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start).Round(time.Millisecond))
	})
}
