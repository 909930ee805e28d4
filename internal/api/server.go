// internal/api/server.go
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/marketpulse/pulse/internal/api/middleware"
	"github.com/marketpulse/pulse/internal/api/response"
	"github.com/marketpulse/pulse/internal/core"
	"github.com/marketpulse/pulse/internal/feed"
	"github.com/marketpulse/pulse/internal/metrics"
)

// Server is the HTTP surface over the feed service: REST reads, the
// Prometheus endpoint and the WebSocket stream.
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
	metrics    *metrics.Registry
	service    *feed.Service
	mux        *http.ServeMux
}

// Config holds server configuration.
type Config struct {
	Host           string
	Port           int
	MetricsEnabled bool
	MetricsPath    string
}

// Dependencies carries the layers the server exposes.
type Dependencies struct {
	Service *feed.Service
	Metrics *metrics.Registry
}

// NewServer creates the HTTP server and wires all routes.
func NewServer(cfg Config, deps Dependencies, logger *zap.Logger) (*Server, error) {
	if deps.Service == nil {
		return nil, fmt.Errorf("feed service is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	mux := http.NewServeMux()
	s := &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Handler:      mux,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger:  logger,
		metrics: deps.Metrics,
		service: deps.Service,
		mux:     mux,
	}

	s.setupRoutes(cfg)
	return s, nil
}

func (s *Server) setupRoutes(cfg Config) {
	instrument := middleware.Metrics(s.metrics)
	logged := middleware.RequestLogger(s.logger)
	wrap := func(h http.HandlerFunc) http.Handler {
		return instrument(logged(h))
	}

	s.mux.Handle("GET /api/stocks", wrap(s.handleStocks))
	s.mux.Handle("GET /api/stocks/{symbol}", wrap(s.handleStock))
	s.mux.Handle("GET /api/predictions/{symbol}", wrap(s.handlePrediction))
	s.mux.Handle("GET /api/market-overview", wrap(s.handleMarketOverview))
	s.mux.Handle("GET /api/health", wrap(s.handleHealth))
	s.mux.Handle("GET /ws/stream", wrap(s.handleStream))

	if cfg.MetricsEnabled && s.metrics != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		s.mux.Handle("GET "+path, promhttp.HandlerFor(s.metrics, promhttp.HandlerOpts{}))
	}
}

// Start starts the HTTP server and blocks until shutdown.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleStocks(w http.ResponseWriter, r *http.Request) {
	quotes := s.service.GetAllInstrumentData(r.Context())
	response.JSON(w, http.StatusOK, map[string]any{
		"stocks": quotes,
		"count":  len(quotes),
	})
}

func (s *Server) handleStock(w http.ResponseWriter, r *http.Request) {
	symbol := r.PathValue("symbol")

	q, err := s.service.GetQuote(r.Context(), symbol)
	if err != nil {
		response.Error(w, response.StatusFor(err), err)
		return
	}
	response.JSON(w, http.StatusOK, q)
}

func (s *Server) handlePrediction(w http.ResponseWriter, r *http.Request) {
	symbol := r.PathValue("symbol")

	p := s.service.GetPrediction(r.Context(), symbol)
	if p == nil {
		err := core.WrapError(core.ErrSymbolNotFound, fmt.Errorf("no prediction for %q", symbol))
		response.Error(w, response.StatusFor(err), err)
		return
	}
	response.JSON(w, http.StatusOK, p)
}

func (s *Server) handleMarketOverview(w http.ResponseWriter, r *http.Request) {
	overview := s.service.GetMarketSnapshot(r.Context())
	if overview == nil {
		err := core.WrapError(core.ErrNoData, fmt.Errorf("market overview unavailable"))
		response.Error(w, response.StatusFor(err), err)
		return
	}
	response.JSON(w, http.StatusOK, overview)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
