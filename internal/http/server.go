package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"tunelink/internal/core"
)

type Server struct {
	config  *core.ServerConfig
	logger  *zap.Logger
	server  *http.Server
	metrics *Metrics
}

type Metrics struct {
	ResolvesTotal   *prometheus.CounterVec
	DuplicatesTotal prometheus.Counter
	ErrorsTotal     *prometheus.CounterVec
	ResolveTime     *prometheus.HistogramVec
	DedupSize       prometheus.Gauge
}

func newMetrics() *Metrics {
	return &Metrics{
		ResolvesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tunelink_resolves_total",
				Help: "Total number of link resolutions attempted",
			},
			[]string{"platform", "status"},
		),
		DuplicatesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "tunelink_duplicates_total",
				Help: "Total number of already delivered songs skipped",
			},
		),
		ErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tunelink_errors_total",
				Help: "Total number of errors",
			},
			[]string{"component", "type"},
		),
		ResolveTime: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tunelink_resolve_duration_seconds",
				Help:    "Time spent resolving music links",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"platform"},
		),
		DedupSize: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "tunelink_dedup_size",
				Help: "Current number of keys in the dedup store",
			},
		),
	}
}

func setupRoutes(logger *zap.Logger) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(`{"status":"ok","service":"tunelink"}`)); err != nil {
			logger.Debug("failed to write health response", zap.Error(err))
		}
	})

	mux.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(`{"status":"ready","service":"tunelink"}`)); err != nil {
			logger.Debug("failed to write ready response", zap.Error(err))
		}
	})

	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(`<!DOCTYPE html>
<html>
<head>
    <title>tunelink</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 40px; }
        .header { color: #333; }
        .endpoint { margin: 10px 0; }
        .endpoint a { text-decoration: none; color: #0066cc; }
        .endpoint a:hover { text-decoration: underline; }
    </style>
</head>
<body>
    <h1 class="header">🎵 tunelink</h1>
    <p>Music link resolver service</p>

    <h2>Endpoints</h2>
    <div class="endpoint">📊 <a href="/metrics">Metrics</a> - Prometheus metrics</div>
    <div class="endpoint">💚 <a href="/healthz">Health</a> - Health check</div>
    <div class="endpoint">✅ <a href="/readyz">Ready</a> - Readiness check</div>

    <h2>Status</h2>
    <p>Service is running and ready to resolve music links.</p>
</body>
</html>`)); err != nil {
			logger.Debug("failed to write index response", zap.Error(err))
		}
	})

	return mux
}

func createHTTPServer(config *core.ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler:      handler,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	}
}

func NewServer(config *core.ServerConfig, logger *zap.Logger) *Server {
	metrics := newMetrics()

	prometheus.MustRegister(
		metrics.ResolvesTotal,
		metrics.DuplicatesTotal,
		metrics.ErrorsTotal,
		metrics.ResolveTime,
		metrics.DedupSize,
	)

	return &Server{
		config:  config,
		logger:  logger,
		server:  createHTTPServer(config, setupRoutes(logger)),
		metrics: metrics,
	}
}

func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("Starting HTTP server",
		zap.String("addr", s.server.Addr))

	go func() {
		<-ctx.Done()
		s.logger.Info("Shutting down HTTP server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.server.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("Failed to shutdown HTTP server gracefully", zap.Error(err))
		}
	}()

	if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("HTTP server failed: %w", err)
	}

	return nil
}

func (s *Server) RecordResolve(platform, status string) {
	s.metrics.ResolvesTotal.WithLabelValues(platform, status).Inc()
}

func (s *Server) RecordResolveDuration(platform string, duration time.Duration) {
	s.metrics.ResolveTime.WithLabelValues(platform).Observe(duration.Seconds())
}

func (s *Server) RecordDuplicate() {
	s.metrics.DuplicatesTotal.Inc()
}

func (s *Server) RecordError(component, errType string) {
	s.metrics.ErrorsTotal.WithLabelValues(component, errType).Inc()
}

func (s *Server) SetDedupSize(size int) {
	s.metrics.DedupSize.Set(float64(size))
}
