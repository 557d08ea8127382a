package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	appguesses "github.com/preston-bernstein/twin-reveal-service/internal/app/guesses"
	"github.com/preston-bernstein/twin-reveal-service/internal/config"
	httpserver "github.com/preston-bernstein/twin-reveal-service/internal/http"
	"github.com/preston-bernstein/twin-reveal-service/internal/http/handlers"
	"github.com/preston-bernstein/twin-reveal-service/internal/hub"
	"github.com/preston-bernstein/twin-reveal-service/internal/logging"
	"github.com/preston-bernstein/twin-reveal-service/internal/metrics"
	"github.com/preston-bernstein/twin-reveal-service/internal/store"
)

var metricsSetup = metrics.Setup

type Server struct {
	cfg           config.Config
	logger        *slog.Logger
	metrics       *metrics.Recorder
	gateway       store.Gateway
	service       *appguesses.Service
	hub           *hub.Hub
	httpServer    httpServer
	metricsServer httpServer
	metricsStop   func(context.Context) error
	feedDone      chan struct{}
}

// New opens storage and wires the HTTP stack. It fails when the storage backend is
// unknown or unreachable.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Server, error) {
	return newServerWithMetrics(ctx, cfg, logger, nil)
}

func newServerWithMetrics(ctx context.Context, cfg config.Config, logger *slog.Logger, recorder *metrics.Recorder) (*Server, error) {
	if logger == nil {
		logger = logging.NewLogger(logging.Config{})
	}
	recorder, metricsSrv, metricsShutdown := buildMetrics(cfg, logger, recorder)

	gw, err := newStorageFactory(logger, recorder).build(ctx, cfg.Storage)
	if err != nil {
		if metricsShutdown != nil {
			_ = metricsShutdown(context.Background())
		}
		return nil, err
	}

	s := newServerWithDeps(cfg, logger, gw, nil)
	s.metrics = recorder
	s.service = appguesses.NewService(gw, cfg.Target, recorder)
	s.metricsServer = metricsSrv
	s.metricsStop = metricsShutdown
	s.hub = hub.New(logger, recorder)
	s.httpServer = s.buildHTTPServer()
	return s, nil
}

// newServerWithDeps is used for testing to inject custom components.
func newServerWithDeps(cfg config.Config, logger *slog.Logger, gw store.Gateway, httpSrv httpServer) *Server {
	return &Server{
		cfg:        cfg,
		logger:     logger,
		gateway:    gw,
		service:    appguesses.NewService(gw, cfg.Target, nil),
		hub:        hub.New(logger, nil),
		httpServer: httpSrv,
	}
}

func (s *Server) buildHTTPServer() httpServer {
	handler := handlers.NewHandler(s.service, s.logger, s.ready, s.hub)
	router := httpserver.NewRouter(handler, handlers.NewSPA(s.cfg.DistDir, s.logger))
	wrapped := httpserver.Chain(router, s.logger, s.metrics, s.cfg.CORSOrigins)

	srv := &http.Server{
		Addr:              ":" + s.cfg.Port,
		Handler:           wrapped,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		IdleTimeout:       idleTimeout,
	}
	return netHTTPServer{srv: srv}
}

// Run starts the leaderboard feed and HTTP server, then waits for context cancellation to shut down gracefully.
func (s *Server) Run(ctx context.Context, stop context.CancelFunc) {
	s.startMetrics()
	s.startServer(stop)
	s.startFeed(ctx)

	<-ctx.Done()
	logging.Info(s.logger, "shutdown signal received")

	s.gracefulShutdown()
}

func (s *Server) startServer(stop context.CancelFunc) {
	logging.Info(s.logger, "http server starting",
		slog.String("addr", s.httpServer.Addr()),
		slog.String(logging.FieldBackend, s.cfg.Storage.Backend),
	)
	launchServer("http", s.httpServer, s.logger, func(err error) {
		if stop != nil {
			stop()
		}
	})
}

func (s *Server) startMetrics() {
	if s.metricsServer == nil {
		return
	}
	launchServer("metrics", s.metricsServer, s.logger, nil)
}

func (s *Server) gracefulShutdown() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if s.metricsStop != nil {
		if err := s.metricsStop(shutdownCtx); err != nil {
			logging.Warn(s.logger, "metrics shutdown failed", "error", err)
		}
	}

	if s.metricsServer != nil {
		if err := s.metricsServer.Shutdown(shutdownCtx); err != nil {
			logging.Warn(s.logger, "metrics server shutdown failed", "error", err)
		}
	}

	// Hijacked feed connections are not tracked by http.Server.Shutdown.
	s.hub.Close()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			logging.Error(s.logger, "graceful shutdown failed", err)
		}
	}

	if err := s.waitFeed(shutdownCtx); err != nil {
		logging.Error(s.logger, "leaderboard feed did not stop", err)
	}

	if err := store.Close(s.gateway); err != nil {
		logging.Error(s.logger, "storage close failed", err)
	}

	logging.Info(s.logger, "shutdown complete")
}

func buildMetrics(cfg config.Config, logger *slog.Logger, recorder *metrics.Recorder) (*metrics.Recorder, httpServer, func(context.Context) error) {
	if recorder != nil {
		return recorder, nil, nil
	}

	recCfg := metrics.TelemetryConfig{
		Enabled:      cfg.Metrics.Enabled,
		Port:         cfg.Metrics.Port,
		ServiceName:  cfg.Metrics.ServiceName,
		OtlpEndpoint: cfg.Metrics.OtlpEndpoint,
		OtlpInsecure: cfg.Metrics.OtlpInsecure,
	}

	rec, handler, shutdown, err := metricsSetup(context.Background(), recCfg)
	if err != nil {
		logging.Warn(logger, "metrics setup failed, continuing without telemetry", "err", err)
		return metrics.NewRecorder(), nil, nil
	}

	var metricsSrv httpServer
	if handler != nil && recCfg.Enabled {
		metricsSrv = netHTTPServer{
			srv: &http.Server{
				Addr:              ":" + recCfg.Port,
				Handler:           handler,
				ReadHeaderTimeout: readHeaderTimeout,
			},
		}
	}

	return rec, metricsSrv, shutdown
}

func launchServer(name string, srv httpServer, logger *slog.Logger, onError func(error)) {
	go func() {
		logging.Info(logger, "starting "+name+" server", slog.String("addr", srv.Addr()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Warn(logger, name+" server failed", "error", err)
			if onError != nil {
				onError(err)
			}
		}
	}()
}

// Handler exposes the HTTP handler (useful for tests).
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler()
}
