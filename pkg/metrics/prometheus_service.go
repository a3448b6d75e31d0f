// Package metrics contains the prometheus infrastructure.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mr-shifu/pedersen-commit/pkg/log"
)

const (
	moduleName = "metrics"

	shutdownTimeout = 5 * time.Second
)

// PullService exposes metrics for Prometheus to scrape.
type PullService struct {
	server *http.Server
	logger *log.Logger
}

// NewPullService creates a pull service listening on pullEndpoint.
func NewPullService(pullEndpoint string, logger *log.Logger) *PullService {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	return &PullService{
		server: &http.Server{
			Addr:           pullEndpoint,
			Handler:        mux,
			ReadTimeout:    10 * time.Second,
			WriteTimeout:   10 * time.Second,
			MaxHeaderBytes: 1 << 20,
		},
		logger: logger.WithModule(moduleName),
	}
}

// Handler returns the HTTP handler serving the metrics.
func (s *PullService) Handler() http.Handler {
	return s.server.Handler
}

// Run serves metrics until ctx is done.
func (s *PullService) Run(ctx context.Context) error {
	s.logger.Info("starting pull metrics service", "endpoint", s.server.Addr)
	return RunServer(ctx, s.server, s.logger)
}

// RunServer runs server until ctx is done, then shuts it down gracefully.
func RunServer(ctx context.Context, server *http.Server, logger *log.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		logger.Error("server failed", "addr", server.Addr, "err", err)
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info("shutting down server", "addr", server.Addr)
		return server.Shutdown(shutdownCtx)
	}
}
