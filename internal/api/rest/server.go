package rest

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/finguard/fraud-screening-backend/internal/infrastructure/config"
)

// Server hosts the screening API.
type Server struct {
	config     *config.Config
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer wires the handler, middleware, and HTTP server. extra holds
// handlers registered outside this package, e.g. /metrics.
func NewServer(cfg *config.Config, handler *Handler, logger *slog.Logger, extra map[string]http.Handler) *Server {
	mux := handler.Routes()
	for pattern, h := range extra {
		mux.Handle(pattern, h)
	}

	wrapped := Chain(mux,
		Recovery(logger),
		RequestLogging(logger),
	)

	return &Server{
		config: cfg,
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:      wrapped,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
		logger: logger,
	}
}

// Start serves until SIGINT/SIGTERM, then shuts down gracefully.
func (s *Server) Start() error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("http server listening", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-stop:
		s.logger.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
