// Package api exposes the engine over HTTP: the analyze RPC consumed by
// collectors through the gateway, and the alert CRUD surface consumed by the
// UI. Authentication is enforced upstream by the gateway; handlers assume an
// already-validated request.
package api

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Addr            string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

// Server wraps the chi router and http.Server with graceful shutdown.
type Server struct {
	server *http.Server
	logger *zerolog.Logger
	cfg    ServerConfig
}

// NewServer builds the router and wires the handler routes.
func NewServer(cfg ServerConfig, handler *Handler, logger zerolog.Logger) *Server {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(requestLogger(&logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(cfg.RequestTimeout))

	router.Route("/api/v1", func(r chi.Router) {
		handler.RegisterRoutes(r)
	})

	return &Server{
		server: &http.Server{
			Addr:         cfg.Addr,
			Handler:      router,
			ReadTimeout:  cfg.RequestTimeout,
			WriteTimeout: cfg.RequestTimeout,
			IdleTimeout:  60 * time.Second,
		},
		logger: &logger,
		cfg:    cfg,
	}
}

// Start serves until an error occurs or SIGINT/SIGTERM arrives, then shuts
// down gracefully within the configured timeout.
func (s *Server) Start() error {
	serverErrors := make(chan error, 1)
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	go func() {
		s.logger.Info().Str("addr", s.server.Addr).Msg("starting server")
		serverErrors <- s.server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-shutdown:
		s.logger.Info().Msg("shutdown initiated")

		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()

		err := s.server.Shutdown(ctx)
		if err != nil {
			s.logger.Error().Err(err).Msg("graceful shutdown failed")
			err = s.server.Close()
		}
		return err
	}
}
