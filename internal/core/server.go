// Package core provides the HTTP chassis for the relay.
// It builds a chi router, applies the cross-cutting middleware (panic
// recovery, request IDs, logging, body decoding, timeouts) and mounts the
// health endpoints. Domain handlers plug in through RouteRegistrars.
package core

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"slskdrelay/internal/config"
)

// ServiceName is reported by the health endpoints.
const ServiceName = "Discord Webhook Relay"

// Server encapsulates the dependencies of the HTTP surface so they can be
// swapped in tests.
type Server struct {
	Config       *config.Config
	Logger       *slog.Logger
	HealthProbes []HealthProbe

	// RouteRegistrars mount domain handlers on the root router. They are
	// populated by the entry point, which keeps core free of handler imports.
	RouteRegistrars []func(r chi.Router)

	router *chi.Mux
}

// NewServer validates the critical dependencies and prepares an empty router.
// Callers mount routes with MountRoutes once registrars and probes are set.
func NewServer(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}

	return &Server{
		Config: cfg,
		Logger: logger,
		router: chi.NewRouter(),
	}, nil
}

// Handler returns the router as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Router returns the underlying chi.Mux.
func (s *Server) Router() *chi.Mux {
	return s.router
}
