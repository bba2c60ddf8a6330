package app

import (
	"context"
	"net/http"
	"time"

	"github.com/dawnlightpress/pages/pkg/dp/logger"
	"github.com/go-chi/chi/v5"
)

// Startable is a component that needs a startup step (open a database,
// launch a background loop) before the server accepts traffic.
type Startable interface {
	Start(context.Context) error
}

// Stoppable is a component with a shutdown step. Stop is called in reverse
// registration order.
type Stoppable interface {
	Stop(context.Context) error
}

// RouteRegistrar is a component that mounts HTTP routes.
type RouteRegistrar interface {
	RegisterRoutes(chi.Router)
}

// Setup inspects each component for RouteRegistrar, Startable, and Stoppable
// capabilities, collecting start/stop functions and route registrars in order.
func Setup(ctx context.Context, r chi.Router, comps ...any) (
	starts []func(context.Context) error,
	stops []func(context.Context) error,
	registrars []RouteRegistrar,
) {
	for _, c := range comps {
		if rr, ok := c.(RouteRegistrar); ok {
			registrars = append(registrars, rr)
		}
		if s, ok := c.(Startable); ok {
			starts = append(starts, s.Start)
		}
		if st, ok := c.(Stoppable); ok {
			stops = append(stops, st.Stop)
		}
	}
	return
}

// Start executes startup functions in order with automatic rollback on
// failure: if a start fails, already-started components are stopped in
// reverse order. Routes are registered only after every component is up.
func Start(ctx context.Context, log logger.Logger, starts []func(context.Context) error, stops []func(context.Context) error, registrars []RouteRegistrar, router chi.Router) error {
	for i, start := range starts {
		if err := start(ctx); err != nil {
			log.Errorf("error starting component #%d: %v", i, err)
			for j := i - 1; j >= 0; j-- {
				if rErr := stops[j](context.Background()); rErr != nil {
					log.Errorf("error stopping component #%d during rollback: %v", j, rErr)
				}
			}
			return err
		}
	}

	for _, rr := range registrars {
		rr.RegisterRoutes(router)
	}

	return nil
}

// NewServer builds the HTTP server for a router.
func NewServer(router chi.Router, addr string) *http.Server {
	return &http.Server{
		Addr:    addr,
		Handler: router,
	}
}

// Serve starts the HTTP server and blocks until it's shut down.
func Serve(srv *http.Server) error {
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop stops all components in reverse order (LIFO).
func Stop(ctx context.Context, log logger.Logger, stops []func(context.Context) error) {
	for i := len(stops) - 1; i >= 0; i-- {
		if err := stops[i](ctx); err != nil {
			log.Errorf("error stopping component #%d: %v", i, err)
		}
	}
}

// Shutdown performs graceful shutdown of the HTTP servers, draining
// in-flight requests before stopping the components.
func Shutdown(log logger.Logger, stops []func(context.Context) error, srvs ...*http.Server) {
	log.Info("Shutting down gracefully, press Ctrl+C again to force")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for _, srv := range srvs {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Errorf("server shutdown failed: %v", err)
		}
	}

	Stop(shutdownCtx, log, stops)
}
