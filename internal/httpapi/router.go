// Package httpapi exposes the replayed ledger over HTTP for inspection.
// It is read-only: operations only ever enter through the replay.
package httpapi

import (
	"log/slog"
	"net/http"

	chi "github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server wires handlers and middleware using Chi.
type Server struct {
	reader  Reader
	log     *slog.Logger
	reg     *prometheus.Registry
	metrics *httpMetrics
	rt      *chi.Mux
}

// Option configures a Server.
type Option func(*Server)

// WithRegistry serves /metrics from reg and registers the HTTP collectors on it.
// Without it the server uses a private registry.
func WithRegistry(reg *prometheus.Registry) Option { return func(s *Server) { s.reg = reg } }

// New constructs the HTTP server with routes and middleware.
func New(reader Reader, logger *slog.Logger, opts ...Option) *Server {
	s := &Server{reader: reader, log: logger, rt: chi.NewRouter()}
	for _, o := range opts {
		o(s)
	}
	if s.reg == nil {
		s.reg = prometheus.NewRegistry()
	}
	s.metrics = newHTTPMetrics(s.reg)

	s.rt.Use(chimw.RequestID)
	s.rt.Use(requestLogger(logger))
	s.rt.Use(recoverer(logger))
	s.rt.Use(s.metrics.middleware)
	s.routes()
	return s
}

// Handler exposes the configured http.Handler.
func (s *Server) Handler() http.Handler { return s.rt }

func (s *Server) routes() {
	s.rt.Get("/v1/clients", s.listClients)
	s.rt.Get("/v1/clients/{id}", s.getClient)
	s.rt.Get("/v1/report.csv", s.reportCSV)
	// Health (unversioned)
	s.rt.Get("/healthz", s.healthz)
	s.rt.Get("/readyz", s.readyz)
	s.rt.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.reg, promhttp.HandlerOpts{}))
}
