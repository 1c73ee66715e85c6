// Package api exposes the graph query facade over HTTP. Every query
// endpoint returns the engine's result envelope verbatim; the HTTP status
// mirrors the envelope's reason code.
package api

import (
	"net/http"

	"github.com/dd0wney/infragraph/pkg/health"
	"github.com/dd0wney/infragraph/pkg/intent"
	"github.com/dd0wney/infragraph/pkg/logging"
	"github.com/dd0wney/infragraph/pkg/metrics"
	"github.com/dd0wney/infragraph/pkg/query"
	"github.com/dd0wney/infragraph/pkg/storage"
)

// maxBodyBytes bounds request bodies; only /chat accepts a body at all.
const maxBodyBytes = 64 * 1024

// Server routes HTTP requests to the query facade.
type Server struct {
	engine    *query.Engine
	responder *intent.Responder
	checker   *health.Checker
	store     *storage.GraphStore
	metrics   *metrics.Registry
	logger    logging.Logger
	mux       *http.ServeMux
}

// Options carries the server's collaborators. Responder, Checker and
// Metrics are optional; their endpoints degrade gracefully when absent.
type Options struct {
	Engine    *query.Engine
	Responder *intent.Responder
	Checker   *health.Checker
	Store     *storage.GraphStore
	Metrics   *metrics.Registry
	Logger    logging.Logger
}

// NewServer builds the server and registers all routes.
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	s := &Server{
		engine:    opts.Engine,
		responder: opts.Responder,
		checker:   opts.Checker,
		store:     opts.Store,
		metrics:   opts.Metrics,
		logger:    logger.With(logging.Component("api")),
		mux:       http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /api/v1/nodes", s.handleListNodes)
	s.mux.HandleFunc("GET /api/v1/nodes/{id}", s.handleGetNode)
	s.mux.HandleFunc("GET /api/v1/nodes/{id}/upstream", s.handleUpstream)
	s.mux.HandleFunc("GET /api/v1/nodes/{id}/downstream", s.handleDownstream)
	s.mux.HandleFunc("GET /api/v1/nodes/{id}/owner", s.handleOwner)
	s.mux.HandleFunc("GET /api/v1/nodes/{id}/blast-radius", s.handleBlastRadius)
	s.mux.HandleFunc("GET /api/v1/path", s.handlePath)
	s.mux.HandleFunc("GET /api/v1/teams/{id}/resources", s.handleTeamResources)
	s.mux.HandleFunc("GET /api/v1/statistics", s.handleStatistics)
	s.mux.HandleFunc("POST /api/v1/chat", s.handleChat)

	if s.checker != nil {
		s.mux.HandleFunc("GET /health/live", s.checker.LivenessHandler())
		s.mux.HandleFunc("GET /health/ready", s.checker.ReadinessHandler())
	}
	if s.metrics != nil {
		s.mux.Handle("GET /metrics", s.metrics.Handler())
	}
}

// Handler returns the full middleware chain.
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.mux
	h = s.metricsMiddleware(h)
	h = s.loggingMiddleware(h)
	h = s.corsMiddleware(h)
	h = s.requestIDMiddleware(h)
	h = s.recoveryMiddleware(h)
	return h
}
