// Package server implements grapplegraph's HTTP API.
//
// Routes:
//
//	GET  /healthz              build information
//	GET  /metrics              Prometheus metrics
//	POST /v1/decode            code → coordinates
//	POST /v1/encode            coordinates → code
//	POST /v1/match             equivalence of two poses
//	POST /v1/canonicalize      canonical form and bucket key
//	POST /v1/relax             limb relaxation
//	POST /v1/build             build a graph from an inline catalog
//	GET  /v1/graphs            stored graphs, newest first
//	GET  /v1/graphs/{key}      one stored graph
//
// Errors are JSON objects {"error": {"code": ..., "message": ...}} with the
// HTTP status derived from the error code.
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/grapplegraph/pkg/match"
	"github.com/matzehuels/grapplegraph/pkg/pipeline"
	"github.com/matzehuels/grapplegraph/pkg/pose"
	"github.com/matzehuels/grapplegraph/pkg/store"
)

// Defaults for Options.
const (
	DefaultMaxBody         = 32 << 20
	DefaultRequestTimeout  = 60 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
)

// Options configures a Server.
type Options struct {
	// Runner executes builds. Nil means an uncached runner.
	Runner *pipeline.Runner

	// Store serves /v1/graphs. Nil disables those routes' lookups.
	Store store.Store

	// Build holds the build defaults requests start from.
	Build pipeline.Options

	// Matcher answers /v1/match unless the request overrides it.
	Matcher match.Matcher

	// Codec decodes and encodes codes unless the request overrides it.
	Codec pose.Codec

	// RelaxIterations is the default for /v1/relax.
	RelaxIterations int

	// Gatherer backs /metrics. Nil means prometheus.DefaultGatherer.
	Gatherer prometheus.Gatherer

	Logger         *log.Logger
	MaxBody        int64
	RequestTimeout time.Duration
}

// Server is the HTTP API.
type Server struct {
	opts   Options
	router chi.Router
}

// New builds a server and its routes.
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if opts.Runner == nil {
		opts.Runner = pipeline.NewRunner(nil, nil, opts.Store, opts.Logger)
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}
	if opts.MaxBody <= 0 {
		opts.MaxBody = DefaultMaxBody
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = DefaultRequestTimeout
	}
	if opts.RelaxIterations <= 0 {
		opts.RelaxIterations = 1
	}

	s := &Server{opts: opts}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.observe)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.opts.Gatherer, promhttp.HandlerOpts{}))

	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.Timeout(s.opts.RequestTimeout))
		r.Use(s.limitBody)
		r.Post("/decode", s.handleDecode)
		r.Post("/encode", s.handleEncode)
		r.Post("/match", s.handleMatch)
		r.Post("/canonicalize", s.handleCanonicalize)
		r.Post("/relax", s.handleRelax)
		r.Post("/build", s.handleBuild)
		r.Get("/graphs", s.handleListGraphs)
		r.Get("/graphs/{key}", s.handleGetGraph)
	})
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.opts.Logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
	defer cancel()
	s.opts.Logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
