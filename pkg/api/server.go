package api

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/speakerbox/pkg/config"
	"github.com/matzehuels/speakerbox/pkg/errors"
	"github.com/matzehuels/speakerbox/pkg/extract"
	"github.com/matzehuels/speakerbox/pkg/pipeline"
	"github.com/matzehuels/speakerbox/pkg/store"
)

const (
	maxBodyBytes   = 1 << 20
	requestTimeout = 60 * time.Second
	shutdownGrace  = 10 * time.Second
)

// Extractor finds driver parameters in free text.
type Extractor interface {
	Extract(ctx context.Context, text string) (extract.Params, error)
}

// ExtractorFunc builds an Extractor for an API key. An empty key means the
// server's configured key.
type ExtractorFunc func(apiKey string) Extractor

// Server serves the HTTP API.
type Server struct {
	runner    *pipeline.Runner
	store     store.Store
	extractor ExtractorFunc
	defaults  config.DefaultsConfig
	logger    *log.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithStore enables the /v1/calculations endpoints and saving from
// /v1/calculate. Without it a MemoryStore is used.
func WithStore(s store.Store) Option { return func(srv *Server) { srv.store = s } }

// WithExtractor enables /v1/extract.
func WithExtractor(f ExtractorFunc) Option { return func(srv *Server) { srv.extractor = f } }

// WithDefaults sets the values used for blank layout inputs.
func WithDefaults(d config.DefaultsConfig) Option { return func(srv *Server) { srv.defaults = d } }

// WithLogger sets the request logger.
func WithLogger(l *log.Logger) Option { return func(srv *Server) { srv.logger = l } }

// New creates a server around runner.
func New(runner *pipeline.Runner, opts ...Option) *Server {
	s := &Server{
		runner:   runner,
		defaults: config.Default("").Defaults,
		logger:   log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		s.store = store.NewMemoryStore()
	}
	return s
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/healthz", s.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Use(limitBody)
		r.Post("/calculate", s.handleCalculate)
		r.Post("/layout", s.handleLayout)
		r.Post("/extract", s.handleExtract)

		r.Route("/calculations", func(r chi.Router) {
			r.Get("/", s.handleListCalculations)
			r.Post("/", s.handleSaveCalculation)
			r.Get("/{id}", s.handleGetCalculation)
			r.Delete("/{id}", s.handleDeleteCalculation)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Code: errors.ErrCodeNotFound, Message: "no route for " + r.URL.Path})
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func limitBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		next.ServeHTTP(w, r)
	})
}

// requestLogger logs each request once it completes.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		fields := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).Round(time.Microsecond),
			"request_id", middleware.GetReqID(r.Context()),
		}
		switch {
		case status >= 500:
			s.logger.Error("request", fields...)
		case status >= 400:
			s.logger.Warn("request", fields...)
		default:
			s.logger.Info("request", fields...)
		}
	})
}
