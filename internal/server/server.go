// Package server exposes the kitchenplan tool-call contract over HTTP.
//
// Routes:
//
//	GET  /healthz             liveness and version
//	GET  /v1/tools            tool definitions
//	POST /v1/tools/{name}     call a tool; the body is its JSON argument object
//	GET  /v1/kitchens/{id}    fetch a saved configuration
//	GET  /metrics             Prometheus metrics (when a registry is set)
//
// Errors are JSON objects {"error": {"code", "message"}} with the HTTP
// status derived from the error code. A config rejected by validation also
// carries the full validation result under "validation".
package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/kitchenplan/pkg/buildinfo"
	"github.com/matzehuels/kitchenplan/pkg/errors"
	"github.com/matzehuels/kitchenplan/pkg/pipeline"
	"github.com/matzehuels/kitchenplan/pkg/tools"
	"github.com/matzehuels/kitchenplan/pkg/validate"
)

// MaxBodyBytes bounds tool-call request bodies.
const MaxBodyBytes = 4 << 20

// Options configure a Server.
type Options struct {
	// Registry, when set, is served on /metrics.
	Registry *prometheus.Registry
	// ShutdownTimeout bounds graceful shutdown. Defaults to 10s.
	ShutdownTimeout time.Duration
}

// Server is the HTTP surface.
type Server struct {
	tools  *tools.Toolbox
	logger *log.Logger
	opts   Options
	router chi.Router
}

// New builds the router around r.
func New(r *pipeline.Runner, logger *log.Logger, opts Options) *Server {
	if logger == nil {
		logger = log.Default()
	}
	if opts.ShutdownTimeout == 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}
	s := &Server{
		tools:  tools.New(r),
		logger: logger,
		opts:   opts,
	}
	s.router = s.routes()
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	if s.opts.Registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.opts.Registry, promhttp.HandlerOpts{}))
	}
	r.Route("/v1", func(r chi.Router) {
		r.Get("/tools", s.handleDefinitions)
		r.Post("/tools/{name}", s.handleCall)
		r.Get("/kitchens/{id}", s.handleGetKitchen)
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr, "version", buildinfo.Version)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	sctx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down")
	if err := srv.Shutdown(sctx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": buildinfo.Version})
}

func (s *Server) handleDefinitions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"tools": tools.Definitions()})
}

func (s *Server) handleCall(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "read request body"))
		return
	}
	result, err := s.tools.Call(r.Context(), name, body)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleGetKitchen(w http.ResponseWriter, r *http.Request) {
	stored, err := s.tools.GetKitchenConfig(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stored)
}

type errorBody struct {
	Error      errorDetail      `json:"error"`
	Validation *validate.Result `json:"validation,omitempty"`
}

type errorDetail struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	status := errors.HTTPStatus(err)
	body := errorBody{Error: errorDetail{Code: code, Message: errors.UserMessage(err)}}
	var failure *validate.Failure
	if stderrors.As(err, &failure) {
		body.Validation = &failure.Result
	}
	if status >= 500 {
		s.logger.Error("request failed", "path", r.URL.Path, "request_id", RequestID(r.Context()), "err", err)
	}
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
