// Package server exposes assessments, submissions and results over JSON HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/harrison/assessment/internal/logger"
	"github.com/harrison/assessment/internal/registry"
	"github.com/harrison/assessment/internal/service"
	"github.com/harrison/assessment/internal/theme"
)

// ShutdownTimeout bounds graceful shutdown of in-flight requests
const ShutdownTimeout = 5 * time.Second

// Options wires the server's collaborators
type Options struct {
	Registry  *registry.Registry
	Loader    *registry.Loader // nil disables POST /v1/admin/reload
	Service   *service.Assessments
	Themes    *theme.Resolver
	CSSPrefix string
	Logger    logger.Logger
}

// Server serves the HTTP surface
type Server struct {
	registry  *registry.Registry
	loader    *registry.Loader
	service   *service.Assessments
	themes    *theme.Resolver
	cssPrefix string
	logger    logger.Logger
}

// New creates a Server
func New(opts Options) *Server {
	log := opts.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	themes := opts.Themes
	if themes == nil {
		themes = theme.NewResolver(theme.Config{})
	}
	prefix := opts.CSSPrefix
	if prefix == "" {
		prefix = theme.DefaultCSSPrefix
	}
	return &Server{
		registry:  opts.Registry,
		loader:    opts.Loader,
		service:   opts.Service,
		themes:    themes,
		cssPrefix: prefix,
		logger:    log,
	}
}

// Router builds the route table
func (s *Server) Router() http.Handler {
	r := mux.NewRouter()
	r.Use(s.logRequests)

	r.HandleFunc("/health", s.health).Methods("GET")

	v1 := r.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/assessments", s.listAssessments).Methods("GET")
	v1.HandleFunc("/assessments/{slug}", s.getAssessment).Methods("GET")
	v1.HandleFunc("/assessments/{slug}/responses", s.createResponse).Methods("POST")
	v1.HandleFunc("/assessments/{slug}/results/{uuid}", s.getResult).Methods("GET")
	v1.HandleFunc("/admin/reload", s.reload).Methods("POST")

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.LogInfo(fmt.Sprintf("Server listening on %s", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.LogInfo("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.LogDebug(fmt.Sprintf("%s %s %d %s", r.Method, r.URL.Path, rec.status, time.Since(start).Round(time.Microsecond)))
	})
}
