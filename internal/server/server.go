// Package server exposes analysis sessions over HTTP.
//
// Every mutating route returns the session's document after the change, so
// a client can redraw from the response alone:
//
//	POST   /v1/sessions                                  create from an analysis
//	GET    /v1/sessions/{id}?department=D                current document
//	GET    /v1/sessions/{id}/departments                 departments for filter UIs
//	GET    /v1/sessions/{id}/artifacts/{format}          svg, json, dot or graphviz
//	DELETE /v1/sessions/{id}                             forget the session
//	DELETE /v1/sessions/{id}/contacts/{contactID}        delete and bridge reports
//	POST   /v1/sessions/{id}/positions/{contactID}       drag by {dx, dy, zoom}
//	GET    /healthz
package server

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/orgtower/pkg/session"
)

// DefaultAddr is the listen address used when none is given.
const DefaultAddr = ":8080"

// maxBodyBytes caps request bodies.
const maxBodyBytes = 4 << 20

// Server serves the session API.
type Server struct {
	sessions *session.Manager
	logger   *log.Logger
	router   chi.Router
}

// New creates a server over m.
func New(m *session.Manager, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{sessions: m, logger: logger}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", handleHealth)

	r.Route("/v1/sessions", func(r chi.Router) {
		r.Post("/", s.handleCreate)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGet)
			r.Delete("/", s.handleDeleteSession)
			r.Get("/departments", s.handleDepartments)
			r.Get("/artifacts/{format}", s.handleArtifact)
			r.Delete("/contacts/{contactID}", s.handleDeleteContact)
			r.Post("/positions/{contactID}", s.handleReposition)
		})
	})
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}
	srv := &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
