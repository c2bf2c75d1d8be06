// Package server exposes the course registration form over HTTP: a
// server-rendered page, a small JSON API and its OpenAPI description.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"go.uber.org/zap"

	"github.com/goliatone/go-courseform/pkg/config"
	"github.com/goliatone/go-courseform/pkg/registration"
	"github.com/goliatone/go-courseform/pkg/render"
	"github.com/goliatone/go-courseform/pkg/renderers/html"
)

// Option configures a Server.
type Option func(*Server)

// WithRegistry supplies the renderer registry; the page is drawn by the
// renderer named "html".
func WithRegistry(registry *render.Registry) Option {
	return func(s *Server) {
		if registry != nil {
			s.registry = registry
		}
	}
}

// WithThemeSelector overrides the selector used to resolve cfg.Theme.
func WithThemeSelector(selector *render.ThemeSelector) Option {
	return func(s *Server) {
		if selector != nil {
			s.selector = selector
		}
	}
}

// WithClock replaces time.Now for session expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		if now != nil {
			s.now = now
		}
	}
}

type Server struct {
	cfg      config.Config
	logger   *zap.Logger
	registry *render.Registry
	selector *render.ThemeSelector
	now      func() time.Time

	page        render.Renderer
	theme       *render.ThemeConfig
	sessions    *Sessions
	api         *openapi3.T
	apiJSON     []byte
	fieldSchema *openapi3.Schema
	mux         *http.ServeMux
}

// New wires the server. The API description is validated and the theme
// resolved up front so misconfiguration fails at startup.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger, options ...Option) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}

	if s.registry == nil {
		s.registry = render.NewRegistry()
	}
	if !s.registry.Has("html") {
		renderer, err := html.New()
		if err != nil {
			return nil, fmt.Errorf("server: %w", err)
		}
		if err := s.registry.Register(renderer); err != nil {
			return nil, fmt.Errorf("server: %w", err)
		}
	}
	page, err := s.registry.Get("html")
	if err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}
	s.page = page

	if s.selector == nil {
		s.selector, err = render.NewThemeSelector()
		if err != nil {
			return nil, fmt.Errorf("server: %w", err)
		}
	}
	s.theme, err = render.ResolveTheme(s.selector, cfg.Theme)
	if err != nil {
		return nil, fmt.Errorf("server: resolve theme: %w", err)
	}

	s.api, err = LoadAPIDescription(ctx)
	if err != nil {
		return nil, err
	}
	s.apiJSON, err = json.Marshal(s.api)
	if err != nil {
		return nil, fmt.Errorf("server: encode api description: %w", err)
	}
	s.fieldSchema, err = requestSchema(s.api, http.MethodPatch, "/api/form/fields")
	if err != nil {
		return nil, err
	}

	s.sessions = NewSessions(cfg.Server.SessionTTL, s.newComponent, logger)
	s.sessions.now = s.now
	s.mux = s.routes()
	return s, nil
}

func (s *Server) newComponent(id string, notifier registration.Notifier) *registration.Component {
	return registration.New(
		registration.WithNotifier(notifier),
		registration.WithNoticeMessage(s.cfg.Form.Notice),
		registration.WithLogger(s.logger.With(zap.String("session", id))),
	)
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleFormGet)
	mux.HandleFunc("POST /{$}", s.handleFormPost)
	mux.HandleFunc("GET /api/form", s.handleGetForm)
	mux.HandleFunc("PATCH /api/form/fields", s.handleSetField)
	mux.HandleFunc("POST /api/form/rows", s.handleAppendRow)
	mux.HandleFunc("POST /api/form/submit", s.handleSubmit)
	mux.HandleFunc("GET /openapi.json", s.handleAPIDescription)
	mux.Handle("GET /assets/", http.StripPrefix("/assets/", http.FileServerFS(html.AssetsFS())))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

// Handler returns the root handler with request logging.
func (s *Server) Handler() http.Handler {
	return s.logRequests(s.mux)
}

// Sessions exposes the session table.
func (s *Server) Sessions() *Sessions {
	return s.sessions
}

func (s *Server) handleAPIDescription(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(s.apiJSON)
}

// Run serves on cfg.Server.Addr until ctx is cancelled, then shuts down
// within cfg.Server.Grace.
func (s *Server) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("server: listen: %w", err)
	}
	return s.Serve(ctx, listener)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	httpServer := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go s.sessions.Sweep(sweepCtx, s.cfg.Server.SessionTTL/2)

	s.logger.Info("listening", zap.String("addr", listener.Addr().String()))

	errChan := make(chan error, 1)
	go func() {
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
		close(errChan)
	}()

	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("server: serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.Grace)
	defer cancel()

	s.logger.Info("shutting down", zap.Duration("grace", s.cfg.Server.Grace))
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := s.now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("elapsed", s.now().Sub(start)),
		)
	})
}
