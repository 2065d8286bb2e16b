// Package server assembles the HTTP surface of the dashboard backend.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"partner-dashboard/internal/common/logger"
	partnerviews "partner-dashboard/internal/endpoints/dashboard/partner-views"
)

// Check reports whether a dependency is usable.
type Check func(ctx context.Context) error

type Options struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Logger       logger.Logger

	Partners         *partnerviews.Handler
	PasswordValidate http.Handler
	SendMFACode      http.Handler

	// Checks gate /ready; every check must pass.
	Checks map[string]Check
}

type Server struct {
	http   *http.Server
	log    logger.Logger
	checks map[string]Check
}

func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = logger.NewNoOpLogger()
	}
	log := opts.Logger.WithFields(map[string]interface{}{"component": "http"})

	s := &Server{log: log, checks: opts.Checks}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.health)
	mux.HandleFunc("GET /ready", s.ready)
	mux.Handle("GET /metrics", promhttp.Handler())

	if opts.Partners != nil {
		for _, rt := range opts.Partners.Routes() {
			mux.Handle(rt.Pattern, MetricsMiddleware(rt.Handler, rt.Name))
		}
	}
	if opts.PasswordValidate != nil {
		mux.Handle("POST /api/auth/password/validate", MetricsMiddleware(opts.PasswordValidate, "password_validate"))
	}
	if opts.SendMFACode != nil {
		// the handler answers the CORS preflight itself
		mux.Handle("/functions/v1/send-mfa-code", MetricsMiddleware(opts.SendMFACode, "send_mfa_code"))
	}

	s.http = &http.Server{
		Addr:         opts.Addr,
		Handler:      RequestLogger(mux, log),
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
	}
	return s
}

// Handler exposes the routed handler, mostly for tests.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	s.log.Info("HTTP server listening", map[string]interface{}{"addr": s.http.Addr})
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	results := make(map[string]string, len(s.checks))
	status := http.StatusOK
	for name, check := range s.checks {
		if err := check(ctx); err != nil {
			results[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		results[name] = "ok"
	}

	state := "ready"
	if status != http.StatusOK {
		state = "not_ready"
		s.log.Warn("Readiness check failed", map[string]interface{}{"checks": results})
	}
	writeJSON(w, status, map[string]interface{}{"status": state, "checks": results})
}
