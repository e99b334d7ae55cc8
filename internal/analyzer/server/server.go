// File: server.go
// Title: Analyzer HTTP Server
// Description: Wires the HTTP API handler, the WebSocket handler and the
//              health registry into a configurable http.Server with request
//              logging and per-request ID middleware.
// Author: AnderBEz
// Version: v0.1.0
// Created: 2026-08-15
// Modified: 2026-08-15
//
// Change History:
// - 2026-08-15 v0.1.0: Initial HTTP server

package server

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	"github.com/AnderBEz/thuCompiler/internal/analyzer/handler"
	"github.com/AnderBEz/thuCompiler/internal/analyzer/service"
	"github.com/AnderBEz/thuCompiler/pkg/core/health"
	"github.com/AnderBEz/thuCompiler/pkg/core/logging"
)

// Server is the analysis API server
type Server struct {
	httpServer *http.Server
	handler    *handler.Handler
	service    *service.Service
	health     *health.Registry
	logger     *logging.Logger
	config     Config
}

// Config holds server configuration
type Config struct {
	Host           string
	HTTPPort       int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	AnalyzeTimeout time.Duration
	CORS           handler.CORSOptions
	Version        string
}

// DefaultConfig returns default server configuration
func DefaultConfig() Config {
	return Config{
		Host:           "0.0.0.0",
		HTTPPort:       8080,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   60 * time.Second,
		AnalyzeTimeout: 10 * time.Second,
		CORS:           handler.DefaultCORS(),
		Version:        "1.0.0",
	}
}

// New creates a new analysis server
func New(cfg Config, svc *service.Service) (*Server, error) {
	if svc == nil {
		return nil, fmt.Errorf("service must not be nil")
	}

	logger := logging.New("analyzer-server")

	// Create health registry
	healthRegistry := health.NewRegistry("analyzer", cfg.Version)
	healthRegistry.RegisterFunc("http", func(ctx context.Context) health.CheckResult {
		return health.CheckResult{
			Name:    "http",
			Status:  health.StatusHealthy,
			Message: "HTTP server is running",
		}
	})
	healthRegistry.RegisterFunc("analyzer", func(ctx context.Context) health.CheckResult {
		// Exercise the full scan/parse path with a known-good probe.
		result, err := svc.Analyze(ctx, "probe = 1\n")
		if err != nil {
			return health.CheckResult{
				Name:    "analyzer",
				Status:  health.StatusUnhealthy,
				Message: err.Error(),
			}
		}
		if result.HasErrors {
			return health.CheckResult{
				Name:    "analyzer",
				Status:  health.StatusDegraded,
				Message: "probe analysis reported diagnostics",
			}
		}
		return health.CheckResult{
			Name:    "analyzer",
			Status:  health.StatusHealthy,
			Message: "scanner and parser operational",
		}
	})
	if store := svc.HistoryStore(); store != nil {
		healthRegistry.Register(health.StoreCheck("history", store))
	}

	// Create handlers
	h := handler.NewHandler(handler.Config{
		Version:        cfg.Version,
		RequestTimeout: cfg.AnalyzeTimeout,
		CORS:           cfg.CORS,
	}, svc, healthRegistry)
	wsHandler := handler.NewWebSocketHandler(svc)

	// Create HTTP server
	mux := http.NewServeMux()

	// WebSocket route
	mux.Handle("/api/v1/analyze/ws", wsHandler)

	// API routes
	mux.Handle("/", h)
	mux.Handle("/api/", h)
	mux.Handle("/api/v1/", h)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.HTTPPort),
		Handler:      requestIDMiddleware(loggingMiddleware(logger, recoveryMiddleware(logger, mux))),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return &Server{
		httpServer: httpServer,
		handler:    h,
		service:    svc,
		health:     healthRegistry,
		logger:     logger,
		config:     cfg,
	}, nil
}

// requestIDMiddleware assigns each request an ID, honoring one supplied
// by the caller, and echoes it on the response
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r)
	})
}

// recoveryMiddleware converts a handler panic into a generic internal
// error response instead of an aborted connection. It sits inside the
// logging middleware so a recovered request still gets a log line with
// its 500 status.
func recoveryMiddleware(logger *logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.Error("panic in HTTP handler",
					"panic", fmt.Sprintf("%v", rec),
					"method", r.Method,
					"path", r.URL.Path,
					"stack", string(debug.Stack()),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(map[string]string{
					"error": "Internal server error",
					"code":  "internal_error",
				})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware adds request logging
func loggingMiddleware(logger *logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Wrap response writer to capture status code
		wrapper := &responseWrapper{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapper, r)

		logger.Info("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapper.statusCode,
			"duration", time.Since(start),
		)
	})
}

// responseWrapper wraps http.ResponseWriter to capture status code
type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (w *responseWrapper) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}

// Flush implements http.Flusher
func (w *responseWrapper) Flush() {
	if flusher, ok := w.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

// Hijack is required for WebSocket upgrades through the middleware chain
func (w *responseWrapper) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if hj, ok := w.ResponseWriter.(http.Hijacker); ok {
		return hj.Hijack()
	}
	return nil, nil, fmt.Errorf("response writer does not support hijacking")
}

// Start starts the server
func (s *Server) Start() error {
	s.logger.Info("Starting analysis server",
		"host", s.config.Host,
		"port", s.config.HTTPPort,
	)
	return s.httpServer.ListenAndServe()
}

// StartAsync starts the server asynchronously
func (s *Server) StartAsync() error {
	s.logger.Info("Starting analysis server (async)",
		"host", s.config.Host,
		"port", s.config.HTTPPort,
	)

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("HTTP server error", "error", err)
		}
	}()

	return nil
}

// Stop gracefully stops the server
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping analysis server")
	return s.httpServer.Shutdown(ctx)
}

// Address returns the server address
func (s *Server) Address() string {
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.HTTPPort)
}

// HealthRegistry returns the health check registry
func (s *Server) HealthRegistry() *health.Registry {
	return s.health
}

// Service returns the underlying analysis service
func (s *Server) Service() *service.Service {
	return s.service
}
