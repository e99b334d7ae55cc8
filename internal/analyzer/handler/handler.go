// File: handler.go
// Title: Analyzer HTTP API Handler
// Description: Implements the REST surface of the analysis service. Routes
//              requests under /api/v1 to the analyze, tokenize, health and
//              history endpoints and renders all responses as JSON.
// Author: AnderBEz
// Version: v0.1.0
// Created: 2026-08-15
// Modified: 2026-08-15
//
// Change History:
// - 2026-08-15 v0.1.0: Initial REST handler

package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/AnderBEz/thuCompiler/internal/analyzer/service"
	"github.com/AnderBEz/thuCompiler/internal/analyzer/store"
	"github.com/AnderBEz/thuCompiler/pkg/core/health"
	"github.com/AnderBEz/thuCompiler/pkg/core/logging"
)

// AnalyzeRequest represents an analysis request
type AnalyzeRequest struct {
	Source string `json:"source"`
}

// ErrorResponse represents an API error
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status  string               `json:"status"`
	Version string               `json:"version"`
	Uptime  string               `json:"uptime"`
	Checks  []health.CheckResult `json:"checks,omitempty"`
}

// HistoryResponse represents a page of past analyses
type HistoryResponse struct {
	Entries []*store.Record `json:"entries"`
	Total   int             `json:"total"`
}

// CORSOptions controls the CORS headers sent on every response
type CORSOptions struct {
	Enabled        bool
	AllowedOrigins []string
	AllowedMethods []string
}

// DefaultCORS returns permissive CORS settings for local development
func DefaultCORS() CORSOptions {
	return CORSOptions{
		Enabled:        true,
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
	}
}

// normalized fills missing fields. A fully zero value means the caller
// did not configure CORS at all and gets the permissive defaults.
func (o CORSOptions) normalized() CORSOptions {
	if !o.Enabled && o.AllowedOrigins == nil && o.AllowedMethods == nil {
		return DefaultCORS()
	}
	if o.Enabled {
		if len(o.AllowedOrigins) == 0 {
			o.AllowedOrigins = []string{"*"}
		}
		if len(o.AllowedMethods) == 0 {
			o.AllowedMethods = []string{"GET", "POST", "OPTIONS"}
		}
	}
	return o
}

// Config holds handler configuration
type Config struct {
	Version string

	// RequestTimeout bounds a single analyze or tokenize request.
	// Zero disables the per-request deadline.
	RequestTimeout time.Duration

	CORS CORSOptions
}

// Handler handles HTTP requests for the analysis API
type Handler struct {
	service   *service.Service
	health    *health.Registry
	logger    *logging.Logger
	startTime time.Time
	version   string
	timeout   time.Duration
	cors      CORSOptions
}

// NewHandler creates a new API handler
func NewHandler(cfg Config, svc *service.Service, registry *health.Registry) *Handler {
	return &Handler{
		service:   svc,
		health:    registry,
		logger:    logging.New("analyzer-handler"),
		startTime: time.Now(),
		version:   cfg.Version,
		timeout:   cfg.RequestTimeout,
		cors:      cfg.CORS.normalized(),
	}
}

// ServeHTTP implements http.Handler
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.cors.Enabled {
		w.Header().Set("Access-Control-Allow-Origin", strings.Join(h.cors.AllowedOrigins, ", "))
		w.Header().Set("Access-Control-Allow-Methods", strings.Join(h.cors.AllowedMethods, ", "))
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	}

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	// Route requests
	path := strings.TrimPrefix(r.URL.Path, "/api/v1")
	path = strings.TrimPrefix(path, "/")
	path = strings.TrimSuffix(path, "/")

	switch {
	case path == "":
		h.handleRoot(w, r)
	case path == "health":
		h.handleHealth(w, r)
	case path == "analyze":
		h.handleAnalyze(w, r)
	case path == "tokenize":
		h.handleTokenize(w, r)
	case path == "history":
		h.handleHistory(w, r)
	case path == "history/stats":
		h.handleHistoryStats(w, r)
	case strings.HasPrefix(path, "history/"):
		h.handleHistoryEntry(w, r, strings.TrimPrefix(path, "history/"))
	default:
		h.writeError(w, http.StatusNotFound, "not_found", "Endpoint not found", "")
	}
}

// handleRoot handles the root endpoint
func (h *Handler) handleRoot(w http.ResponseWriter, r *http.Request) {
	info := map[string]interface{}{
		"name":    "thuCompiler Analysis API",
		"version": h.version,
		"endpoints": map[string][]string{
			"core": {
				"GET  /api/v1/health",
			},
			"analysis": {
				"POST /api/v1/analyze",
				"POST /api/v1/tokenize",
				"WS   /api/v1/analyze/ws",
			},
			"history": {
				"GET  /api/v1/history",
				"GET  /api/v1/history/{id}",
				"GET  /api/v1/history/stats",
			},
		},
	}
	h.writeJSON(w, http.StatusOK, info)
}

// handleHealth handles health check requests
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Use GET", "")
		return
	}

	resp := HealthResponse{
		Status:  string(health.StatusHealthy),
		Version: h.version,
		Uptime:  time.Since(h.startTime).String(),
	}

	if h.health != nil {
		report := h.health.Check(r.Context())
		resp.Status = string(report.Status)
		resp.Checks = report.Checks
	}

	status := http.StatusOK
	if resp.Status == string(health.StatusUnhealthy) {
		status = http.StatusServiceUnavailable
	}
	h.writeJSON(w, status, resp)
}

// handleAnalyze handles analysis requests
func (h *Handler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Use POST", "")
		return
	}

	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON", err.Error())
		return
	}
	if req.Source == "" {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "Source required", "")
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	result, err := h.service.Analyze(ctx, req.Source)
	if err != nil {
		var tooLarge *service.ErrSourceTooLarge
		if errors.As(err, &tooLarge) {
			h.writeError(w, http.StatusRequestEntityTooLarge, "source_too_large", "Source exceeds size limit", err.Error())
			return
		}
		if errors.Is(err, context.DeadlineExceeded) {
			h.writeError(w, http.StatusGatewayTimeout, "analysis_timeout", "Analysis exceeded the time limit", "")
			return
		}
		h.writeError(w, http.StatusInternalServerError, "internal_error", "Analysis failed", err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

// handleTokenize handles tokenize-only requests
func (h *Handler) handleTokenize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Use POST", "")
		return
	}

	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON", err.Error())
		return
	}
	if req.Source == "" {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "Source required", "")
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	result, err := h.service.Tokenize(ctx, req.Source)
	if err != nil {
		var tooLarge *service.ErrSourceTooLarge
		if errors.As(err, &tooLarge) {
			h.writeError(w, http.StatusRequestEntityTooLarge, "source_too_large", "Source exceeds size limit", err.Error())
			return
		}
		if errors.Is(err, context.DeadlineExceeded) {
			h.writeError(w, http.StatusGatewayTimeout, "analysis_timeout", "Tokenization exceeded the time limit", "")
			return
		}
		h.writeError(w, http.StatusInternalServerError, "internal_error", "Tokenization failed", err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

// requestContext applies the configured per-request deadline
func (h *Handler) requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	if h.timeout > 0 {
		return context.WithTimeout(r.Context(), h.timeout)
	}
	return r.Context(), func() {}
}

// handleHistory handles history listing requests
func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Use GET", "")
		return
	}

	filter := store.Filter{Limit: 50}
	q := r.URL.Query()
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 500 {
			h.writeError(w, http.StatusBadRequest, "invalid_request", "limit must be between 1 and 500", "")
			return
		}
		filter.Limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			h.writeError(w, http.StatusBadRequest, "invalid_request", "offset must be non-negative", "")
			return
		}
		filter.Offset = n
	}
	if q.Get("only_errors") == "true" {
		filter.OnlyErrors = true
	}

	entries, err := h.service.History(r.Context(), filter)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "internal_error", "Failed to list history", err.Error())
		return
	}
	if entries == nil {
		entries = []*store.Record{}
	}

	h.writeJSON(w, http.StatusOK, HistoryResponse{
		Entries: entries,
		Total:   len(entries),
	})
}

// handleHistoryEntry handles single-entry history requests
func (h *Handler) handleHistoryEntry(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		h.writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Use GET", "")
		return
	}

	entry, err := h.service.HistoryEntry(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, "not_found", "History entry not found", "")
			return
		}
		h.writeError(w, http.StatusInternalServerError, "internal_error", "Failed to load history entry", err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, entry)
}

// handleHistoryStats handles history statistics requests
func (h *Handler) handleHistoryStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Use GET", "")
		return
	}

	stats, err := h.service.HistoryStats(r.Context())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "internal_error", "Failed to load history stats", err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (h *Handler) writeError(w http.ResponseWriter, status int, code, message, details string) {
	resp := ErrorResponse{
		Error:   message,
		Code:    code,
		Details: details,
	}
	h.writeJSON(w, status, resp)
}
