package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/AnderBEz/thuCompiler/internal/analyzer/service"
	"github.com/AnderBEz/thuCompiler/internal/analyzer/store"
	"github.com/AnderBEz/thuCompiler/pkg/core/health"
)

func newTestHandler(t *testing.T, cfg service.Config) (*Handler, *service.Service) {
	t.Helper()
	svc := service.NewService(cfg)
	registry := health.NewRegistry("analyzer", "test")
	registry.Register(health.AlwaysHealthy("self"))
	return NewHandler(Config{Version: "test"}, svc, registry), svc
}

func doJSON(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandler_Root(t *testing.T) {
	h, _ := newTestHandler(t, service.Config{})

	rec := doJSON(t, h, http.MethodGet, "/api/v1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var info map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &info); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if info["version"] != "test" {
		t.Errorf("version = %v, want test", info["version"])
	}
	if _, ok := info["endpoints"]; !ok {
		t.Error("expected endpoint listing in root response")
	}
}

func TestHandler_Health(t *testing.T) {
	h, _ := newTestHandler(t, service.Config{})

	rec := doJSON(t, h, http.MethodGet, "/api/v1/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var resp HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Status != "healthy" {
		t.Errorf("status = %q, want healthy", resp.Status)
	}
	if len(resp.Checks) != 1 {
		t.Errorf("checks = %d, want 1", len(resp.Checks))
	}
}

func TestHandler_Health_Unhealthy(t *testing.T) {
	svc := service.NewService(service.Config{})
	registry := health.NewRegistry("analyzer", "test")
	registry.RegisterFunc("store", func(ctx context.Context) health.CheckResult {
		return health.CheckResult{Status: health.StatusUnhealthy, Message: "down"}
	})
	h := NewHandler(Config{Version: "test"}, svc, registry)

	rec := doJSON(t, h, http.MethodGet, "/api/v1/health", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
}

func TestHandler_Analyze(t *testing.T) {
	h, _ := newTestHandler(t, service.Config{})

	tests := []struct {
		name       string
		method     string
		body       interface{}
		rawBody    string
		wantStatus int
		check      func(t *testing.T, body []byte)
	}{
		{
			name:       "clean program",
			method:     http.MethodPost,
			body:       AnalyzeRequest{Source: "x = 42\nname = \"thu\"\n"},
			wantStatus: http.StatusOK,
			check: func(t *testing.T, body []byte) {
				var result service.Result
				if err := json.Unmarshal(body, &result); err != nil {
					t.Fatalf("unmarshal: %v", err)
				}
				if result.HasErrors {
					t.Errorf("unexpected errors: %+v %+v", result.LexicalErrors, result.SyntaxErrors)
				}
				if result.AST == nil {
					t.Fatal("expected AST in response")
				}
			},
		},
		{
			name:       "program with errors",
			method:     http.MethodPost,
			body:       AnalyzeRequest{Source: "1 = 2\n"},
			wantStatus: http.StatusOK,
			check: func(t *testing.T, body []byte) {
				var result service.Result
				if err := json.Unmarshal(body, &result); err != nil {
					t.Fatalf("unmarshal: %v", err)
				}
				if !result.HasErrors {
					t.Error("expected has_errors = true")
				}
				if len(result.SyntaxErrors) != 1 {
					t.Errorf("syntax_errors = %d, want 1", len(result.SyntaxErrors))
				}
			},
		},
		{
			name:       "missing source",
			method:     http.MethodPost,
			body:       AnalyzeRequest{},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "invalid json",
			method:     http.MethodPost,
			rawBody:    "{not json",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "wrong method",
			method:     http.MethodGet,
			wantStatus: http.StatusMethodNotAllowed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rec *httptest.ResponseRecorder
			if tt.rawBody != "" {
				req := httptest.NewRequest(tt.method, "/api/v1/analyze", strings.NewReader(tt.rawBody))
				rec = httptest.NewRecorder()
				h.ServeHTTP(rec, req)
			} else {
				rec = doJSON(t, h, tt.method, "/api/v1/analyze", tt.body)
			}
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.check != nil {
				tt.check(t, rec.Body.Bytes())
			}
		})
	}
}

func TestHandler_Analyze_SourceTooLarge(t *testing.T) {
	h, _ := newTestHandler(t, service.Config{MaxSourceSize: 16})

	rec := doJSON(t, h, http.MethodPost, "/api/v1/analyze", AnalyzeRequest{
		Source: "value = 123456789012345678901234567890\n",
	})
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusRequestEntityTooLarge)
	}

	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Code != "source_too_large" {
		t.Errorf("code = %q, want source_too_large", resp.Code)
	}
}

func TestHandler_Tokenize(t *testing.T) {
	h, _ := newTestHandler(t, service.Config{})

	rec := doJSON(t, h, http.MethodPost, "/api/v1/tokenize", AnalyzeRequest{Source: "x = 1\n"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var result service.TokenizeResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	// x, =, 1, newline, EOF
	if result.TokenCount != 5 {
		t.Errorf("token_count = %d, want 5", result.TokenCount)
	}
}

func TestHandler_History(t *testing.T) {
	h, svc := newTestHandler(t, service.Config{History: store.NewMemoryHistoryStore()})

	if _, err := svc.Analyze(context.Background(), "x = 1\n"); err != nil {
		t.Fatalf("seed analyze: %v", err)
	}
	if _, err := svc.Analyze(context.Background(), "1 = 2\n"); err != nil {
		t.Fatalf("seed analyze: %v", err)
	}

	rec := doJSON(t, h, http.MethodGet, "/api/v1/history", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var resp HistoryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Total != 2 {
		t.Fatalf("total = %d, want 2", resp.Total)
	}

	// Filtered listing
	rec = doJSON(t, h, http.MethodGet, "/api/v1/history?only_errors=true", nil)
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Total != 1 {
		t.Fatalf("only_errors total = %d, want 1", resp.Total)
	}

	// Single entry
	id := resp.Entries[0].ID
	rec = doJSON(t, h, http.MethodGet, "/api/v1/history/"+id, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("entry status = %d, want %d", rec.Code, http.StatusOK)
	}
	var entry store.Record
	if err := json.Unmarshal(rec.Body.Bytes(), &entry); err != nil {
		t.Fatalf("unmarshal entry: %v", err)
	}
	if entry.Source != "1 = 2\n" {
		t.Errorf("entry source = %q", entry.Source)
	}

	// Stats
	rec = doJSON(t, h, http.MethodGet, "/api/v1/history/stats", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("stats status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestHandler_History_NotFound(t *testing.T) {
	h, _ := newTestHandler(t, service.Config{History: store.NewMemoryHistoryStore()})

	rec := doJSON(t, h, http.MethodGet, "/api/v1/history/no-such-id", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestHandler_History_BadParams(t *testing.T) {
	h, _ := newTestHandler(t, service.Config{History: store.NewMemoryHistoryStore()})

	for _, path := range []string{
		"/api/v1/history?limit=0",
		"/api/v1/history?limit=oops",
		"/api/v1/history?offset=-1",
	} {
		rec := doJSON(t, h, http.MethodGet, path, nil)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want %d", path, rec.Code, http.StatusBadRequest)
		}
	}
}

func TestHandler_UnknownEndpoint(t *testing.T) {
	h, _ := newTestHandler(t, service.Config{})

	rec := doJSON(t, h, http.MethodGet, "/api/v1/nope", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestHandler_CORSPreflight(t *testing.T) {
	h, _ := newTestHandler(t, service.Config{})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/analyze", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing CORS allow-origin header")
	}
}

func TestHandler_CORSFromConfig(t *testing.T) {
	svc := service.NewService(service.Config{})
	registry := health.NewRegistry("analyzer", "test")

	h := NewHandler(Config{
		Version: "test",
		CORS: CORSOptions{
			Enabled:        true,
			AllowedOrigins: []string{"https://ide.example.com"},
			AllowedMethods: []string{"GET", "POST"},
		},
	}, svc, registry)

	rec := doJSON(t, h, http.MethodGet, "/api/v1/health", nil)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://ide.example.com" {
		t.Errorf("allow-origin = %q, want https://ide.example.com", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Methods"); got != "GET, POST" {
		t.Errorf("allow-methods = %q, want GET, POST", got)
	}
}

func TestHandler_CORSDisabled(t *testing.T) {
	svc := service.NewService(service.Config{})
	registry := health.NewRegistry("analyzer", "test")

	h := NewHandler(Config{
		Version: "test",
		CORS:    CORSOptions{Enabled: false, AllowedOrigins: []string{}},
	}, svc, registry)

	rec := doJSON(t, h, http.MethodGet, "/api/v1/health", nil)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("allow-origin = %q, want no header", got)
	}
}

func TestHandler_AnalyzeTimeout(t *testing.T) {
	svc := service.NewService(service.Config{})
	registry := health.NewRegistry("analyzer", "test")

	// A deadline this short is already expired by the time the service
	// checks its context.
	h := NewHandler(Config{Version: "test", RequestTimeout: time.Nanosecond}, svc, registry)

	rec := doJSON(t, h, http.MethodPost, "/api/v1/analyze", AnalyzeRequest{Source: "x = 1\n"})
	if rec.Code != http.StatusGatewayTimeout {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, http.StatusGatewayTimeout, rec.Body.String())
	}

	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Code != "analysis_timeout" {
		t.Errorf("code = %q, want analysis_timeout", resp.Code)
	}
}
