package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/AnderBEz/thuCompiler/internal/analyzer/ast"
	"github.com/AnderBEz/thuCompiler/internal/analyzer/lexer"
	"github.com/AnderBEz/thuCompiler/internal/analyzer/parser"
	"github.com/AnderBEz/thuCompiler/internal/analyzer/store"
	"github.com/AnderBEz/thuCompiler/internal/analyzer/token"
	"github.com/AnderBEz/thuCompiler/pkg/core/cache"
	"github.com/AnderBEz/thuCompiler/pkg/core/logging"
)

// DefaultMaxSourceSize bounds accepted source text when no limit is configured
const DefaultMaxSourceSize = 1 << 20 // 1 MiB

// Result is the full outcome of analyzing one source text. Field names are
// wire contract for the HTTP and WebSocket surfaces.
type Result struct {
	Tokens        []token.Token      `json:"tokens"`
	AST           *ast.Node          `json:"ast"`
	LexicalErrors []token.Diagnostic `json:"lexical_errors"`
	SyntaxErrors  []token.Diagnostic `json:"syntax_errors"`
	TokenCount    int                `json:"token_count"`
	ErrorCount    int                `json:"error_count"`
	HasErrors     bool               `json:"has_errors"`
}

// TokenizeResult carries the scan outcome without parsing
type TokenizeResult struct {
	Tokens        []token.Token      `json:"tokens"`
	LexicalErrors []token.Diagnostic `json:"lexical_errors"`
	TokenCount    int                `json:"token_count"`
	ErrorCount    int                `json:"error_count"`
	HasErrors     bool               `json:"has_errors"`
}

// Service orchestrates the scanner and parser and records history
type Service struct {
	logger        *logging.Logger
	parser        *parser.Parser
	history       store.HistoryStore
	results       *cache.ResultCache
	maxSourceSize int
}

// Config holds service configuration
type Config struct {
	// History is optional; nil disables analysis history
	History store.HistoryStore

	// MaxSourceSize caps accepted source length in bytes
	MaxSourceSize int

	// CacheResults enables the content-addressed result cache. A cache
	// hit skips re-analysis and does not append a history entry.
	CacheResults bool
	CacheTTL     time.Duration

	Logger *logging.Logger
}

// NewService creates a new analysis service
func NewService(cfg Config) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.New("analyzer")
	}

	maxSize := cfg.MaxSourceSize
	if maxSize <= 0 {
		maxSize = DefaultMaxSourceSize
	}

	var results *cache.ResultCache
	if cfg.CacheResults {
		cacheCfg := cache.DefaultResultConfig()
		if cfg.CacheTTL > 0 {
			cacheCfg.TTL = cfg.CacheTTL
		}
		results = cache.NewResultCache(cacheCfg)
	}

	return &Service{
		logger:        logger,
		parser:        parser.New(parser.Options{Logger: logger}),
		history:       cfg.History,
		results:       results,
		maxSourceSize: maxSize,
	}
}

// Analyze scans and parses the source text. Diagnostics never fail the
// call; the returned error covers rejected input and infrastructure only.
func (s *Service) Analyze(ctx context.Context, source string) (*Result, error) {
	if err := s.checkSource(ctx, source); err != nil {
		return nil, err
	}

	if s.results != nil {
		if cached, ok := s.results.Get(source); ok {
			return cached.(*Result), nil
		}
	}

	start := time.Now()

	tokens, errorTokens := lexer.Tokenize(source)
	tree, syntaxErrors := s.parser.Parse(tokens)

	result := &Result{
		Tokens:        tokens,
		AST:           tree,
		LexicalErrors: diagnostics(errorTokens),
		SyntaxErrors:  syntaxErrors,
		TokenCount:    len(tokens),
	}
	result.ErrorCount = len(result.LexicalErrors) + len(result.SyntaxErrors)
	result.HasErrors = result.ErrorCount > 0

	duration := time.Since(start)
	s.logger.Info("analysis complete",
		"source_bytes", len(source),
		"tokens", result.TokenCount,
		"lexical_errors", len(result.LexicalErrors),
		"syntax_errors", len(result.SyntaxErrors),
		"duration", duration,
	)

	s.saveHistory(ctx, source, result, duration)

	if s.results != nil {
		s.results.Set(source, result)
	}

	return result, nil
}

// Tokenize scans the source without parsing
func (s *Service) Tokenize(ctx context.Context, source string) (*TokenizeResult, error) {
	if err := s.checkSource(ctx, source); err != nil {
		return nil, err
	}

	tokens, errorTokens := lexer.Tokenize(source)

	result := &TokenizeResult{
		Tokens:        tokens,
		LexicalErrors: diagnostics(errorTokens),
		TokenCount:    len(tokens),
	}
	result.ErrorCount = len(result.LexicalErrors)
	result.HasErrors = result.ErrorCount > 0

	return result, nil
}

// History lists stored analyses; empty without a configured store
func (s *Service) History(ctx context.Context, filter store.Filter) ([]*store.Record, error) {
	if s.history == nil {
		return nil, nil
	}
	return s.history.List(ctx, filter)
}

// HistoryEntry fetches a single stored analysis by ID
func (s *Service) HistoryEntry(ctx context.Context, id string) (*store.Record, error) {
	if s.history == nil {
		return nil, store.ErrNotFound
	}
	return s.history.Get(ctx, id)
}

// HistoryStats returns aggregate history statistics
func (s *Service) HistoryStats(ctx context.Context) (map[string]interface{}, error) {
	if s.history == nil {
		return map[string]interface{}{"enabled": false}, nil
	}
	return s.history.Stats(ctx)
}

// HistoryStore exposes the configured store, nil when history is disabled
func (s *Service) HistoryStore() store.HistoryStore {
	return s.history
}

// MaxSourceSize returns the configured source size limit in bytes
func (s *Service) MaxSourceSize() int {
	return s.maxSourceSize
}

// ErrSourceTooLarge marks input rejected for exceeding the size limit
type ErrSourceTooLarge struct {
	Size  int
	Limit int
}

func (e *ErrSourceTooLarge) Error() string {
	return fmt.Sprintf("source too large: %d bytes exceeds limit of %d", e.Size, e.Limit)
}

func (s *Service) checkSource(ctx context.Context, source string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(source) > s.maxSourceSize {
		return &ErrSourceTooLarge{Size: len(source), Limit: s.maxSourceSize}
	}
	return nil
}

func (s *Service) saveHistory(ctx context.Context, source string, result *Result, duration time.Duration) {
	if s.history == nil {
		return
	}

	payload, err := json.Marshal(result)
	if err != nil {
		s.logger.Warn("failed to encode history payload", "error", err)
		payload = nil
	}

	record := &store.Record{
		Source:        source,
		TokenCount:    result.TokenCount,
		LexicalErrors: len(result.LexicalErrors),
		SyntaxErrors:  len(result.SyntaxErrors),
		HasErrors:     result.HasErrors,
		DurationMS:    float64(duration.Nanoseconds()) / 1e6,
		Result:        payload,
	}

	// History is best effort; analysis results never depend on it
	if err := s.history.Save(ctx, record); err != nil {
		s.logger.Warn("failed to save history record", "error", err)
	}
}

// diagnostics converts error tokens into the shared diagnostic shape
func diagnostics(errorTokens []token.Token) []token.Diagnostic {
	out := make([]token.Diagnostic, 0, len(errorTokens))
	for _, tok := range errorTokens {
		out = append(out, tok.AsDiagnostic())
	}
	return out
}
