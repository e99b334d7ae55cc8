package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned when a history record does not exist
var ErrNotFound = errors.New("history record not found")

// Record represents one stored analysis run
type Record struct {
	ID            string    `json:"id"`
	Timestamp     time.Time `json:"timestamp"`
	Source        string    `json:"source"`
	TokenCount    int       `json:"token_count"`
	LexicalErrors int       `json:"lexical_errors"`
	SyntaxErrors  int       `json:"syntax_errors"`
	HasErrors     bool      `json:"has_errors"`
	DurationMS    float64   `json:"duration_ms"`

	// Result holds the full analysis response as JSON, kept opaque so the
	// store does not depend on the response shape
	Result json.RawMessage `json:"result,omitempty"`
}

// Filter defines criteria for listing history records
type Filter struct {
	OnlyErrors bool
	Since      time.Time
	Until      time.Time
	Limit      int
	Offset     int
}

// HistoryStore defines the interface for analysis history persistence
type HistoryStore interface {
	Save(ctx context.Context, record *Record) error
	List(ctx context.Context, filter Filter) ([]*Record, error)
	Get(ctx context.Context, id string) (*Record, error)
	Stats(ctx context.Context) (map[string]interface{}, error)

	// Maintenance
	Prune(ctx context.Context, olderThan time.Duration) (int64, error)
	Vacuum(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}

// SQLiteHistoryStore implements HistoryStore using SQLite
type SQLiteHistoryStore struct {
	db         *sql.DB
	mu         sync.RWMutex
	maxEntries int
}

// SQLiteConfig holds configuration for the SQLite store
type SQLiteConfig struct {
	Path string

	// MaxEntries caps the number of stored records; the oldest entries
	// beyond the cap are dropped on Save. Zero means unbounded.
	MaxEntries int
}

// DefaultConfig returns default configuration
func DefaultConfig() SQLiteConfig {
	return SQLiteConfig{
		Path:       "./data/history.db",
		MaxEntries: 10000,
	}
}

// NewSQLiteHistoryStore creates a new SQLite-based history store
func NewSQLiteHistoryStore(cfg SQLiteConfig) (*SQLiteHistoryStore, error) {
	dir := filepath.Dir(cfg.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	// WAL keeps readers unblocked during writes
	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_synchronous=NORMAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &SQLiteHistoryStore{db: db, maxEntries: cfg.MaxEntries}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates the necessary tables
func (s *SQLiteHistoryStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS analyses (
		id TEXT PRIMARY KEY,
		timestamp DATETIME NOT NULL,
		source TEXT NOT NULL,
		token_count INTEGER NOT NULL,
		lexical_errors INTEGER NOT NULL,
		syntax_errors INTEGER NOT NULL,
		has_errors INTEGER NOT NULL,
		duration_ms REAL NOT NULL,
		result TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_analyses_timestamp ON analyses(timestamp DESC);
	CREATE INDEX IF NOT EXISTS idx_analyses_has_errors ON analyses(has_errors);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Save stores a new analysis record
func (s *SQLiteHistoryStore) Save(ctx context.Context, record *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now()
	}

	hasErrors := 0
	if record.HasErrors {
		hasErrors = 1
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO analyses (id, timestamp, source, token_count, lexical_errors, syntax_errors, has_errors, duration_ms, result)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, record.ID, record.Timestamp, record.Source, record.TokenCount,
		record.LexicalErrors, record.SyntaxErrors, hasErrors, record.DurationMS, string(record.Result))

	if err != nil {
		return fmt.Errorf("failed to insert history record: %w", err)
	}

	if s.maxEntries > 0 {
		// Drop the oldest entries past the cap
		_, err = s.db.ExecContext(ctx, `
			DELETE FROM analyses WHERE id IN (
				SELECT id FROM analyses ORDER BY timestamp DESC LIMIT -1 OFFSET ?
			)
		`, s.maxEntries)
		if err != nil {
			return fmt.Errorf("failed to enforce history cap: %w", err)
		}
	}

	return nil
}

// List retrieves records based on filter criteria, newest first
func (s *SQLiteHistoryStore) List(ctx context.Context, filter Filter) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT id, timestamp, source, token_count, lexical_errors, syntax_errors, has_errors, duration_ms FROM analyses WHERE 1=1`
	var args []interface{}

	if filter.OnlyErrors {
		query += " AND has_errors = 1"
	}
	if !filter.Since.IsZero() {
		query += " AND timestamp >= ?"
		args = append(args, filter.Since)
	}
	if !filter.Until.IsZero() {
		query += " AND timestamp <= ?"
		args = append(args, filter.Until)
	}

	query += " ORDER BY timestamp DESC"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		query += " OFFSET ?"
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		record, err := scanRecord(rows, false)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	return records, rows.Err()
}

// Get retrieves a single record with its full result payload
func (s *SQLiteHistoryStore) Get(ctx context.Context, id string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, timestamp, source, token_count, lexical_errors, syntax_errors, has_errors, duration_ms, result
		FROM analyses WHERE id = ?
	`, id)

	record, err := scanRecord(row, true)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return record, nil
}

// scanner covers both *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(sc scanner, withResult bool) (*Record, error) {
	var record Record
	var hasErrors int
	var result sql.NullString

	dest := []interface{}{
		&record.ID, &record.Timestamp, &record.Source, &record.TokenCount,
		&record.LexicalErrors, &record.SyntaxErrors, &hasErrors, &record.DurationMS,
	}
	if withResult {
		dest = append(dest, &result)
	}

	if err := sc.Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan history record: %w", err)
	}

	record.HasErrors = hasErrors != 0
	if result.Valid && result.String != "" {
		record.Result = json.RawMessage(result.String)
	}

	return &record, nil
}

// Stats returns aggregate history statistics
func (s *SQLiteHistoryStore) Stats(ctx context.Context) (map[string]interface{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := make(map[string]interface{})

	var total, failed int64
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM analyses`).Scan(&total)
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM analyses WHERE has_errors = 1`).Scan(&failed)
	stats["total_analyses"] = total
	stats["failed_analyses"] = failed

	var lastEntry sql.NullTime
	s.db.QueryRowContext(ctx, `SELECT MAX(timestamp) FROM analyses`).Scan(&lastEntry)
	if lastEntry.Valid {
		stats["last_analysis"] = lastEntry.Time
	}

	return stats, nil
}

// Prune removes records older than the specified duration
func (s *SQLiteHistoryStore) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-olderThan)

	result, err := s.db.ExecContext(ctx, `DELETE FROM analyses WHERE timestamp < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune history: %w", err)
	}
	deleted, _ := result.RowsAffected()

	return deleted, nil
}

// Vacuum optimizes the database
func (s *SQLiteHistoryStore) Vacuum(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `VACUUM`)
	return err
}

// Ping verifies the database connection
func (s *SQLiteHistoryStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection
func (s *SQLiteHistoryStore) Close() error {
	return s.db.Close()
}

// MemoryHistoryStore is an in-memory implementation for testing
type MemoryHistoryStore struct {
	mu      sync.RWMutex
	records []*Record
}

// NewMemoryHistoryStore creates a new in-memory history store
func NewMemoryHistoryStore() *MemoryHistoryStore {
	return &MemoryHistoryStore{
		records: make([]*Record, 0),
	}
}

// Save stores a new analysis record
func (s *MemoryHistoryStore) Save(ctx context.Context, record *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now()
	}

	s.records = append(s.records, record)
	return nil
}

// List retrieves records based on filter criteria, newest first
func (s *MemoryHistoryStore) List(ctx context.Context, filter Filter) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []*Record
	for i := len(s.records) - 1; i >= 0; i-- {
		record := s.records[i]
		if filter.OnlyErrors && !record.HasErrors {
			continue
		}
		if !filter.Since.IsZero() && record.Timestamp.Before(filter.Since) {
			continue
		}
		if !filter.Until.IsZero() && record.Timestamp.After(filter.Until) {
			continue
		}
		results = append(results, record)
	}

	if filter.Offset > 0 {
		if filter.Offset >= len(results) {
			return nil, nil
		}
		results = results[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(results) {
		results = results[:filter.Limit]
	}

	return results, nil
}

// Get retrieves a single record by ID
func (s *MemoryHistoryStore) Get(ctx context.Context, id string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, record := range s.records {
		if record.ID == id {
			return record, nil
		}
	}
	return nil, ErrNotFound
}

// Stats returns aggregate history statistics
func (s *MemoryHistoryStore) Stats(ctx context.Context) (map[string]interface{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var failed int64
	for _, record := range s.records {
		if record.HasErrors {
			failed++
		}
	}

	return map[string]interface{}{
		"total_analyses":  int64(len(s.records)),
		"failed_analyses": failed,
	}, nil
}

// Prune removes records older than the specified duration
func (s *MemoryHistoryStore) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-olderThan)
	var deleted int64

	kept := make([]*Record, 0, len(s.records))
	for _, record := range s.records {
		if record.Timestamp.After(cutoff) {
			kept = append(kept, record)
		} else {
			deleted++
		}
	}
	s.records = kept

	return deleted, nil
}

// Vacuum is a no-op for the memory store
func (s *MemoryHistoryStore) Vacuum(ctx context.Context) error {
	return nil
}

// Ping is a no-op for the memory store
func (s *MemoryHistoryStore) Ping(ctx context.Context) error {
	return nil
}

// Close is a no-op for the memory store
func (s *MemoryHistoryStore) Close() error {
	return nil
}
