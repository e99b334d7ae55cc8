package store

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

// storeFactories lets every test run against both implementations
func storeFactories(t *testing.T) map[string]func(t *testing.T) HistoryStore {
	return map[string]func(t *testing.T) HistoryStore{
		"memory": func(t *testing.T) HistoryStore {
			return NewMemoryHistoryStore()
		},
		"sqlite": func(t *testing.T) HistoryStore {
			s, err := NewSQLiteHistoryStore(SQLiteConfig{
				Path: filepath.Join(t.TempDir(), "history.db"),
			})
			if err != nil {
				t.Fatalf("failed to open sqlite store: %v", err)
			}
			return s
		},
	}
}

func TestHistoryStore_SaveAndGet(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			s := factory(t)
			defer s.Close()
			ctx := context.Background()

			record := &Record{
				Source:        "x = 1",
				TokenCount:    4,
				LexicalErrors: 0,
				SyntaxErrors:  0,
				HasErrors:     false,
				DurationMS:    0.42,
				Result:        json.RawMessage(`{"token_count":4}`),
			}

			if err := s.Save(ctx, record); err != nil {
				t.Fatalf("Save() error = %v", err)
			}
			if record.ID == "" {
				t.Fatal("Save() did not assign an ID")
			}
			if record.Timestamp.IsZero() {
				t.Fatal("Save() did not stamp a timestamp")
			}

			got, err := s.Get(ctx, record.ID)
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if got.Source != "x = 1" || got.TokenCount != 4 {
				t.Errorf("Get() = %+v", got)
			}
			if len(got.Result) == 0 {
				t.Error("Get() lost the result payload")
			}
		})
	}
}

func TestHistoryStore_GetNotFound(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			s := factory(t)
			defer s.Close()

			_, err := s.Get(context.Background(), "no-such-id")
			if !errors.Is(err, ErrNotFound) {
				t.Errorf("Get() error = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestHistoryStore_ListFilters(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			s := factory(t)
			defer s.Close()
			ctx := context.Background()

			for i, hasErrors := range []bool{false, true, false, true, true} {
				record := &Record{
					Source:    "stmt",
					HasErrors: hasErrors,
					Timestamp: time.Now().Add(time.Duration(i) * time.Millisecond),
				}
				if hasErrors {
					record.SyntaxErrors = 1
				}
				if err := s.Save(ctx, record); err != nil {
					t.Fatalf("Save() error = %v", err)
				}
			}

			all, err := s.List(ctx, Filter{})
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if len(all) != 5 {
				t.Fatalf("List() = %d records, want 5", len(all))
			}

			// newest first
			for i := 1; i < len(all); i++ {
				if all[i].Timestamp.After(all[i-1].Timestamp) {
					t.Error("List() not ordered newest first")
				}
			}

			failed, err := s.List(ctx, Filter{OnlyErrors: true})
			if err != nil {
				t.Fatalf("List(OnlyErrors) error = %v", err)
			}
			if len(failed) != 3 {
				t.Errorf("List(OnlyErrors) = %d records, want 3", len(failed))
			}

			limited, err := s.List(ctx, Filter{Limit: 2})
			if err != nil {
				t.Fatalf("List(Limit) error = %v", err)
			}
			if len(limited) != 2 {
				t.Errorf("List(Limit: 2) = %d records, want 2", len(limited))
			}
		})
	}
}

func TestHistoryStore_Stats(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			s := factory(t)
			defer s.Close()
			ctx := context.Background()

			s.Save(ctx, &Record{Source: "a = 1"})
			s.Save(ctx, &Record{Source: "1 = a", HasErrors: true})

			stats, err := s.Stats(ctx)
			if err != nil {
				t.Fatalf("Stats() error = %v", err)
			}
			if stats["total_analyses"] != int64(2) {
				t.Errorf("total_analyses = %v, want 2", stats["total_analyses"])
			}
			if stats["failed_analyses"] != int64(1) {
				t.Errorf("failed_analyses = %v, want 1", stats["failed_analyses"])
			}
		})
	}
}

func TestHistoryStore_Prune(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			s := factory(t)
			defer s.Close()
			ctx := context.Background()

			s.Save(ctx, &Record{Source: "old", Timestamp: time.Now().Add(-48 * time.Hour)})
			s.Save(ctx, &Record{Source: "new"})

			deleted, err := s.Prune(ctx, 24*time.Hour)
			if err != nil {
				t.Fatalf("Prune() error = %v", err)
			}
			if deleted != 1 {
				t.Errorf("Prune() = %d, want 1", deleted)
			}

			remaining, _ := s.List(ctx, Filter{})
			if len(remaining) != 1 || remaining[0].Source != "new" {
				t.Errorf("remaining = %+v", remaining)
			}
		})
	}
}

func TestSQLiteHistoryStore_MaxEntries(t *testing.T) {
	s, err := NewSQLiteHistoryStore(SQLiteConfig{
		Path:       filepath.Join(t.TempDir(), "history.db"),
		MaxEntries: 3,
	})
	if err != nil {
		t.Fatalf("failed to open sqlite store: %v", err)
	}
	defer s.Close()
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		record := &Record{
			Source:     "stmt",
			TokenCount: i,
			Timestamp:  base.Add(time.Duration(i) * time.Minute),
		}
		if err := s.Save(ctx, record); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}

	all, err := s.List(ctx, Filter{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("List() = %d records, want 3 (cap)", len(all))
	}
	// Only the newest three survive
	for i, want := range []int{4, 3, 2} {
		if all[i].TokenCount != want {
			t.Errorf("record %d token_count = %d, want %d", i, all[i].TokenCount, want)
		}
	}
}

func TestHistoryStore_Ping(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			s := factory(t)
			defer s.Close()

			if err := s.Ping(context.Background()); err != nil {
				t.Errorf("Ping() error = %v", err)
			}
		})
	}
}
