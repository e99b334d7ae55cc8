// File: results.go
// Title: Content-Addressed Result Cache
// Description: Specializes the TTL cache for analysis results. Entries are
//              keyed by the SHA-256 of the source text, so identical inputs
//              hit regardless of how they were submitted.
// Author: AnderBEz
// Version: v0.1.0
// Created: 2026-08-16
// Modified: 2026-08-16
//
// Change History:
// - 2026-08-16 v0.1.0: Initial result cache

package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// ResultCache caches computed values by source content
type ResultCache struct {
	cache *Cache
}

// ResultConfig holds configuration for the result cache
type ResultConfig struct {
	MaxEntries int           // default: 1000
	TTL        time.Duration // default: 10 minutes
}

// DefaultResultConfig returns default result cache configuration
func DefaultResultConfig() ResultConfig {
	return ResultConfig{
		MaxEntries: 1000,
		TTL:        10 * time.Minute,
	}
}

// NewResultCache creates a new content-addressed result cache
func NewResultCache(cfg ResultConfig) *ResultCache {
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = 1000
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 10 * time.Minute
	}

	return &ResultCache{
		cache: New(Config{
			MaxItems: cfg.MaxEntries,
			TTL:      cfg.TTL,
		}),
	}
}

// Key derives the cache key for a source text
func Key(source string) string {
	sum := sha256.Sum256([]byte(source))
	return hex.EncodeToString(sum[:])
}

// Get retrieves the cached result for a source text
func (r *ResultCache) Get(source string) (interface{}, bool) {
	return r.cache.Get(Key(source))
}

// Set caches the result for a source text
func (r *ResultCache) Set(source string, result interface{}) {
	r.cache.Set(Key(source), result)
}

// Stats returns a snapshot of the cache counters
func (r *ResultCache) Stats() Stats {
	return r.cache.Stats()
}

// Close stops the underlying cleanup loop
func (r *ResultCache) Close() {
	r.cache.Close()
}
