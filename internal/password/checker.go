package password

import (
	"context"
	"time"

	"github.com/allegro/bigcache/v3"
)

type (
	// Checker verifies inputs against a configured Password. A single
	// Checker is shared by every request; construct one per test to keep
	// cache state isolated.
	Checker struct {
		cache *bigcache.BigCache
	}
)

// NewChecker builds a Checker with an empty verification cache.
func NewChecker() *Checker {
	// The cache maps a configured hash string to the plain text that
	// last verified against it, so with a single configured password it
	// holds at most one entry. Eviction only costs one extra argon2 run.
	cache, _ := bigcache.New(context.Background(), bigcache.DefaultConfig(12*time.Hour))
	return &Checker{cache: cache}
}

// Check reports whether input matches the configured password. For hashed
// passwords the argon2id derivation only runs on a cache miss; a hit is a
// constant-time comparison against the cached plain text.
func (c *Checker) Check(input string, configured Password) bool {
	if configured.hash == nil {
		return constantTimeEquals(input, configured.plain)
	}
	if cached, err := c.cache.Get(configured.hash.encoded); err == nil {
		return constantTimeEquals(input, string(cached))
	}
	if !configured.hash.verify(input) {
		return false
	}
	c.cache.Set(configured.hash.encoded, []byte(input))
	return true
}
