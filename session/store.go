// Package session keeps finished results for a bounded time, keyed by
// session ID.
package session

import (
	"errors"
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

// ErrInvalidConfig is returned for a non-positive TTL or capacity.
var ErrInvalidConfig = errors.New("session: ttl and capacity must be positive")

// Config bounds the store.
type Config struct {
	TTL      time.Duration `mapstructure:"ttl"`
	Capacity int64         `mapstructure:"capacity"`
}

// DefaultConfig keeps up to 1000 results for 30 minutes.
func DefaultConfig() Config {
	return Config{TTL: 30 * time.Minute, Capacity: 1000}
}

// Store is a TTL and capacity bounded cache. Every entry costs 1, so
// Capacity is the maximum number of entries. It is safe for concurrent use.
type Store[V any] struct {
	cache *ristretto.Cache[string, V]
	ttl   time.Duration
}

// New returns an empty store bounded by cfg.
func New[V any](cfg Config) (*Store[V], error) {
	if cfg.TTL <= 0 || cfg.Capacity <= 0 {
		return nil, ErrInvalidConfig
	}
	cache, err := ristretto.NewCache(&ristretto.Config[string, V]{
		NumCounters:        cfg.Capacity * 10,
		MaxCost:            cfg.Capacity,
		BufferItems:        64,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, err
	}
	return &Store[V]{cache: cache, ttl: cfg.TTL}, nil
}

// Put stores v under id. It reports false when the cache's admission
// policy dropped the entry. The entry is visible to Get on return.
func (s *Store[V]) Put(id string, v V) bool {
	ok := s.cache.SetWithTTL(id, v, 1, s.ttl)
	s.cache.Wait()
	return ok
}

// Get returns the entry stored under id, if it has not expired or been
// evicted.
func (s *Store[V]) Get(id string) (V, bool) {
	return s.cache.Get(id)
}

// Delete removes the entry stored under id.
func (s *Store[V]) Delete(id string) {
	s.cache.Del(id)
}

// Close stops the cache's background goroutines.
func (s *Store[V]) Close() {
	s.cache.Close()
}
