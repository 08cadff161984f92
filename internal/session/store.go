// Package session keeps per-operator console state keyed by session id.
package session

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Config bounds a Store.
type Config struct {
	// TTL evicts entries idle for longer. Zero disables expiry.
	TTL time.Duration
	// MaxEntries caps the store; the least recently used entry is evicted
	// first. Zero means unbounded.
	MaxEntries int
}

// Store lazily creates one S per session id.
type Store[S any] struct {
	factory func(id string) S

	// mu makes get-or-create atomic; the cache locks on its own as well.
	mu      sync.Mutex
	entries *expirable.LRU[string, S]
}

// NewStore creates a Store that builds missing entries with factory.
func NewStore[S any](cfg Config, factory func(id string) S) *Store[S] {
	if factory == nil {
		panic("session.NewStore: factory must not be nil")
	}
	return &Store[S]{
		factory: factory,
		entries: expirable.NewLRU[string, S](max(cfg.MaxEntries, 0), nil, cfg.TTL),
	}
}

// Get returns the entry for id, creating it if needed. Every call restarts
// the entry's idle timer.
func (s *Store[S]) Get(id string) S {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.entries.Get(id)
	if !ok {
		v = s.factory(id)
	}
	s.entries.Add(id, v)
	return v
}

// Delete drops the entry for id.
func (s *Store[S]) Delete(id string) {
	s.entries.Remove(id)
}

// Len returns the number of entries held, including expired ones not yet
// swept.
func (s *Store[S]) Len() int {
	return s.entries.Len()
}
