// Package memstore is an in-process ports.Storage for development and tests.
// State is lost on restart.
package memstore

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/flowstate/flowstate-dashboard/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.Storage         = (*Store)(nil)
	_ ports.StorageProvider = (*Provider)(nil)
)

type entry struct {
	value     string
	expiresAt time.Time // zero means no expiry
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// entries is an unguarded key set; callers hold the owning mutex.
type entries map[string]entry

func (m entries) get(key string, now time.Time) (string, bool) {
	e, ok := m[key]
	if !ok {
		return "", false
	}
	if e.expired(now) {
		delete(m, key)
		return "", false
	}
	return e.value, true
}

func (m entries) set(key, value string, ttl time.Duration, now time.Time) {
	e := entry{value: value}
	if ttl > 0 {
		e.expiresAt = now.Add(ttl)
	}
	m[key] = e
}

func (m entries) evictExpired(now time.Time) {
	for k, e := range m {
		if e.expired(now) {
			delete(m, k)
		}
	}
}

// Store is a mutex-guarded map with per-key expiry.
type Store struct {
	mu      sync.Mutex
	entries entries
	now     func() time.Time
}

// New creates an empty Store.
func New() *Store {
	return &Store{entries: make(entries), now: time.Now}
}

// WithClock overrides the time source. Intended for tests.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
	return s
}

func (s *Store) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.entries.get(key, s.now())
	return v, ok, nil
}

func (s *Store) Set(_ context.Context, key, value string, ttl time.Duration) error {
	if key == "" {
		return errStorageKeyEmpty
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries.set(key, value, ttl, s.now())
	return nil
}

func (s *Store) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, k := range keys {
		delete(s.entries, k)
	}
	return nil
}

// Len returns the number of stored keys, including expired ones not yet evicted.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

var errStorageKeyEmpty = errors.New("storage key cannot be empty")

// Provider keeps one key set per namespace. A namespace occupies memory only
// while it holds at least one live key: it is created on first Set and
// dropped once its last key is deleted or expires.
type Provider struct {
	mu     sync.Mutex
	spaces map[string]entries
	now    func() time.Time
}

// NewProvider creates an empty Provider.
func NewProvider() *Provider {
	return &Provider{spaces: make(map[string]entries), now: time.Now}
}

// WithClock overrides the time source for every namespace. Intended for tests.
func (p *Provider) WithClock(now func() time.Time) *Provider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.now = now
	return p
}

// Namespace returns a view of the key set for id. It allocates nothing in the
// provider until a key is written.
func (p *Provider) Namespace(id string) ports.Storage {
	return namespace{p: p, id: id}
}

// Len returns the number of namespaces currently holding keys.
func (p *Provider) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.spaces)
}

// dropIfEmpty must be called with p.mu held.
func (p *Provider) dropIfEmpty(id string) {
	if m, ok := p.spaces[id]; ok && len(m) == 0 {
		delete(p.spaces, id)
	}
}

type namespace struct {
	p  *Provider
	id string
}

func (n namespace) Get(_ context.Context, key string) (string, bool, error) {
	n.p.mu.Lock()
	defer n.p.mu.Unlock()

	m, ok := n.p.spaces[n.id]
	if !ok {
		return "", false, nil
	}
	v, ok := m.get(key, n.p.now())
	n.p.dropIfEmpty(n.id)
	return v, ok, nil
}

func (n namespace) Set(_ context.Context, key, value string, ttl time.Duration) error {
	if key == "" {
		return errStorageKeyEmpty
	}

	n.p.mu.Lock()
	defer n.p.mu.Unlock()

	now := n.p.now()
	m, ok := n.p.spaces[n.id]
	if !ok {
		// Namespaces abandoned with only expiring keys are reclaimed here.
		for id, other := range n.p.spaces {
			other.evictExpired(now)
			n.p.dropIfEmpty(id)
		}
		m = make(entries)
		n.p.spaces[n.id] = m
	}
	m.set(key, value, ttl, now)
	return nil
}

func (n namespace) Delete(_ context.Context, keys ...string) error {
	n.p.mu.Lock()
	defer n.p.mu.Unlock()

	m, ok := n.p.spaces[n.id]
	if !ok {
		return nil
	}
	for _, k := range keys {
		delete(m, k)
	}
	n.p.dropIfEmpty(n.id)
	return nil
}
