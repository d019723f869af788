// Package filestore persists client state for the terminal client in a single
// JSON file under the user's config directory.
package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/flowstate/flowstate-dashboard/internal/ports"
)

// Ensure compile-time conformance to ports.
var _ ports.Storage = (*Store)(nil)

const (
	fileMode = 0o600
	dirMode  = 0o700
)

type record struct {
	Value     string     `json:"value"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// Store is a ports.Storage backed by a JSON file. Every operation re-reads the
// file so separate CLI invocations observe each other's writes.
type Store struct {
	path string
	mu   sync.Mutex
	now  func() time.Time
}

// DefaultPath returns $XDG_CONFIG_HOME/flowstate/state.json (or the platform equivalent).
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(dir, "flowstate", "state.json"), nil
}

// New creates a Store at path. An empty path uses DefaultPath.
func New(path string) (*Store, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	return &Store{path: path, now: time.Now}, nil
}

// Path returns the backing file location.
func (s *Store) Path() string { return s.path }

func (s *Store) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return "", false, err
	}
	r, ok := records[key]
	if !ok || s.expired(r) {
		return "", false, nil
	}
	return r.Value, true, nil
}

func (s *Store) Set(_ context.Context, key, value string, ttl time.Duration) error {
	if key == "" {
		return errors.New("storage key cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return err
	}
	r := record{Value: value}
	if ttl > 0 {
		exp := s.now().Add(ttl).UTC()
		r.ExpiresAt = &exp
	}
	records[key] = r
	return s.save(records)
}

func (s *Store) Delete(_ context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return err
	}
	for _, k := range keys {
		delete(records, k)
	}
	return s.save(records)
}

func (s *Store) expired(r record) bool {
	return r.ExpiresAt != nil && !s.now().Before(*r.ExpiresAt)
}

func (s *Store) load() (map[string]record, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return make(map[string]record), nil
		}
		return nil, fmt.Errorf("read state file: %w", err)
	}

	records := make(map[string]record)
	if len(data) == 0 {
		return records, nil
	}
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode state file %s: %w", s.path, err)
	}
	for k, r := range records {
		if s.expired(r) {
			delete(records, k)
		}
	}
	return records, nil
}

// save writes to a temp file in the same directory and renames it into place.
func (s *Store) save(records map[string]record) (err error) {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state file: %w", err)
	}

	dir := filepath.Dir(s.path)
	if mkErr := os.MkdirAll(dir, dirMode); mkErr != nil {
		return fmt.Errorf("create state dir: %w", mkErr)
	}

	tmp, err := os.CreateTemp(dir, ".state-*.json")
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}
	defer func() {
		if err != nil {
			err = errors.Join(err, os.Remove(tmp.Name()))
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return errors.Join(fmt.Errorf("write state file: %w", err), tmp.Close())
	}
	if err = tmp.Chmod(fileMode); err != nil {
		return errors.Join(fmt.Errorf("chmod state file: %w", err), tmp.Close())
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close state file: %w", err)
	}
	if err = os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace state file: %w", err)
	}
	return nil
}
