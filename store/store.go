// Package store persists small JSON blobs under a data directory, one file
// per key. Missing or unreadable blobs are treated as absent so callers can
// fall back to their documented defaults.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// SettingsKey holds the user's enabled pitch classes as a label->bool map.
const SettingsKey = "settings"

type Store struct {
	dir string
}

func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("store: mkdir %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

// Get decodes the blob for key into v. It returns false when the key is
// missing or holds malformed JSON; callers must treat v as garbage then
// and fall back to their default.
func (s *Store) Get(key string, v any) bool {
	b, err := os.ReadFile(s.path(key))
	if err != nil {
		return false
	}
	return json.Unmarshal(b, v) == nil
}

// Put encodes v and writes it under key. The write goes through a temp file
// and rename so a crash never leaves a half-written blob behind.
func (s *Store) Put(key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("store: marshal %s: %w", key, err)
	}
	tmp, err := os.CreateTemp(s.dir, key+"-*.tmp")
	if err != nil {
		return fmt.Errorf("store: %w", err)
	}
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("store: write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("store: close %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), s.path(key)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("store: rename %s: %w", key, err)
	}
	return nil
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}
