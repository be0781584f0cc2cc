// Package files persists the portal's server-side collections as flat JSON documents.
package files

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// Collection names a JSON document under the data directory.
type Collection string

const (
	Users      Collection = "users"
	Courses    Collection = "courses"
	Texts      Collection = "texts"
	SchoolInfo Collection = "school-info"
	Config     Collection = "config"
	Contacts   Collection = "contacts"
)

// AllCollections lists every collection the server owns.
var AllCollections = []Collection{Users, Courses, Texts, SchoolInfo, Config, Contacts}

// ErrNotFound is returned by Read when the collection has never been written.
var ErrNotFound = errors.New("collection not found")

// RecordStore reads and replaces whole collections.
type RecordStore interface {
	Read(c Collection, v any) error
	Write(c Collection, v any) error
	Exists(c Collection) bool
}

// JSONStore keeps one pretty-printed JSON file per collection.
type JSONStore struct {
	dir string
	mu  sync.RWMutex
}

// NewJSONStore creates dir if needed.
func NewJSONStore(dir string) (*JSONStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}
	return &JSONStore{dir: dir}, nil
}

// Dir returns the data directory.
func (s *JSONStore) Dir() string { return s.dir }

func (s *JSONStore) path(c Collection) string {
	return filepath.Join(s.dir, string(c)+".json")
}

// Read decodes the collection into v.
func (s *JSONStore) Read(c Collection, v any) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path(c))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%s: %w", c, ErrNotFound)
		}
		return fmt.Errorf("reading %s: %w", c, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding %s: %w", c, err)
	}
	return nil
}

// Write replaces the collection with v. The file is swapped in with a rename
// so a concurrent reader sees either the old or the new document.
func (s *JSONStore) Write(c Collection, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", c, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.dir, "."+string(c)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("writing %s: %w", c, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", c, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", c, err)
	}
	if err := os.Rename(tmpName, s.path(c)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing %s: %w", c, err)
	}
	return nil
}

// Exists reports whether the collection file is present.
func (s *JSONStore) Exists(c Collection) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, err := os.Stat(s.path(c))
	return err == nil
}

// MemoryStore keeps encoded collections in memory. Values round-trip through
// JSON so callers observe the same decoding rules as JSONStore.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[Collection][]byte

	// FailWrites makes every Write fail; used to exercise persistence errors.
	FailWrites bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[Collection][]byte)}
}

func (s *MemoryStore) Read(c Collection, v any) error {
	s.mu.RLock()
	data, ok := s.docs[c]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%s: %w", c, ErrNotFound)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding %s: %w", c, err)
	}
	return nil
}

func (s *MemoryStore) Write(c Collection, v any) error {
	if s.FailWrites {
		return fmt.Errorf("writing %s: store is read-only", c)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", c, err)
	}
	s.mu.Lock()
	s.docs[c] = data
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Exists(c Collection) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.docs[c]
	return ok
}

// PutRaw stores raw bytes for c, bypassing encoding.
func (s *MemoryStore) PutRaw(c Collection, data []byte) {
	s.mu.Lock()
	s.docs[c] = append([]byte(nil), data...)
	s.mu.Unlock()
}
