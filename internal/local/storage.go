// Package local is the client-side fallback store: a key/value emulation of
// browser storage plus the user, course, enrollment and session records kept in it.
package local

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// Storage keys.
const (
	KeyUsers       = "sistema_usuarios"
	KeyCourses     = "sistema_cursos"
	KeyEnrollments = "meusCursos"
	KeySession     = "usuarioLogado"
)

// Storage is a string key/value store in the shape of the browser's
// localStorage and sessionStorage.
type Storage interface {
	GetItem(key string) (string, bool)
	SetItem(key, value string) error
	RemoveItem(key string) error
}

// MemoryStorage lives for the lifetime of the process.
type MemoryStorage struct {
	mu    sync.RWMutex
	items map[string]string
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{items: make(map[string]string)}
}

func (m *MemoryStorage) GetItem(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.items[key]
	return v, ok
}

func (m *MemoryStorage) SetItem(key, value string) error {
	m.mu.Lock()
	m.items[key] = value
	m.mu.Unlock()
	return nil
}

func (m *MemoryStorage) RemoveItem(key string) error {
	m.mu.Lock()
	delete(m.items, key)
	m.mu.Unlock()
	return nil
}

// FileStorage persists all items in one JSON object file.
type FileStorage struct {
	path string
	mu   sync.Mutex
}

// NewFileStorage uses path, creating its parent directory.
func NewFileStorage(path string) (*FileStorage, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("creating storage dir: %w", err)
	}
	return &FileStorage{path: path}, nil
}

func (f *FileStorage) load() (map[string]string, error) {
	items := map[string]string{}
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return items, nil
	}
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return items, nil
	}
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (f *FileStorage) store(items map[string]string) error {
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return err
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, f.path)
}

// GetItem returns false when the file is missing or unreadable.
func (f *FileStorage) GetItem(key string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	items, err := f.load()
	if err != nil {
		return "", false
	}
	v, ok := items[key]
	return v, ok
}

// SetItem rewrites the file. An unreadable file is replaced.
func (f *FileStorage) SetItem(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	items, err := f.load()
	if err != nil {
		items = map[string]string{}
	}
	items[key] = value
	if err := f.store(items); err != nil {
		return fmt.Errorf("saving %s: %w", key, err)
	}
	return nil
}

func (f *FileStorage) RemoveItem(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	items, err := f.load()
	if err != nil {
		return nil
	}
	if _, ok := items[key]; !ok {
		return nil
	}
	delete(items, key)
	if err := f.store(items); err != nil {
		return fmt.Errorf("removing %s: %w", key, err)
	}
	return nil
}

// getAll decodes the JSON array under key. Missing or unreadable values yield
// an empty slice.
func getAll[T any](s Storage, key string, logger *slog.Logger) []T {
	raw, ok := s.GetItem(key)
	if !ok || raw == "" {
		return []T{}
	}
	var out []T
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		logger.Warn("local collection unreadable", "key", key, "error", err)
		return []T{}
	}
	if out == nil {
		out = []T{}
	}
	return out
}

// saveAll replaces the JSON array under key.
func saveAll[T any](s Storage, key string, items []T) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	return s.SetItem(key, string(data))
}
