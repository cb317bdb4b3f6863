// ============================================================================
// teleconsult - Patient-side telemedicine consultation client
// ============================================================================
//
// Package:     prefs
// Description: Preference blob storage backends
// License:     MIT
// ============================================================================

package prefs

import (
	"os"
	"path/filepath"
	"sync"
)

// Storage reads and writes the JSON-encoded preference blob
type Storage interface {
	// Read returns the stored blob, or nil if nothing is stored yet
	Read() ([]byte, error)

	// Write replaces the stored blob
	Write(data []byte) error
}

// FileStorage persists the blob as a file
type FileStorage struct {
	path string
}

// NewFileStorage creates a file-backed storage at path
func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

// Read returns the file contents, or nil if the file does not exist
func (f *FileStorage) Read() ([]byte, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return data, nil
}

// Write replaces the file, creating parent directories as needed
func (f *FileStorage) Write(data []byte) error {
	if dir := filepath.Dir(f.path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(f.path, data, 0644)
}

// MemoryStorage keeps the blob in memory, for tests and ephemeral sessions
type MemoryStorage struct {
	mu   sync.Mutex
	data []byte
}

// NewMemoryStorage creates an empty in-memory storage
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

// Read returns the stored blob
func (m *MemoryStorage) Read() ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		return nil, nil
	}
	out := make([]byte, len(m.data))
	copy(out, m.data)
	return out, nil
}

// Write replaces the stored blob
func (m *MemoryStorage) Write(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make([]byte, len(data))
	copy(m.data, data)
	return nil
}
