// Package blob defines the attachment byte store consumed by ingestion and
// backup, plus a directory-backed implementation and an in-memory one for
// tests.
package blob

import (
	"fmt"
	"sync"

	"github.com/mkessler/ablage/internal/apperr"
)

// Store is ID-addressed binary storage for attachments.
type Store interface {
	// Put stores data under id, replacing any previous value.
	Put(id string, data []byte) error
	// Get returns the bytes stored under id, or apperr.ErrNotFound.
	Get(id string) ([]byte, error)
}

// NamedStore is implemented by stores that can keep the original filename
// of an attachment as metadata next to its bytes.
type NamedStore interface {
	Store
	SetFilename(id, name string) error
	Filename(id string) (string, error)
}

// MemStore is an in-memory Store, safe for concurrent use.
type MemStore struct {
	mu    sync.RWMutex
	data  map[string][]byte
	names map[string]string
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{data: map[string][]byte{}, names: map[string]string{}}
}

func (m *MemStore) Put(id string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	m.data[id] = cp
	return nil
}

func (m *MemStore) Get(id string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.data[id]
	if !ok {
		return nil, fmt.Errorf("blob: get %s: %w", id, apperr.ErrNotFound)
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, nil
}

func (m *MemStore) SetFilename(id, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.names[id] = name
	return nil
}

func (m *MemStore) Filename(id string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	name, ok := m.names[id]
	if !ok {
		return "", fmt.Errorf("blob: filename %s: %w", id, apperr.ErrNotFound)
	}
	return name, nil
}

// Delete removes an entry; absent IDs are a no-op. Used by tests to
// simulate attachments that went missing between ingest and backup.
func (m *MemStore) Delete(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, id)
	delete(m.names, id)
}
