// Package memory provides an in-memory implementation of the storage KV interface.
package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/coremem/coremem/pkg/storage"
)

// MemoryStorage implements storage.KV using an in-memory map.
type MemoryStorage struct {
	mu     sync.RWMutex
	data   map[string][]byte
	closed bool
}

// NewMemoryStorage creates a new in-memory storage instance.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		data: make(map[string][]byte),
	}
}

// Get returns a copy of the value stored under key.
func (m *MemoryStorage) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, errClosed()
	}
	value, exists := m.data[key]
	if !exists {
		return nil, &storage.NotFoundError{Key: key}
	}
	return append([]byte{}, value...), nil
}

// Set stores a copy of value under key.
func (m *MemoryStorage) Set(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return errClosed()
	}
	m.data[key] = append([]byte{}, value...)
	return nil
}

// Delete removes key.
func (m *MemoryStorage) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return errClosed()
	}
	delete(m.data, key)
	return nil
}

// Ping fails once the storage has been closed.
func (m *MemoryStorage) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return errClosed()
	}
	return nil
}

// Close drops all data.
func (m *MemoryStorage) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.data = make(map[string][]byte)
	return nil
}

func errClosed() error {
	return &storage.StorageUnavailableError{Cause: errors.New("memory storage is closed")}
}
