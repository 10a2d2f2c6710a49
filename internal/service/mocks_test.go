package service

import (
	"context"
	"sync"

	"github.com/fjod/go_cart/cart-store/internal/storage"
)

type mockBlobStore struct {
	m      sync.RWMutex
	blobs  map[string][]byte
	getErr error
	setErr error
	sets   int
}

func newMockBlobStore() *mockBlobStore {
	return &mockBlobStore{blobs: make(map[string][]byte)}
}

func (m *mockBlobStore) Get(_ context.Context, key string) ([]byte, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.blobs[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return v, nil
}

func (m *mockBlobStore) Set(_ context.Context, key string, value []byte) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.sets++
	if m.setErr != nil {
		return m.setErr
	}
	m.blobs[key] = append([]byte(nil), value...)
	return nil
}

func (m *mockBlobStore) Remove(_ context.Context, key string) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	delete(m.blobs, key)
	return nil
}

func (m *mockBlobStore) Close() error {
	return nil
}

func (m *mockBlobStore) raw(key string) (string, bool) {
	m.m.RLock()
	defer m.m.RUnlock()
	v, ok := m.blobs[key]
	return string(v), ok
}

func (m *mockBlobStore) setCount() int {
	m.m.RLock()
	defer m.m.RUnlock()
	return m.sets
}

func (m *mockBlobStore) put(key, value string) {
	m.m.Lock()
	defer m.m.Unlock()
	m.blobs[key] = []byte(value)
}
