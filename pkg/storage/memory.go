// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-pqsig.
//
// go-pqsig is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

package storage

import (
	"sort"
	"strings"
	"sync"

	"github.com/jeremyhahn/go-pqsig/pkg/secure"
)

// MemoryBackend keeps values in a map. Values are zeroed when deleted,
// overwritten or when the backend is closed.
type MemoryBackend struct {
	mu     sync.RWMutex
	data   map[string][]byte
	closed bool
}

// NewMemory creates an empty in-memory backend
func NewMemory() *MemoryBackend {
	return &MemoryBackend{
		data: make(map[string][]byte),
	}
}

// Get retrieves a copy of the value for key
func (m *MemoryBackend) Get(key string) ([]byte, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrClosed
	}
	value, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return secure.Clone(value), nil
}

// Put stores a copy of value under key
func (m *MemoryBackend) Put(key string, value []byte, opts *Options) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	old, exists := m.data[key]
	if exists && opts != nil && opts.Exclusive {
		return ErrAlreadyExists
	}
	secure.ZeroBytes(old)
	m.data[key] = secure.Clone(value)
	return nil
}

// Delete removes key
func (m *MemoryBackend) Delete(key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	value, ok := m.data[key]
	if !ok {
		return ErrNotFound
	}
	secure.ZeroBytes(value)
	delete(m.data, key)
	return nil
}

// List returns the keys with the given prefix in sorted order
func (m *MemoryBackend) List(prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrClosed
	}
	keys := make([]string, 0, len(m.data))
	for key := range m.data {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Exists reports whether key is stored
func (m *MemoryBackend) Exists(key string) (bool, error) {
	if err := ValidateKey(key); err != nil {
		return false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return false, ErrClosed
	}
	_, ok := m.data[key]
	return ok, nil
}

// Close zeroes and drops every value
func (m *MemoryBackend) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}
	for _, value := range m.data {
		secure.ZeroBytes(value)
	}
	m.data = nil
	m.closed = true
	return nil
}
