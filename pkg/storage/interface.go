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

// Package storage provides the key-value backends used to persist
// serialized keys. Memory and file implementations share one interface.
package storage

import (
	"io/fs"
)

// Backend is a thread-safe key-value store
type Backend interface {
	// Get returns a copy of the value stored under key, or ErrNotFound
	Get(key string) ([]byte, error)

	// Put stores value under key. Existing values are overwritten unless
	// opts.Exclusive is set, in which case ErrAlreadyExists is returned.
	Put(key string, value []byte, opts *Options) error

	// Delete removes key, or returns ErrNotFound
	Delete(key string) error

	// List returns the keys starting with prefix in sorted order
	List(prefix string) ([]string, error)

	// Exists reports whether key is present
	Exists(key string) (bool, error)

	// Close releases resources. Further calls return ErrClosed.
	Close() error
}

// Options tunes a Put
type Options struct {
	// Permissions overrides the file mode chosen by file backends
	Permissions fs.FileMode

	// Exclusive fails the Put if the key already exists
	Exclusive bool
}

// DefaultOptions returns owner-only permissions with overwrite allowed
func DefaultOptions() *Options {
	return &Options{
		Permissions: 0600,
	}
}
