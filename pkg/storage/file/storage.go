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

// Package file provides a directory-backed implementation of storage.Backend.
// Values are written atomically through a temporary file and rename, or a
// hard link when the write must not replace an existing key.
package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/jeremyhahn/go-pqsig/pkg/storage"
)

const (
	// Default directory permissions (owner rwx only)
	defaultDirPerms = 0700

	// File permissions based on key prefix
	privateFilePerms = 0600 // private/* = owner rw only
	publicFilePerms  = 0644 // public/* = owner rw, others r
	defaultPerms     = 0600

	tempPattern = ".pqsig-*.tmp"
)

// FileStorage stores each key as a file below rootDir
type FileStorage struct {
	mu      sync.RWMutex
	rootDir string
	closed  bool
}

// New creates a FileStorage rooted at rootDir, creating the directory
// with 0700 permissions when missing
func New(rootDir string) (*FileStorage, error) {
	if rootDir == "" {
		return nil, fmt.Errorf("file storage: root directory cannot be empty")
	}
	abs, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, fmt.Errorf("file storage: failed to resolve root directory: %w", err)
	}
	if err := os.MkdirAll(abs, defaultDirPerms); err != nil {
		return nil, fmt.Errorf("file storage: failed to create root directory: %w", err)
	}
	return &FileStorage{rootDir: abs}, nil
}

// Root returns the absolute root directory
func (f *FileStorage) Root() string {
	return f.rootDir
}

// Get reads the file for key
func (f *FileStorage) Get(key string) ([]byte, error) {
	filePath, err := f.keyToPath(key)
	if err != nil {
		return nil, err
	}
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.closed {
		return nil, storage.ErrClosed
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("file storage: failed to read key %q: %w", key, err)
	}
	return data, nil
}

// Put writes value for key. File permissions are chosen by prefix:
//   - private/* = 0600
//   - public/* = 0644
//   - default = 0600
func (f *FileStorage) Put(key string, value []byte, opts *storage.Options) error {
	filePath, err := f.keyToPath(key)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return storage.ErrClosed
	}
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, defaultDirPerms); err != nil {
		return fmt.Errorf("file storage: failed to create directory for key %q: %w", key, err)
	}
	exclusive := opts != nil && opts.Exclusive
	return writeAtomic(dir, filePath, value, f.getFilePermissions(key, opts), exclusive)
}

// writeAtomic writes value to a temp file in dir and moves it into place.
// An exclusive write links the temp file to filePath, which fails if
// filePath exists, even when another process created it.
func writeAtomic(dir, filePath string, value []byte, perms fs.FileMode, exclusive bool) error {
	tmp, err := os.CreateTemp(dir, tempPattern)
	if err != nil {
		return fmt.Errorf("file storage: failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(value); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("file storage: failed to write temp file: %w", err)
	}
	if err := tmp.Chmod(perms); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("file storage: failed to set permissions: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("file storage: failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("file storage: failed to close temp file: %w", err)
	}
	if exclusive {
		defer cleanup()
		if err := os.Link(tmpName, filePath); err != nil {
			if errors.Is(err, fs.ErrExist) {
				return storage.ErrAlreadyExists
			}
			return fmt.Errorf("file storage: failed to link temp file: %w", err)
		}
		return nil
	}
	if err := os.Rename(tmpName, filePath); err != nil {
		cleanup()
		return fmt.Errorf("file storage: failed to rename temp file: %w", err)
	}
	return nil
}

// Delete removes the file for key
func (f *FileStorage) Delete(key string) error {
	filePath, err := f.keyToPath(key)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return storage.ErrClosed
	}
	if err := os.Remove(filePath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return storage.ErrNotFound
		}
		return fmt.Errorf("file storage: failed to delete key %q: %w", key, err)
	}
	return nil
}

// List returns all keys with the given prefix in sorted order.
// Temporary files left by interrupted writes are skipped.
func (f *FileStorage) List(prefix string) ([]string, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.closed {
		return nil, storage.ErrClosed
	}
	keys := make([]string, 0)
	err := filepath.WalkDir(f.rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		key, err := f.pathToKey(path)
		if err != nil {
			return err
		}
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("file storage: failed to list keys: %w", err)
	}
	sort.Strings(keys)
	return keys, nil
}

// Exists checks whether a file exists for key
func (f *FileStorage) Exists(key string) (bool, error) {
	filePath, err := f.keyToPath(key)
	if err != nil {
		return false, err
	}
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.closed {
		return false, storage.ErrClosed
	}
	if _, err := os.Stat(filePath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("file storage: failed to check key %q: %w", key, err)
	}
	return true, nil
}

// Close marks the backend closed. Files are left in place.
func (f *FileStorage) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *FileStorage) keyToPath(key string) (string, error) {
	if err := storage.ValidateKey(key); err != nil {
		return "", err
	}
	return filepath.Join(f.rootDir, filepath.FromSlash(key)), nil
}

func (f *FileStorage) pathToKey(path string) (string, error) {
	rel, err := filepath.Rel(f.rootDir, path)
	if err != nil {
		return "", fmt.Errorf("file storage: failed to convert path to key: %w", err)
	}
	return filepath.ToSlash(rel), nil
}

func (f *FileStorage) getFilePermissions(key string, opts *storage.Options) fs.FileMode {
	if opts != nil && opts.Permissions != 0 {
		return opts.Permissions
	}
	if strings.HasPrefix(key, storage.PrivatePrefix) {
		return privateFilePerms
	}
	if strings.HasPrefix(key, storage.PublicPrefix) {
		return publicFilePerms
	}
	return defaultPerms
}

var _ storage.Backend = (*FileStorage)(nil)
