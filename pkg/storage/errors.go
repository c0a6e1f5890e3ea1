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

import "errors"

var (
	// ErrClosed is returned when using a closed backend
	ErrClosed = errors.New("storage: closed")

	// ErrNotFound is returned when a key is not present
	ErrNotFound = errors.New("storage: not found")

	// ErrAlreadyExists is returned by exclusive puts on an existing key
	ErrAlreadyExists = errors.New("storage: already exists")

	// ErrInvalidKey is returned for empty keys, absolute paths and path
	// traversal attempts
	ErrInvalidKey = errors.New("storage: invalid key")
)
