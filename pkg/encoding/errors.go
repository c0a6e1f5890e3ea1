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

package encoding

import "errors"

var (
	// ErrInvalidData is returned when data is nil, empty, or malformed
	ErrInvalidData = errors.New("encoding: invalid data")

	// ErrInvalidPEMEncoding is returned when PEM decoding fails
	ErrInvalidPEMEncoding = errors.New("encoding: invalid PEM encoding")

	// ErrUnexpectedBlockType is returned when a PEM block holds a different
	// kind of key than requested
	ErrUnexpectedBlockType = errors.New("encoding: unexpected PEM block type")

	// ErrInvalidFingerprint is returned when a fingerprint string does not
	// parse as a key fingerprint
	ErrInvalidFingerprint = errors.New("encoding: invalid fingerprint")
)
