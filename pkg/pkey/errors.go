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

package pkey

import "errors"

var (
	// ErrUnknownAlgorithm is returned when an algorithm identifier or name
	// is not in the registry
	ErrUnknownAlgorithm = errors.New("pkey: unknown algorithm")

	// ErrAlreadyRegistered is returned when a different descriptor already
	// owns the identifier or name being registered
	ErrAlreadyRegistered = errors.New("pkey: algorithm already registered")

	// ErrInvalidDescriptor is returned for descriptors with missing fields
	// or non-positive lengths
	ErrInvalidDescriptor = errors.New("pkey: invalid algorithm descriptor")

	// ErrInvalidState indicates lifecycle misuse, such as keygen on a
	// populated or released context
	ErrInvalidState = errors.New("pkey: invalid key context state")

	// ErrKeygenFailed is returned when the primitive fails to produce a key pair
	ErrKeygenFailed = errors.New("pkey: key generation failed")

	// ErrMissingSecret is returned when exporting a context without a secret key
	ErrMissingSecret = errors.New("pkey: secret key not present")

	// ErrMissingPublic is returned when exporting a context without a public key
	ErrMissingPublic = errors.New("pkey: public key not present")

	// ErrLengthMismatch is returned when key material does not match the
	// lengths declared by its algorithm
	ErrLengthMismatch = errors.New("pkey: key length mismatch")

	// ErrKeyPairMismatch is returned when a decoded public key does not
	// belong to the decoded secret key
	ErrKeyPairMismatch = errors.New("pkey: public key does not match secret key")

	// ErrMalformedRecord is returned when record bytes cannot be parsed
	ErrMalformedRecord = errors.New("pkey: malformed key record")

	// ErrAlgorithmMismatch is returned when a context or record bound to one
	// algorithm is handed to another algorithm's method table
	ErrAlgorithmMismatch = errors.New("pkey: algorithm mismatch")

	// ErrNotSigningCapable is returned when signing with a context that has
	// no secret key
	ErrNotSigningCapable = errors.New("pkey: key context cannot sign")

	// ErrNotVerifyingCapable is returned when verifying with a context that
	// has no public key
	ErrNotVerifyingCapable = errors.New("pkey: key context cannot verify")

	// ErrBufferSizeMismatch is returned when the signature buffer length is
	// not the algorithm's maximum signature length
	ErrBufferSizeMismatch = errors.New("pkey: signature buffer size mismatch")

	// ErrSignatureFailed is returned when the primitive fails to sign.
	// Retrying with the same inputs fails the same way.
	ErrSignatureFailed = errors.New("pkey: signature operation failed")

	// ErrVerify is returned for malformed verification input
	ErrVerify = errors.New("pkey: verification error")

	// ErrUnsupportedDigest is returned for digests outside the allow-list
	ErrUnsupportedDigest = errors.New("pkey: unsupported digest")
)

// errorType maps an error to the short identifier used in metrics labels
func errorType(err error) string {
	switch {
	case errors.Is(err, ErrUnknownAlgorithm):
		return "unknown_algorithm"
	case errors.Is(err, ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, ErrKeygenFailed):
		return "keygen_failed"
	case errors.Is(err, ErrMissingSecret):
		return "missing_secret"
	case errors.Is(err, ErrMissingPublic):
		return "missing_public"
	case errors.Is(err, ErrLengthMismatch):
		return "length_mismatch"
	case errors.Is(err, ErrKeyPairMismatch):
		return "key_pair_mismatch"
	case errors.Is(err, ErrMalformedRecord):
		return "malformed_record"
	case errors.Is(err, ErrAlgorithmMismatch):
		return "algorithm_mismatch"
	case errors.Is(err, ErrNotSigningCapable):
		return "not_signing_capable"
	case errors.Is(err, ErrNotVerifyingCapable):
		return "not_verifying_capable"
	case errors.Is(err, ErrBufferSizeMismatch):
		return "buffer_size_mismatch"
	case errors.Is(err, ErrSignatureFailed):
		return "signature_failed"
	case errors.Is(err, ErrVerify):
		return "verify_error"
	default:
		return "internal"
	}
}
