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

import (
	"fmt"
	"time"

	"github.com/jeremyhahn/go-pqsig/pkg/metrics"
)

// Sign signs message with the secret key held by c and writes the
// signature into signature, returning its length. signature must be
// exactly MaxSignatureLen bytes: callers reserve fixed-size signature
// slots per algorithm, so any other size is a usage error. Primitive
// failures are reported as ErrSignatureFailed and are not retried.
func Sign(c *KeyContext, signature, message []byte) (n int, err error) {
	if c == nil || !c.tryRetain() {
		return 0, fmt.Errorf("%w: no key context", ErrNotSigningCapable)
	}
	defer c.Release()

	d := c.alg
	m := c.material.Load()
	if m == nil || m.secret == nil {
		return 0, fmt.Errorf("%w: %s context has no secret key", ErrNotSigningCapable, d.name)
	}
	if len(signature) != d.maxSignatureLen {
		return 0, fmt.Errorf("%w: %s needs %d bytes, got %d",
			ErrBufferSizeMismatch, d.name, d.maxSignatureLen, len(signature))
	}

	start := time.Now()
	defer func() { observe(metrics.OpSign, d.name, start, err) }()

	n, err = d.primitive.Sign(m.secret, message, signature)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrSignatureFailed, d.name, err)
	}
	if n <= 0 || n > d.maxSignatureLen {
		return 0, fmt.Errorf("%w: %s produced %d byte signature, max %d",
			ErrSignatureFailed, d.name, n, d.maxSignatureLen)
	}
	return n, nil
}

// SignMessage allocates a signature buffer, signs message and returns the
// signature trimmed to its length
func SignMessage(c *KeyContext, message []byte) ([]byte, error) {
	if c == nil {
		return nil, fmt.Errorf("%w: no key context", ErrNotSigningCapable)
	}
	sig := make([]byte, c.alg.maxSignatureLen)
	n, err := Sign(c, sig, message)
	if err != nil {
		return nil, err
	}
	return sig[:n:n], nil
}

// Verify reports whether signature is a valid signature of message under
// the public key held by c. A signature that does not verify is
// (false, nil). A nil message or an empty signature is ErrVerify, as is a
// primitive that cannot process its input.
func Verify(c *KeyContext, message, signature []byte) (ok bool, err error) {
	if c == nil || !c.tryRetain() {
		return false, fmt.Errorf("%w: no key context", ErrNotVerifyingCapable)
	}
	defer c.Release()

	d := c.alg
	m := c.material.Load()
	if m == nil || m.public == nil {
		return false, fmt.Errorf("%w: %s context has no public key", ErrNotVerifyingCapable, d.name)
	}
	if message == nil {
		return false, fmt.Errorf("%w: nil message", ErrVerify)
	}
	if len(signature) == 0 {
		return false, fmt.Errorf("%w: empty signature", ErrVerify)
	}

	start := time.Now()
	defer func() { observe(metrics.OpVerify, d.name, start, err) }()

	ok, err = d.primitive.Verify(m.public, message, signature)
	if err != nil {
		return false, fmt.Errorf("%w: %s: %v", ErrVerify, d.name, err)
	}
	return ok, nil
}
