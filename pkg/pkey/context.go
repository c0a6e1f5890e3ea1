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
	"bytes"
	"crypto"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jeremyhahn/go-pqsig/pkg/adapters/logger"
	"github.com/jeremyhahn/go-pqsig/pkg/metrics"
	"github.com/jeremyhahn/go-pqsig/pkg/secure"
)

// keyMaterial is published once per context and never mutated afterwards,
// except for zeroing the secret when the last reference is released.
type keyMaterial struct {
	secret []byte
	public []byte
}

// KeyContext owns one key pair bound to an algorithm. It is reference
// counted: every owner calls Retain and a matching Release, and the secret
// key is zeroed when the count reaches zero. Sign and verify may run
// concurrently on the same context.
type KeyContext struct {
	id       string
	alg      *Descriptor
	refs     atomic.Int32
	material atomic.Pointer[keyMaterial]
	digest   atomic.Uint32
	counted  bool
}

// NewKeyContext creates an empty context bound to d with one reference
func NewKeyContext(d *Descriptor) (*KeyContext, error) {
	if d == nil {
		return nil, fmt.Errorf("%w: nil descriptor", ErrInvalidDescriptor)
	}
	c := &KeyContext{
		id:  uuid.NewString(),
		alg: d,
	}
	c.refs.Store(1)
	d.acquire()
	c.counted = metrics.KeyContextOpened(d.name)
	return c, nil
}

// ID returns a random identifier used to correlate log records
func (c *KeyContext) ID() string { return c.id }

// Algorithm returns the bound descriptor
func (c *KeyContext) Algorithm() *Descriptor { return c.alg }

// RefCount returns the current reference count
func (c *KeyContext) RefCount() int32 { return c.refs.Load() }

// Retain adds a reference and returns c. Retaining a released context
// panics.
func (c *KeyContext) Retain() *KeyContext {
	if !c.tryRetain() {
		panic(fmt.Sprintf("pkey: retain of released key context %s", c.id))
	}
	return c
}

// Release drops a reference. The last release zeroes the secret key and
// drops both key buffers. Releasing more times than retained panics.
func (c *KeyContext) Release() {
	n := c.refs.Add(-1)
	switch {
	case n > 0:
		return
	case n < 0:
		panic(fmt.Sprintf("pkey: release of freed key context %s", c.id))
	}
	c.free()
}

func (c *KeyContext) tryRetain() bool {
	for {
		n := c.refs.Load()
		if n <= 0 {
			return false
		}
		if c.refs.CompareAndSwap(n, n+1) {
			return true
		}
	}
}

func (c *KeyContext) free() {
	if m := c.material.Swap(nil); m != nil {
		secure.ZeroBytes(m.secret)
	}
	c.alg.release()
	metrics.KeyContextFreed(c.alg.name, c.counted)
	log().Debug("freed key context", logger.KeyID(c.id), logger.Algorithm(c.alg.name))
}

// Keygen generates a key pair into an empty context. A populated or
// released context fails with ErrInvalidState. If the primitive fails the
// context stays empty.
func (c *KeyContext) Keygen() (err error) {
	if !c.tryRetain() {
		return fmt.Errorf("%w: keygen on released context", ErrInvalidState)
	}
	defer c.Release()

	if c.material.Load() != nil {
		return fmt.Errorf("%w: key material already present", ErrInvalidState)
	}

	d := c.alg
	start := time.Now()
	defer func() { observe(metrics.OpKeygen, d.name, start, err) }()

	m := &keyMaterial{
		secret: make([]byte, d.privateKeyLen),
		public: make([]byte, d.publicKeyLen),
	}
	if err := d.primitive.Keygen(m.secret, m.public); err != nil {
		secure.ZeroBytes(m.secret)
		return fmt.Errorf("%w: %s: %v", ErrKeygenFailed, d.name, err)
	}
	if !c.material.CompareAndSwap(nil, m) {
		secure.ZeroBytes(m.secret)
		return fmt.Errorf("%w: key material already present", ErrInvalidState)
	}

	log().Debug("generated key pair", logger.KeyID(c.id), logger.Algorithm(d.name))
	return nil
}

// install publishes decoded key material into a fresh context. secret may
// be nil for a verify-only context.
func (c *KeyContext) install(secret, public []byte) error {
	m := &keyMaterial{
		secret: secure.Clone(secret),
		public: secure.Clone(public),
	}
	if !c.material.CompareAndSwap(nil, m) {
		secure.ZeroBytes(m.secret)
		return fmt.Errorf("%w: key material already present", ErrInvalidState)
	}
	return nil
}

// HasSecret reports whether the context can sign
func (c *KeyContext) HasSecret() bool {
	m := c.material.Load()
	return m != nil && m.secret != nil
}

// HasPublic reports whether the context can verify
func (c *KeyContext) HasPublic() bool {
	m := c.material.Load()
	return m != nil && m.public != nil
}

// PublicKey returns a copy of the public key, or nil
func (c *KeyContext) PublicKey() []byte {
	if m := c.material.Load(); m != nil {
		return secure.Clone(m.public)
	}
	return nil
}

// PublicEqual reports whether c and other hold the same algorithm and
// public key. Contexts without a public key are never equal.
func (c *KeyContext) PublicEqual(other *KeyContext) bool {
	if other == nil {
		return false
	}
	a, b := c.material.Load(), other.material.Load()
	if a == nil || b == nil || a.public == nil || b.public == nil {
		return false
	}
	return c.alg.id == other.alg.id && bytes.Equal(a.public, b.public)
}

// Digest returns the digest recorded by SetDigest, or zero
func (c *KeyContext) Digest() crypto.Hash {
	return crypto.Hash(c.digest.Load())
}

func (c *KeyContext) String() string {
	return fmt.Sprintf("KeyContext(%s, %s, refs=%d)", c.id, c.alg, c.refs.Load())
}

// observe records the outcome of an operation in metrics
func observe(op, algorithm string, start time.Time, err error) {
	status := metrics.StatusSuccess
	if err != nil {
		status = metrics.StatusError
		metrics.RecordError(op, algorithm, errorType(err))
	}
	metrics.RecordOperation(op, algorithm, status, time.Since(start).Seconds())
}
