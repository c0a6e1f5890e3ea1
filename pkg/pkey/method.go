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
	"crypto"
	"fmt"
)

// Method is the per-algorithm entry point table a key container host
// calls into. Every entry rejects contexts and records bound to another
// algorithm with ErrAlgorithmMismatch.
type Method struct {
	alg   *Descriptor
	codec *Codec
}

// Method returns the method table for the algorithm registered as id,
// using format for record bodies
func (r *Registry) Method(id ID, format Format) (*Method, error) {
	d, err := r.Lookup(id)
	if err != nil {
		return nil, err
	}
	return &Method{alg: d, codec: NewCodec(r, format)}, nil
}

// Algorithm returns the descriptor the table is bound to
func (m *Method) Algorithm() *Descriptor { return m.alg }

// Keygen creates a context bound to the method's algorithm and generates
// a key pair into it
func (m *Method) Keygen() (*KeyContext, error) {
	c, err := NewKeyContext(m.alg)
	if err != nil {
		return nil, err
	}
	if err := c.Keygen(); err != nil {
		c.Release()
		return nil, err
	}
	return c, nil
}

// PublicEncode produces the public record body for c
func (m *Method) PublicEncode(c *KeyContext) ([]byte, error) {
	if err := m.check(c); err != nil {
		return nil, err
	}
	return m.codec.MarshalPublicKey(c)
}

// PublicDecode consumes a public record body
func (m *Method) PublicDecode(data []byte) (*KeyContext, error) {
	rec, err := ParsePublicRecord(data, m.codec.format)
	if err != nil {
		return nil, err
	}
	if rec.AlgorithmID != m.alg.id {
		return nil, fmt.Errorf("%w: record is algorithm %d, method is %s", ErrAlgorithmMismatch, rec.AlgorithmID, m.alg)
	}
	return m.codec.registry.DecodePublic(rec)
}

// PrivateEncode produces the private record body for c
func (m *Method) PrivateEncode(c *KeyContext) ([]byte, error) {
	if err := m.check(c); err != nil {
		return nil, err
	}
	return m.codec.MarshalPrivateKey(c)
}

// PrivateDecode consumes a private record body
func (m *Method) PrivateDecode(data []byte) (*KeyContext, error) {
	rec, err := ParsePrivateRecord(data, m.codec.format)
	if err != nil {
		return nil, err
	}
	defer rec.Zero()
	if rec.AlgorithmID != m.alg.id {
		return nil, fmt.Errorf("%w: record is algorithm %d, method is %s", ErrAlgorithmMismatch, rec.AlgorithmID, m.alg)
	}
	return m.codec.registry.DecodePrivate(rec)
}

// Sign writes a signature of tbs into sig, see Sign
func (m *Method) Sign(c *KeyContext, sig, tbs []byte) (int, error) {
	if err := m.check(c); err != nil {
		return 0, err
	}
	return Sign(c, sig, tbs)
}

// Verify checks sig over tbs, see Verify
func (m *Method) Verify(c *KeyContext, sig, tbs []byte) (bool, error) {
	if err := m.check(c); err != nil {
		return false, err
	}
	return Verify(c, tbs, sig)
}

// DigestAllowed reports whether the host may select h
func (m *Method) DigestAllowed(h crypto.Hash) bool {
	return DigestAllowed(h)
}

// Control applies a host's digest proposal to c
func (m *Method) Control(c *KeyContext, h crypto.Hash) error {
	if err := m.check(c); err != nil {
		return err
	}
	return c.SetDigest(h)
}

// Size returns the signature buffer size hosts must allocate
func (m *Method) Size() int { return m.alg.maxSignatureLen }

// Bits returns the public key size in bits
func (m *Method) Bits() int { return 8 * m.alg.publicKeyLen }

// PublicEqual compares the public halves of a and b
func (m *Method) PublicEqual(a, b *KeyContext) bool {
	if m.check(a) != nil || m.check(b) != nil {
		return false
	}
	return a.PublicEqual(b)
}

func (m *Method) check(c *KeyContext) error {
	if c == nil {
		return fmt.Errorf("%w: nil key context", ErrInvalidState)
	}
	if c.alg.id != m.alg.id {
		return fmt.Errorf("%w: context is %s, method is %s", ErrAlgorithmMismatch, c.alg, m.alg)
	}
	return nil
}
