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

	"github.com/jeremyhahn/go-pqsig/pkg/adapters/logger"
	"github.com/jeremyhahn/go-pqsig/pkg/metrics"
	"github.com/jeremyhahn/go-pqsig/pkg/secure"
)

const unknownAlgorithm = "unknown"

// PrivateRecord is the serialized form of a key pair. It is a flat
// snapshot with no lifecycle of its own.
type PrivateRecord struct {
	AlgorithmID ID
	Secret      []byte
	Public      []byte
}

// PublicRecord is the serialized form of a public key
type PublicRecord struct {
	AlgorithmID ID
	Public      []byte
}

// Zero overwrites the secret key held by the record
func (r *PrivateRecord) Zero() {
	if r != nil {
		secure.ZeroBytes(r.Secret)
	}
}

// EncodePrivate snapshots the key pair held by c. Byte slices in the
// record are copies.
func EncodePrivate(c *KeyContext) (rec *PrivateRecord, err error) {
	if c == nil {
		return nil, fmt.Errorf("%w: nil key context", ErrMissingSecret)
	}
	start := time.Now()
	defer func() { observe(metrics.OpEncodePrivate, c.alg.name, start, err) }()

	m := c.material.Load()
	if m == nil || m.secret == nil {
		return nil, fmt.Errorf("%w: %s", ErrMissingSecret, c.alg.name)
	}
	return &PrivateRecord{
		AlgorithmID: c.alg.id,
		Secret:      secure.Clone(m.secret),
		Public:      secure.Clone(m.public),
	}, nil
}

// EncodePublic snapshots the public key held by c
func EncodePublic(c *KeyContext) (rec *PublicRecord, err error) {
	if c == nil {
		return nil, fmt.Errorf("%w: nil key context", ErrMissingPublic)
	}
	start := time.Now()
	defer func() { observe(metrics.OpEncodePublic, c.alg.name, start, err) }()

	m := c.material.Load()
	if m == nil || m.public == nil {
		return nil, fmt.Errorf("%w: %s", ErrMissingPublic, c.alg.name)
	}
	return &PublicRecord{
		AlgorithmID: c.alg.id,
		Public:      secure.Clone(m.public),
	}, nil
}

// DecodePrivate resolves rec.AlgorithmID in r and returns a new context
// holding copies of the record's key pair. Lengths are checked against the
// descriptor before any context is created. When the primitive implements
// PairChecker the public key must belong to the secret key.
func (r *Registry) DecodePrivate(rec *PrivateRecord) (c *KeyContext, err error) {
	start := time.Now()
	name := unknownAlgorithm
	defer func() { observe(metrics.OpDecodePrivate, name, start, err) }()

	if rec == nil {
		return nil, fmt.Errorf("%w: nil private record", ErrMalformedRecord)
	}
	d, err := r.Lookup(rec.AlgorithmID)
	if err != nil {
		return nil, err
	}
	name = d.name

	if len(rec.Secret) != d.privateKeyLen {
		return nil, fmt.Errorf("%w: %s secret key is %d bytes, want %d",
			ErrLengthMismatch, d.name, len(rec.Secret), d.privateKeyLen)
	}
	if len(rec.Public) != d.publicKeyLen {
		return nil, fmt.Errorf("%w: %s public key is %d bytes, want %d",
			ErrLengthMismatch, d.name, len(rec.Public), d.publicKeyLen)
	}
	if pc, ok := d.primitive.(PairChecker); ok {
		if err := pc.CheckPair(rec.Secret, rec.Public); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrKeyPairMismatch, d.name, err)
		}
	}

	c, err = NewKeyContext(d)
	if err != nil {
		return nil, err
	}
	if err := c.install(rec.Secret, rec.Public); err != nil {
		c.Release()
		return nil, err
	}
	log().Debug("decoded private key", logger.KeyID(c.id), logger.Algorithm(d.name))
	return c, nil
}

// DecodePublic resolves rec.AlgorithmID in r and returns a verify-only
// context holding a copy of the public key
func (r *Registry) DecodePublic(rec *PublicRecord) (c *KeyContext, err error) {
	start := time.Now()
	name := unknownAlgorithm
	defer func() { observe(metrics.OpDecodePublic, name, start, err) }()

	if rec == nil {
		return nil, fmt.Errorf("%w: nil public record", ErrMalformedRecord)
	}
	d, err := r.Lookup(rec.AlgorithmID)
	if err != nil {
		return nil, err
	}
	name = d.name

	if len(rec.Public) != d.publicKeyLen {
		return nil, fmt.Errorf("%w: %s public key is %d bytes, want %d",
			ErrLengthMismatch, d.name, len(rec.Public), d.publicKeyLen)
	}

	c, err = NewKeyContext(d)
	if err != nil {
		return nil, err
	}
	if err := c.install(nil, rec.Public); err != nil {
		c.Release()
		return nil, err
	}
	log().Debug("decoded public key", logger.KeyID(c.id), logger.Algorithm(d.name))
	return c, nil
}
