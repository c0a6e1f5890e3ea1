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
	"encoding/asn1"
	"fmt"
	"strings"
	"sync/atomic"
)

// ID is the stable integer identifier of a signature algorithm. It is the
// value carried in every serialized key record.
type ID int

// Primitive is the cryptographic implementation behind a descriptor.
// Buffers passed in are sized to the descriptor's declared lengths.
type Primitive interface {
	// Keygen fills secret and public with a fresh key pair
	Keygen(secret, public []byte) error

	// Sign writes a signature over message into signature and returns the
	// number of bytes written
	Sign(secret, message, signature []byte) (int, error)

	// Verify reports whether signature is valid for message under public.
	// An invalid signature is (false, nil); the error is reserved for
	// inputs the primitive cannot process.
	Verify(public, message, signature []byte) (bool, error)
}

// PairChecker is implemented by primitives that can confirm a public key
// belongs to a secret key. Private key decoding runs the check when the
// primitive provides it.
type PairChecker interface {
	CheckPair(secret, public []byte) error
}

// DescriptorConfig holds the parameters of a new Descriptor
type DescriptorConfig struct {
	ID              ID
	Name            string
	LongName        string
	OID             asn1.ObjectIdentifier
	PrivateKeyLen   int
	PublicKeyLen    int
	MaxSignatureLen int
	Primitive       Primitive
}

// Descriptor is the immutable description of one signature algorithm:
// identity, fixed buffer lengths and the primitive implementing it.
type Descriptor struct {
	id              ID
	name            string
	longName        string
	oid             asn1.ObjectIdentifier
	privateKeyLen   int
	publicKeyLen    int
	maxSignatureLen int
	primitive       Primitive

	// live key contexts bound to this descriptor
	refs atomic.Int64
}

// NewDescriptor validates config and returns a descriptor
func NewDescriptor(config DescriptorConfig) (*Descriptor, error) {
	if config.ID <= 0 {
		return nil, fmt.Errorf("%w: id must be positive, got %d", ErrInvalidDescriptor, config.ID)
	}
	name := strings.TrimSpace(config.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidDescriptor)
	}
	if config.PrivateKeyLen <= 0 || config.PublicKeyLen <= 0 || config.MaxSignatureLen <= 0 {
		return nil, fmt.Errorf("%w: %s: lengths must be positive (sk=%d pk=%d sig=%d)",
			ErrInvalidDescriptor, name, config.PrivateKeyLen, config.PublicKeyLen, config.MaxSignatureLen)
	}
	if config.Primitive == nil {
		return nil, fmt.Errorf("%w: %s: primitive is required", ErrInvalidDescriptor, name)
	}
	longName := config.LongName
	if longName == "" {
		longName = name
	}
	var oid asn1.ObjectIdentifier
	if len(config.OID) > 0 {
		oid = append(asn1.ObjectIdentifier(nil), config.OID...)
	}
	return &Descriptor{
		id:              config.ID,
		name:            name,
		longName:        longName,
		oid:             oid,
		privateKeyLen:   config.PrivateKeyLen,
		publicKeyLen:    config.PublicKeyLen,
		maxSignatureLen: config.MaxSignatureLen,
		primitive:       config.Primitive,
	}, nil
}

// ID returns the algorithm identifier
func (d *Descriptor) ID() ID { return d.id }

// Name returns the short algorithm name, e.g. "picnic-default"
func (d *Descriptor) Name() string { return d.name }

// LongName returns the descriptive name, e.g. "PicnicL1FS_With_SHA512"
func (d *Descriptor) LongName() string { return d.longName }

// OID returns a copy of the algorithm's object identifier, or nil
func (d *Descriptor) OID() asn1.ObjectIdentifier {
	if d.oid == nil {
		return nil
	}
	return append(asn1.ObjectIdentifier(nil), d.oid...)
}

// PrivateKeyLen returns the secret key length in bytes
func (d *Descriptor) PrivateKeyLen() int { return d.privateKeyLen }

// PublicKeyLen returns the public key length in bytes
func (d *Descriptor) PublicKeyLen() int { return d.publicKeyLen }

// MaxSignatureLen returns the maximum signature length in bytes
func (d *Descriptor) MaxSignatureLen() int { return d.maxSignatureLen }

// Primitive returns the underlying implementation
func (d *Descriptor) Primitive() Primitive { return d.primitive }

// References returns the number of live key contexts bound to d
func (d *Descriptor) References() int64 { return d.refs.Load() }

func (d *Descriptor) String() string {
	return fmt.Sprintf("%s(%d)", d.name, d.id)
}

func (d *Descriptor) acquire() { d.refs.Add(1) }

func (d *Descriptor) release() { d.refs.Add(-1) }
