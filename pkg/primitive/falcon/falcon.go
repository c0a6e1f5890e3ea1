//go:build cgo

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

// Package falcon adapts Falcon-1024 from falcon-signatures to the
// pkey.Primitive interface. The implementation is cgo based.
package falcon

import (
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/algorand/falcon"
	"github.com/algorandfoundation/falcon-signatures/falcongo"
	"github.com/jeremyhahn/go-pqsig/pkg/secure"
)

// Falcon-1024 parameter sizes
const (
	PublicKeySize    = 1793
	PrivateKeySize   = 2305
	MaxSignatureSize = 1280

	seedSize = 48
)

var (
	// ErrKeySize is returned when a key buffer has the wrong length
	ErrKeySize = errors.New("falcon: invalid key size")

	// ErrSignatureSize is returned when a signature does not fit the buffer
	ErrSignatureSize = errors.New("falcon: signature exceeds buffer")
)

// Primitive implements Falcon-1024 with compressed signatures
type Primitive struct{}

// New returns a Falcon-1024 primitive
func New() *Primitive {
	return &Primitive{}
}

// Keygen generates a key pair from a fresh random seed
func (p *Primitive) Keygen(secret, public []byte) error {
	seed := make([]byte, seedSize)
	defer secure.ZeroBytes(seed)
	if _, err := rand.Read(seed); err != nil {
		return err
	}
	return p.DeriveKeypair(seed, secret, public)
}

// DeriveKeypair deterministically fills secret and public from seed
func (p *Primitive) DeriveKeypair(seed, secret, public []byte) error {
	if len(secret) != PrivateKeySize || len(public) != PublicKeySize {
		return fmt.Errorf("%w: sk=%d pk=%d", ErrKeySize, len(secret), len(public))
	}
	kp, err := falcongo.GenerateKeyPair(seed)
	if err != nil {
		return fmt.Errorf("falcon: key generation: %w", err)
	}
	defer secure.ZeroBytes(kp.PrivateKey[:])
	copy(secret, kp.PrivateKey[:])
	copy(public, kp.PublicKey[:])
	return nil
}

// Sign produces a compressed signature over message
func (p *Primitive) Sign(secret, message, signature []byte) (int, error) {
	if len(secret) != PrivateKeySize {
		return 0, fmt.Errorf("%w: sk=%d", ErrKeySize, len(secret))
	}
	var kp falcongo.KeyPair
	copy(kp.PrivateKey[:], secret)
	defer secure.ZeroBytes(kp.PrivateKey[:])

	sig, err := kp.Sign(message)
	if err != nil {
		return 0, fmt.Errorf("falcon: sign: %w", err)
	}
	if len(sig) > len(signature) {
		return 0, fmt.Errorf("%w: %d > %d", ErrSignatureSize, len(sig), len(signature))
	}
	return copy(signature, sig), nil
}

// Verify checks a compressed signature. A signature that does not verify
// is reported as false without an error.
func (p *Primitive) Verify(public, message, signature []byte) (bool, error) {
	if len(public) != PublicKeySize {
		return false, fmt.Errorf("%w: pk=%d", ErrKeySize, len(public))
	}
	var pub falcongo.PublicKey
	copy(pub[:], public)
	return falcongo.Verify(message, falcon.CompressedSignature(signature), pub) == nil, nil
}
