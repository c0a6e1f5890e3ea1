//go:build quantum

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

// Package liboqs adapts liboqs signature mechanisms to the pkey.Primitive
// interface. It requires the liboqs C library and the "quantum" build tag.
package liboqs

import (
	"errors"
	"fmt"

	"github.com/jeremyhahn/go-pqsig/pkg/secure"
	"github.com/open-quantum-safe/liboqs-go/oqs"
)

// PicnicDefault is the liboqs mechanism behind the picnic-default algorithm.
// liboqs 0.8.0 and later no longer ship it.
const PicnicDefault = "picnic_L1_FS"

var (
	// ErrMechanismUnavailable is returned when liboqs was built without
	// the requested mechanism
	ErrMechanismUnavailable = errors.New("liboqs: mechanism not available")

	// ErrKeySize is returned when a key buffer does not match the mechanism
	ErrKeySize = errors.New("liboqs: invalid key size")

	// ErrSignatureFailed is returned when liboqs fails to sign
	ErrSignatureFailed = errors.New("liboqs: signature operation failed")

	// ErrEmptyMessage is returned for zero-length messages, which the
	// liboqs-go bindings cannot pass to the C library
	ErrEmptyMessage = errors.New("liboqs: empty message")
)

// Primitive signs and verifies with one liboqs mechanism. Each call
// initialises its own oqs.Signature, so a Primitive is safe for concurrent
// use.
type Primitive struct {
	mechanism string
	details   oqs.SignatureDetails
}

// New checks that liboqs provides mechanism and returns a primitive for it
func New(mechanism string) (*Primitive, error) {
	var signer oqs.Signature
	if err := signer.Init(mechanism, nil); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMechanismUnavailable, mechanism, err)
	}
	defer signer.Clean()
	return &Primitive{mechanism: mechanism, details: signer.Details()}, nil
}

// Version returns the version of the linked liboqs library
func Version() string { return oqs.LiboqsVersion() }

// Enabled reports whether the linked liboqs provides mechanism
func Enabled(mechanism string) bool { return oqs.IsSigEnabled(mechanism) }

// Mechanism returns the liboqs mechanism name
func (p *Primitive) Mechanism() string { return p.mechanism }

// Details returns the liboqs parameter set description
func (p *Primitive) Details() oqs.SignatureDetails { return p.details }

// PrivateKeySize returns the secret key length
func (p *Primitive) PrivateKeySize() int { return p.details.LengthSecretKey }

// PublicKeySize returns the public key length
func (p *Primitive) PublicKeySize() int { return p.details.LengthPublicKey }

// SignatureSize returns the maximum signature length
func (p *Primitive) SignatureSize() int { return p.details.MaxLengthSignature }

// Keygen generates a key pair into secret and public
func (p *Primitive) Keygen(secret, public []byte) error {
	if len(secret) != p.PrivateKeySize() || len(public) != p.PublicKeySize() {
		return fmt.Errorf("%w: %s wants sk=%d pk=%d", ErrKeySize, p.mechanism, p.PrivateKeySize(), p.PublicKeySize())
	}
	var signer oqs.Signature
	if err := signer.Init(p.mechanism, nil); err != nil {
		return err
	}
	defer signer.Clean()

	pk, err := signer.GenerateKeyPair()
	if err != nil {
		return err
	}
	sk := signer.ExportSecretKey()
	defer secure.ZeroBytes(sk)
	if len(sk) != len(secret) || len(pk) != len(public) {
		return fmt.Errorf("%w: %s returned sk=%d pk=%d", ErrKeySize, p.mechanism, len(sk), len(pk))
	}
	copy(secret, sk)
	copy(public, pk)
	return nil
}

// Sign signs message with secret into signature
func (p *Primitive) Sign(secret, message, signature []byte) (int, error) {
	if len(message) == 0 {
		return 0, ErrEmptyMessage
	}
	var signer oqs.Signature
	if err := signer.Init(p.mechanism, secret); err != nil {
		return 0, err
	}
	defer signer.Clean()

	sig, err := signer.Sign(message)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrSignatureFailed, err)
	}
	if len(sig) > len(signature) {
		return 0, fmt.Errorf("%w: %d byte signature exceeds %d byte buffer", ErrSignatureFailed, len(sig), len(signature))
	}
	return copy(signature, sig), nil
}

// Verify checks signature over message with public. A signature longer
// than the mechanism allows does not verify.
func (p *Primitive) Verify(public, message, signature []byte) (bool, error) {
	if len(message) == 0 {
		return false, ErrEmptyMessage
	}
	if len(signature) == 0 || len(signature) > p.SignatureSize() {
		return false, nil
	}
	var verifier oqs.Signature
	if err := verifier.Init(p.mechanism, nil); err != nil {
		return false, err
	}
	defer verifier.Clean()

	return verifier.Verify(message, signature, public)
}
