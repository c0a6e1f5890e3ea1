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

// Package circl adapts Cloudflare CIRCL signature schemes to the
// pkey.Primitive interface.
package circl

import (
	"bytes"
	"encoding/asn1"
	"errors"
	"fmt"

	"github.com/cloudflare/circl/sign"
	"github.com/jeremyhahn/go-pqsig/pkg/secure"
)

var (
	// ErrKeySize is returned when a key buffer does not match the scheme
	ErrKeySize = errors.New("circl: invalid key size")

	// ErrInvalidKey is returned when key bytes do not decode
	ErrInvalidKey = errors.New("circl: invalid key")

	// ErrPairMismatch is returned when a public key was not derived from
	// the secret key
	ErrPairMismatch = errors.New("circl: public key does not match secret key")
)

// Primitive wraps a CIRCL sign.Scheme
type Primitive struct {
	scheme sign.Scheme
}

// New returns a primitive for scheme
func New(scheme sign.Scheme) *Primitive {
	return &Primitive{scheme: scheme}
}

// Scheme returns the wrapped scheme
func (p *Primitive) Scheme() sign.Scheme { return p.scheme }

// Name returns the CIRCL scheme name, e.g. "ML-DSA-44"
func (p *Primitive) Name() string { return p.scheme.Name() }

// PrivateKeySize returns the packed secret key size
func (p *Primitive) PrivateKeySize() int { return p.scheme.PrivateKeySize() }

// PublicKeySize returns the packed public key size
func (p *Primitive) PublicKeySize() int { return p.scheme.PublicKeySize() }

// SignatureSize returns the signature size
func (p *Primitive) SignatureSize() int { return p.scheme.SignatureSize() }

// OID returns the scheme's object identifier when CIRCL defines one
func (p *Primitive) OID() asn1.ObjectIdentifier {
	if s, ok := p.scheme.(interface{ Oid() asn1.ObjectIdentifier }); ok {
		return s.Oid()
	}
	return nil
}

// Keygen generates a key pair and packs it into secret and public
func (p *Primitive) Keygen(secret, public []byte) error {
	if len(secret) != p.scheme.PrivateKeySize() || len(public) != p.scheme.PublicKeySize() {
		return fmt.Errorf("%w: %s wants sk=%d pk=%d, got sk=%d pk=%d", ErrKeySize, p.scheme.Name(),
			p.scheme.PrivateKeySize(), p.scheme.PublicKeySize(), len(secret), len(public))
	}
	pk, sk, err := p.scheme.GenerateKey()
	if err != nil {
		return err
	}
	return p.pack(pk, sk, secret, public)
}

// DeriveKeypair deterministically fills secret and public from seed
func (p *Primitive) DeriveKeypair(seed, secret, public []byte) error {
	if len(seed) != p.scheme.SeedSize() {
		return fmt.Errorf("%w: %s seed must be %d bytes", ErrKeySize, p.scheme.Name(), p.scheme.SeedSize())
	}
	pk, sk := p.scheme.DeriveKey(seed)
	return p.pack(pk, sk, secret, public)
}

func (p *Primitive) pack(pk sign.PublicKey, sk sign.PrivateKey, secret, public []byte) error {
	skb, err := sk.MarshalBinary()
	if err != nil {
		return err
	}
	defer secure.ZeroBytes(skb)
	pkb, err := pk.MarshalBinary()
	if err != nil {
		return err
	}
	if len(skb) != len(secret) || len(pkb) != len(public) {
		return fmt.Errorf("%w: %s packed sk=%d pk=%d", ErrKeySize, p.scheme.Name(), len(skb), len(pkb))
	}
	copy(secret, skb)
	copy(public, pkb)
	return nil
}

// Sign signs message with the packed secret key
func (p *Primitive) Sign(secret, message, signature []byte) (int, error) {
	sk, err := p.scheme.UnmarshalBinaryPrivateKey(secret)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	sig := p.scheme.Sign(sk, message, nil)
	if len(sig) > len(signature) {
		return 0, fmt.Errorf("circl: %s signature is %d bytes, buffer holds %d", p.scheme.Name(), len(sig), len(signature))
	}
	return copy(signature, sig), nil
}

// Verify checks signature with the packed public key
func (p *Primitive) Verify(public, message, signature []byte) (bool, error) {
	pk, err := p.scheme.UnmarshalBinaryPublicKey(public)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	// some schemes slice the signature unchecked
	if len(signature) != p.scheme.SignatureSize() {
		return false, nil
	}
	return p.scheme.Verify(pk, message, signature, nil), nil
}

// CheckPair confirms public is the public half of secret
func (p *Primitive) CheckPair(secret, public []byte) error {
	sk, err := p.scheme.UnmarshalBinaryPrivateKey(secret)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	derived, ok := sk.Public().(sign.PublicKey)
	if !ok {
		return fmt.Errorf("%w: %s secret key has no public half", ErrInvalidKey, p.scheme.Name())
	}
	pkb, err := derived.MarshalBinary()
	if err != nil {
		return err
	}
	if !bytes.Equal(pkb, public) {
		return ErrPairMismatch
	}
	return nil
}
