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
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

// Picnic L1-FS sizes, used so tests exercise realistic buffer lengths
const (
	testSecretLen    = 49
	testPublicLen    = 33
	testSignatureLen = 34036
	testAlgorithmID  = ID(1)
	testAlgorithm    = "picnic-default"
)

var errPrimitive = errors.New("primitive failure")

// edPrimitive is a real asymmetric primitive built on Ed25519 and padded
// out to Picnic-shaped buffers. The first 32 bytes of the secret are the
// Ed25519 seed and the first 32 bytes of the public key are the Ed25519
// public key.
type edPrimitive struct {
	keygenErr error
	signErr   error
	verifyErr error
	signLen   int
}

func (p *edPrimitive) Keygen(secret, public []byte) error {
	if p.keygenErr != nil {
		for i := range secret {
			secret[i] = 0xAA
		}
		return p.keygenErr
	}
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return err
	}
	copy(secret, priv.Seed())
	secret[len(secret)-1] = 0x01
	copy(public, pub)
	public[len(public)-1] = 0x01
	return nil
}

func (p *edPrimitive) Sign(secret, message, signature []byte) (int, error) {
	if p.signErr != nil {
		return 0, p.signErr
	}
	sig := ed25519.Sign(ed25519.NewKeyFromSeed(secret[:ed25519.SeedSize]), message)
	n := copy(signature, sig)
	if p.signLen != 0 {
		return p.signLen, nil
	}
	return n, nil
}

func (p *edPrimitive) Verify(public, message, signature []byte) (bool, error) {
	if p.verifyErr != nil {
		return false, p.verifyErr
	}
	return ed25519.Verify(public[:ed25519.PublicKeySize], message, signature), nil
}

// pairCheckedPrimitive adds a public/secret consistency check
type pairCheckedPrimitive struct {
	edPrimitive
}

func (p *pairCheckedPrimitive) CheckPair(secret, public []byte) error {
	priv := ed25519.NewKeyFromSeed(secret[:ed25519.SeedSize])
	if !bytes.Equal(priv.Public().(ed25519.PublicKey), public[:ed25519.PublicKeySize]) {
		return errors.New("derived public key differs")
	}
	return nil
}

func newTestDescriptor(t *testing.T, id ID, name string, prim Primitive) *Descriptor {
	t.Helper()
	d, err := NewDescriptor(DescriptorConfig{
		ID:              id,
		Name:            name,
		PrivateKeyLen:   testSecretLen,
		PublicKeyLen:    testPublicLen,
		MaxSignatureLen: testSignatureLen,
		Primitive:       prim,
	})
	require.NoError(t, err)
	return d
}

func newTestRegistry(t *testing.T, prim Primitive) (*Registry, *Descriptor) {
	t.Helper()
	if prim == nil {
		prim = &edPrimitive{}
	}
	r := NewRegistry()
	d := newTestDescriptor(t, testAlgorithmID, testAlgorithm, prim)
	require.NoError(t, r.Register(d))
	return r, d
}

func newTestKey(t *testing.T, d *Descriptor) *KeyContext {
	t.Helper()
	c, err := NewKeyContext(d)
	require.NoError(t, err)
	require.NoError(t, c.Keygen())
	return c
}
