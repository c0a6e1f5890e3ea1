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

package circl

import (
	"testing"

	"github.com/cloudflare/circl/sign"
	"github.com/cloudflare/circl/sign/ed25519"
	"github.com/cloudflare/circl/sign/eddilithium2"
	"github.com/cloudflare/circl/sign/eddilithium3"
	"github.com/cloudflare/circl/sign/mldsa/mldsa44"
	"github.com/cloudflare/circl/sign/mldsa/mldsa65"
	"github.com/cloudflare/circl/sign/mldsa/mldsa87"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func schemes() []sign.Scheme {
	return []sign.Scheme{
		mldsa44.Scheme(),
		mldsa65.Scheme(),
		mldsa87.Scheme(),
		eddilithium2.Scheme(),
		eddilithium3.Scheme(),
	}
}

func keypair(t *testing.T, p *Primitive) ([]byte, []byte) {
	t.Helper()
	secret := make([]byte, p.PrivateKeySize())
	public := make([]byte, p.PublicKeySize())
	require.NoError(t, p.Keygen(secret, public))
	return secret, public
}

func TestPrimitive_SignVerify(t *testing.T) {
	for _, s := range schemes() {
		t.Run(s.Name(), func(t *testing.T) {
			p := New(s)
			assert.Same(t, s, p.Scheme())
			assert.Equal(t, s.Name(), p.Name())
			assert.NotNil(t, p.OID())

			secret, public := keypair(t, p)
			msg := []byte("post-quantum message")

			sig := make([]byte, p.SignatureSize())
			n, err := p.Sign(secret, msg, sig)
			require.NoError(t, err)
			assert.Equal(t, p.SignatureSize(), n)

			ok, err := p.Verify(public, msg, sig[:n])
			require.NoError(t, err)
			assert.True(t, ok)

			sig[10] ^= 0x01
			ok, err = p.Verify(public, msg, sig[:n])
			require.NoError(t, err)
			assert.False(t, ok)

			ok, err = p.Verify(public, []byte("other message"), sig[:n])
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestPrimitive_ShortSignatureIsInvalid(t *testing.T) {
	p := New(eddilithium2.Scheme())
	_, public := keypair(t, p)

	ok, err := p.Verify(public, []byte("m"), []byte{1, 2, 3})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPrimitive_KeygenSizeMismatch(t *testing.T) {
	p := New(mldsa44.Scheme())
	err := p.Keygen(make([]byte, 10), make([]byte, p.PublicKeySize()))
	assert.ErrorIs(t, err, ErrKeySize)
}

func TestPrimitive_InvalidKeys(t *testing.T) {
	p := New(mldsa65.Scheme())

	_, err := p.Sign(make([]byte, 3), []byte("m"), make([]byte, p.SignatureSize()))
	assert.ErrorIs(t, err, ErrInvalidKey)

	_, err = p.Verify(make([]byte, 3), []byte("m"), make([]byte, p.SignatureSize()))
	assert.ErrorIs(t, err, ErrInvalidKey)

	assert.ErrorIs(t, p.CheckPair(make([]byte, 3), nil), ErrInvalidKey)
}

func TestPrimitive_SignBufferTooSmall(t *testing.T) {
	p := New(mldsa44.Scheme())
	secret, _ := keypair(t, p)

	_, err := p.Sign(secret, []byte("m"), make([]byte, 16))
	assert.Error(t, err)
}

func TestPrimitive_CheckPair(t *testing.T) {
	p := New(mldsa87.Scheme())
	secretA, publicA := keypair(t, p)
	_, publicB := keypair(t, p)

	assert.NoError(t, p.CheckPair(secretA, publicA))
	assert.ErrorIs(t, p.CheckPair(secretA, publicB), ErrPairMismatch)
}

func TestPrimitive_DeriveKeypair(t *testing.T) {
	p := New(mldsa44.Scheme())
	seed := make([]byte, p.Scheme().SeedSize())
	for i := range seed {
		seed[i] = byte(i)
	}

	sk1, pk1 := make([]byte, p.PrivateKeySize()), make([]byte, p.PublicKeySize())
	sk2, pk2 := make([]byte, p.PrivateKeySize()), make([]byte, p.PublicKeySize())
	require.NoError(t, p.DeriveKeypair(seed, sk1, pk1))
	require.NoError(t, p.DeriveKeypair(seed, sk2, pk2))
	assert.Equal(t, sk1, sk2)
	assert.Equal(t, pk1, pk2)

	assert.ErrorIs(t, p.DeriveKeypair(seed[:4], sk1, pk1), ErrKeySize)
}

func TestPrimitive_ClassicalScheme(t *testing.T) {
	p := New(ed25519.Scheme())
	secret, public := keypair(t, p)

	sig := make([]byte, p.SignatureSize())
	n, err := p.Sign(secret, []byte("m"), sig)
	require.NoError(t, err)
	ok, err := p.Verify(public, []byte("m"), sig[:n])
	require.NoError(t, err)
	assert.True(t, ok)
}
