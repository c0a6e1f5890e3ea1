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

package falcon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrimitive_SignVerify(t *testing.T) {
	p := New()
	secret := make([]byte, PrivateKeySize)
	public := make([]byte, PublicKeySize)
	require.NoError(t, p.Keygen(secret, public))

	msg := []byte("falcon message")
	sig := make([]byte, MaxSignatureSize)
	n, err := p.Sign(secret, msg, sig)
	require.NoError(t, err)
	require.Positive(t, n)
	require.LessOrEqual(t, n, MaxSignatureSize)

	ok, err := p.Verify(public, msg, sig[:n])
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = p.Verify(public, []byte("other"), sig[:n])
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPrimitive_DeriveKeypairDeterministic(t *testing.T) {
	p := New()
	seed := make([]byte, seedSize)
	for i := range seed {
		seed[i] = byte(i)
	}

	sk1, pk1 := make([]byte, PrivateKeySize), make([]byte, PublicKeySize)
	sk2, pk2 := make([]byte, PrivateKeySize), make([]byte, PublicKeySize)
	require.NoError(t, p.DeriveKeypair(seed, sk1, pk1))
	require.NoError(t, p.DeriveKeypair(seed, sk2, pk2))
	assert.Equal(t, sk1, sk2)
	assert.Equal(t, pk1, pk2)
}

func TestPrimitive_SizeChecks(t *testing.T) {
	p := New()

	assert.ErrorIs(t, p.Keygen(make([]byte, 1), make([]byte, PublicKeySize)), ErrKeySize)

	_, err := p.Sign(make([]byte, 1), []byte("m"), make([]byte, MaxSignatureSize))
	assert.ErrorIs(t, err, ErrKeySize)

	_, err = p.Verify(make([]byte, 1), []byte("m"), []byte{1})
	assert.ErrorIs(t, err, ErrKeySize)
}
