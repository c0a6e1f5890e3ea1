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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodec_RoundTrip(t *testing.T) {
	r, d := newTestRegistry(t, nil)
	c := newTestKey(t, d)
	defer c.Release()

	for _, f := range formats {
		t.Run(f.String(), func(t *testing.T) {
			codec := NewCodec(r, f)
			assert.Equal(t, f, codec.Format())
			assert.Same(t, r, codec.Registry())

			der, err := codec.MarshalPrivateKey(c)
			require.NoError(t, err)
			priv, err := codec.ParsePrivateKey(der)
			require.NoError(t, err)
			defer priv.Release()
			assert.Equal(t, c.material.Load().secret, priv.material.Load().secret)
			assert.True(t, c.PublicEqual(priv))

			der, err = codec.MarshalPublicKey(c)
			require.NoError(t, err)
			pub, err := codec.ParsePublicKey(der)
			require.NoError(t, err)
			defer pub.Release()
			assert.False(t, pub.HasSecret())
			assert.True(t, c.PublicEqual(pub))
		})
	}
}

func TestCodec_Errors(t *testing.T) {
	r, d := newTestRegistry(t, nil)
	codec := NewCodec(r, FormatDER)

	empty, err := NewKeyContext(d)
	require.NoError(t, err)
	defer empty.Release()

	_, err = codec.MarshalPrivateKey(empty)
	assert.ErrorIs(t, err, ErrMissingSecret)
	_, err = codec.MarshalPublicKey(empty)
	assert.ErrorIs(t, err, ErrMissingPublic)

	_, err = codec.ParsePrivateKey([]byte{0x01})
	assert.ErrorIs(t, err, ErrMalformedRecord)
	_, err = codec.ParsePublicKey([]byte{0x01})
	assert.ErrorIs(t, err, ErrMalformedRecord)

	other := &PublicRecord{AlgorithmID: 42, Public: make([]byte, testPublicLen)}
	data, err := other.Marshal(FormatDER)
	require.NoError(t, err)
	_, err = codec.ParsePublicKey(data)
	assert.ErrorIs(t, err, ErrUnknownAlgorithm)
}

func TestNewCodec_DefaultRegistry(t *testing.T) {
	assert.Same(t, Default(), NewCodec(nil, FormatDER).Registry())
}
