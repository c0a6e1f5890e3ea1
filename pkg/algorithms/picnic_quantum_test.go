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


package algorithms

import (
	"testing"

	"github.com/jeremyhahn/go-pqsig/pkg/pkey"
	"github.com/jeremyhahn/go-pqsig/pkg/primitive/liboqs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPicnicDefault_DefaultMechanism(t *testing.T) {
	d, err := picnicDefault()
	if liboqs.Enabled(liboqs.PicnicDefault) {
		require.NoError(t, err)
		assert.Equal(t, PicnicDefault, d.ID())
		assert.Equal(t, PicnicOID, d.OID())
		return
	}
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Contains(t, err.Error(), liboqs.Version())
	assert.Contains(t, err.Error(), "0.8.0")
}

func TestPicnicDefault_MechanismOverride(t *testing.T) {
	saved := PicnicMechanism
	PicnicMechanism = "ML-DSA-44"
	t.Cleanup(func() { PicnicMechanism = saved })

	d, err := picnicDefault()
	require.NoError(t, err)
	assert.Equal(t, PicnicDefault, d.ID())
	assert.Equal(t, NamePicnicDefault, d.Name())
	assert.Equal(t, 2560, d.PrivateKeyLen())
	assert.Equal(t, 1312, d.PublicKeyLen())
	assert.Equal(t, 2420, d.MaxSignatureLen())

	r := pkey.NewRegistry()
	require.NoError(t, r.Register(d))
	m, err := r.Method(PicnicDefault, pkey.FormatCBOR)
	require.NoError(t, err)

	ctx, err := m.Keygen()
	require.NoError(t, err)
	defer ctx.Release()

	data, err := m.PrivateEncode(ctx)
	require.NoError(t, err)
	restored, err := m.PrivateDecode(data)
	require.NoError(t, err)
	defer restored.Release()

	msg := make([]byte, 100)
	sig, err := pkey.SignMessage(restored, msg)
	require.NoError(t, err)
	ok, err := pkey.Verify(ctx, msg, sig)
	require.NoError(t, err)
	assert.True(t, ok)

	sig[len(sig)/2] ^= 0x01
	ok, err = pkey.Verify(ctx, msg, sig)
	require.NoError(t, err)
	assert.False(t, ok)
}
