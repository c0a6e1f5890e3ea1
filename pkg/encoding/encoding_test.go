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

package encoding

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/pem"
	"testing"

	"github.com/jeremyhahn/go-pqsig/pkg/algorithms"
	"github.com/jeremyhahn/go-pqsig/pkg/pkey"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T, format pkey.Format) (*pkey.Codec, *pkey.KeyContext) {
	t.Helper()
	r := pkey.NewRegistry()
	require.NoError(t, algorithms.Register(r, nil))
	m, err := r.Method(algorithms.MLDSA44, format)
	require.NoError(t, err)
	ctx, err := m.Keygen()
	require.NoError(t, err)
	t.Cleanup(ctx.Release)
	return pkey.NewCodec(r, format), ctx
}

func TestPrivateKeyPEM_RoundTrip(t *testing.T) {
	for _, format := range []pkey.Format{pkey.FormatDER, pkey.FormatCBOR} {
		t.Run(format.String(), func(t *testing.T) {
			codec, ctx := setup(t, format)

			data, err := EncodePrivateKeyPEM(ctx, codec)
			require.NoError(t, err)

			block, _ := pem.Decode(data)
			require.NotNil(t, block)
			assert.Equal(t, PEMTypePrivateKey, block.Type)
			assert.Equal(t, algorithms.NameMLDSA44, block.Headers[HeaderAlgorithm])
			assert.Equal(t, format.String(), block.Headers[HeaderFormat])

			restored, err := DecodePrivateKeyPEM(data, codec)
			require.NoError(t, err)
			defer restored.Release()
			assert.True(t, restored.HasSecret())
			assert.True(t, ctx.PublicEqual(restored))
		})
	}
}

func TestPublicKeyPEM_RoundTrip(t *testing.T) {
	codec, ctx := setup(t, pkey.FormatDER)

	data, err := EncodePublicKeyPEM(ctx, codec)
	require.NoError(t, err)
	typ, err := BlockType(data)
	require.NoError(t, err)
	assert.Equal(t, PEMTypePublicKey, typ)

	pub, err := DecodePublicKeyPEM(data, codec)
	require.NoError(t, err)
	defer pub.Release()
	assert.False(t, pub.HasSecret())
	assert.True(t, ctx.PublicEqual(pub))
}

func TestDecodePublicKeyPEM_FromPrivateBlock(t *testing.T) {
	codec, ctx := setup(t, pkey.FormatDER)

	data, err := EncodePrivateKeyPEM(ctx, codec)
	require.NoError(t, err)

	pub, err := DecodePublicKeyPEM(data, codec)
	require.NoError(t, err)
	defer pub.Release()
	assert.False(t, pub.HasSecret())
	assert.True(t, ctx.PublicEqual(pub))
}

func TestDecodePEM_FormatHeaderOverridesCodec(t *testing.T) {
	cborCodec, ctx := setup(t, pkey.FormatCBOR)
	data, err := EncodePrivateKeyPEM(ctx, cborCodec)
	require.NoError(t, err)

	derCodec := pkey.NewCodec(cborCodec.Registry(), pkey.FormatDER)
	restored, err := DecodePrivateKeyPEM(data, derCodec)
	require.NoError(t, err)
	restored.Release()
}

func TestDecodePEM_Errors(t *testing.T) {
	codec, ctx := setup(t, pkey.FormatDER)
	pubPEM, err := EncodePublicKeyPEM(ctx, codec)
	require.NoError(t, err)

	_, err = DecodePrivateKeyPEM(nil, codec)
	assert.ErrorIs(t, err, ErrInvalidData)

	_, err = DecodePrivateKeyPEM([]byte("not pem"), codec)
	assert.ErrorIs(t, err, ErrInvalidPEMEncoding)

	_, err = DecodePrivateKeyPEM(pubPEM, codec)
	assert.ErrorIs(t, err, ErrUnexpectedBlockType)

	other := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: []byte{1}})
	_, err = DecodePublicKeyPEM(other, codec)
	assert.ErrorIs(t, err, ErrUnexpectedBlockType)

	badFormat := pem.EncodeToMemory(&pem.Block{
		Type:    PEMTypePublicKey,
		Headers: map[string]string{HeaderFormat: "xml"},
		Bytes:   []byte{1},
	})
	_, err = DecodePublicKeyPEM(badFormat, codec)
	assert.ErrorIs(t, err, ErrInvalidData)

	corrupt := pem.EncodeToMemory(&pem.Block{Type: PEMTypePublicKey, Bytes: []byte{0x30, 0x01}})
	_, err = DecodePublicKeyPEM(corrupt, codec)
	assert.ErrorIs(t, err, pkey.ErrMalformedRecord)

	_, err = BlockType([]byte("junk"))
	assert.ErrorIs(t, err, ErrInvalidPEMEncoding)
}

func TestFingerprint(t *testing.T) {
	codec, ctx := setup(t, pkey.FormatCBOR)

	fp, err := Fingerprint(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, fp)

	// stable across contexts holding the same public key
	data, err := EncodePublicKeyPEM(ctx, codec)
	require.NoError(t, err)
	pub, err := DecodePublicKeyPEM(data, codec)
	require.NoError(t, err)
	defer pub.Release()
	fp2, err := Fingerprint(pub)
	require.NoError(t, err)
	assert.Equal(t, fp, fp2)

	rec, err := pkey.EncodePublic(ctx)
	require.NoError(t, err)
	der, err := rec.Marshal(pkey.FormatDER)
	require.NoError(t, err)
	sum := sha256.Sum256(der)

	digest, err := ParseFingerprint(fp)
	require.NoError(t, err)
	assert.Equal(t, hex.EncodeToString(sum[:]), digest)
}

func TestFingerprint_Errors(t *testing.T) {
	_, err := Fingerprint(nil)
	assert.ErrorIs(t, err, pkey.ErrMissingPublic)

	_, err = ParseFingerprint("not-a-cid")
	assert.ErrorIs(t, err, ErrInvalidFingerprint)
}

func TestFingerprintBytes_Distinct(t *testing.T) {
	a, err := FingerprintBytes([]byte("a"))
	require.NoError(t, err)
	b, err := FingerprintBytes([]byte("b"))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestColonHex(t *testing.T) {
	assert.Equal(t, "", ColonHex(nil, 16, 4))
	assert.Equal(t, "  0a:ff\n", ColonHex([]byte{0x0a, 0xff}, 16, 2))

	data := make([]byte, 18)
	for i := range data {
		data[i] = byte(i)
	}
	want := "00:01:02:03:04:05:06:07:08:09:0a:0b:0c:0d:0e:0f:\n10:11\n"
	assert.Equal(t, want, ColonHex(data, 16, 0))
}
