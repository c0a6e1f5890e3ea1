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

// Package encoding armors serialized keys as PEM and derives content
// addressed key fingerprints.
package encoding

import (
	"bytes"
	"encoding/pem"
	"fmt"

	"github.com/jeremyhahn/go-pqsig/pkg/pkey"
)

// PEM block types
const (
	PEMTypePrivateKey = "PQ PRIVATE KEY"
	PEMTypePublicKey  = "PQ PUBLIC KEY"
)

// PEM headers
const (
	HeaderAlgorithm = "Algorithm"
	HeaderFormat    = "Format"
)

// EncodePrivateKeyPEM serializes the key pair held by ctx with codec and
// wraps it in a "PQ PRIVATE KEY" block.
//
// Example:
//
//	pemData, err := encoding.EncodePrivateKeyPEM(ctx, pkey.NewCodec(nil, pkey.FormatDER))
func EncodePrivateKeyPEM(ctx *pkey.KeyContext, codec *pkey.Codec) ([]byte, error) {
	body, err := codec.MarshalPrivateKey(ctx)
	if err != nil {
		return nil, err
	}
	return encodeBlock(PEMTypePrivateKey, ctx, codec, body)
}

// EncodePublicKeyPEM serializes the public key held by ctx with codec and
// wraps it in a "PQ PUBLIC KEY" block
func EncodePublicKeyPEM(ctx *pkey.KeyContext, codec *pkey.Codec) ([]byte, error) {
	body, err := codec.MarshalPublicKey(ctx)
	if err != nil {
		return nil, err
	}
	return encodeBlock(PEMTypePublicKey, ctx, codec, body)
}

func encodeBlock(blockType string, ctx *pkey.KeyContext, codec *pkey.Codec, body []byte) ([]byte, error) {
	block := &pem.Block{
		Type: blockType,
		Headers: map[string]string{
			HeaderAlgorithm: ctx.Algorithm().Name(),
			HeaderFormat:    codec.Format().String(),
		},
		Bytes: body,
	}
	var buf bytes.Buffer
	if err := pem.Encode(&buf, block); err != nil {
		return nil, fmt.Errorf("failed to encode PEM: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodePrivateKeyPEM parses a "PQ PRIVATE KEY" block into a new context.
// The Format header, when present, selects the record framing; otherwise
// the codec's format is used. Headers are informational: the algorithm is
// always taken from the record body.
func DecodePrivateKeyPEM(data []byte, codec *pkey.Codec) (*pkey.KeyContext, error) {
	block, err := decodeBlock(data, PEMTypePrivateKey)
	if err != nil {
		return nil, err
	}
	c, err := blockCodec(block, codec)
	if err != nil {
		return nil, err
	}
	return c.ParsePrivateKey(block.Bytes)
}

// DecodePublicKeyPEM parses a "PQ PUBLIC KEY" block into a new verify-only
// context. A "PQ PRIVATE KEY" block is accepted too and yields only its
// public half.
func DecodePublicKeyPEM(data []byte, codec *pkey.Codec) (*pkey.KeyContext, error) {
	block, err := decodeBlock(data, PEMTypePublicKey, PEMTypePrivateKey)
	if err != nil {
		return nil, err
	}
	c, err := blockCodec(block, codec)
	if err != nil {
		return nil, err
	}
	if block.Type == PEMTypePublicKey {
		return c.ParsePublicKey(block.Bytes)
	}

	priv, err := c.ParsePrivateKey(block.Bytes)
	if err != nil {
		return nil, err
	}
	defer priv.Release()
	pubBody, err := c.MarshalPublicKey(priv)
	if err != nil {
		return nil, err
	}
	return c.ParsePublicKey(pubBody)
}

// BlockType returns the type of the first PEM block in data
func BlockType(data []byte) (string, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return "", ErrInvalidPEMEncoding
	}
	return block.Type, nil
}

func decodeBlock(data []byte, types ...string) (*pem.Block, error) {
	if len(data) == 0 {
		return nil, ErrInvalidData
	}
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, ErrInvalidPEMEncoding
	}
	for _, t := range types {
		if block.Type == t {
			return block, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnexpectedBlockType, block.Type)
}

func blockCodec(block *pem.Block, codec *pkey.Codec) (*pkey.Codec, error) {
	name, ok := block.Headers[HeaderFormat]
	if !ok {
		return codec, nil
	}
	format, err := pkey.ParseFormat(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidData, err)
	}
	if format == codec.Format() {
		return codec, nil
	}
	return pkey.NewCodec(codec.Registry(), format), nil
}
