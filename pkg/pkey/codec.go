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

// Codec converts key contexts to and from serialized bytes, resolving
// algorithm identifiers in a registry.
type Codec struct {
	registry *Registry
	format   Format
}

// NewCodec returns a codec over registry. A nil registry uses Default().
func NewCodec(registry *Registry, format Format) *Codec {
	if registry == nil {
		registry = Default()
	}
	return &Codec{registry: registry, format: format}
}

// Format returns the codec's framing
func (c *Codec) Format() Format { return c.format }

// Registry returns the registry used for decoding
func (c *Codec) Registry() *Registry { return c.registry }

// MarshalPrivateKey serializes the key pair held by ctx
func (c *Codec) MarshalPrivateKey(ctx *KeyContext) ([]byte, error) {
	rec, err := EncodePrivate(ctx)
	if err != nil {
		return nil, err
	}
	defer rec.Zero()
	return rec.Marshal(c.format)
}

// MarshalPublicKey serializes the public key held by ctx
func (c *Codec) MarshalPublicKey(ctx *KeyContext) ([]byte, error) {
	rec, err := EncodePublic(ctx)
	if err != nil {
		return nil, err
	}
	return rec.Marshal(c.format)
}

// ParsePrivateKey deserializes a key pair into a new context
func (c *Codec) ParsePrivateKey(data []byte) (*KeyContext, error) {
	rec, err := ParsePrivateRecord(data, c.format)
	if err != nil {
		return nil, err
	}
	defer rec.Zero()
	return c.registry.DecodePrivate(rec)
}

// ParsePublicKey deserializes a public key into a new verify-only context
func (c *Codec) ParsePublicKey(data []byte) (*KeyContext, error) {
	rec, err := ParsePublicRecord(data, c.format)
	if err != nil {
		return nil, err
	}
	return c.registry.DecodePublic(rec)
}
