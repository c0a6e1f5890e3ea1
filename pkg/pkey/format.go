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
	"fmt"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/cryptobyte"
	"golang.org/x/crypto/cryptobyte/asn1"
)

// Format selects the binary framing of serialized key records
type Format int

const (
	// FormatDER frames records as ASN.1 DER:
	//
	//	PrivateKey ::= SEQUENCE { algorithm INTEGER, secret OCTET STRING, public OCTET STRING }
	//	PublicKey  ::= SEQUENCE { algorithm INTEGER, public OCTET STRING }
	FormatDER Format = iota

	// FormatCBOR frames records as deterministic CBOR arrays with the same
	// field order as DER
	FormatCBOR
)

// String returns the lower-case format name
func (f Format) String() string {
	switch f {
	case FormatDER:
		return "der"
	case FormatCBOR:
		return "cbor"
	default:
		return fmt.Sprintf("format(%d)", int(f))
	}
}

// ParseFormat converts "der" or "cbor" to a Format
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "der", "asn1":
		return FormatDER, nil
	case "cbor":
		return FormatCBOR, nil
	default:
		return FormatDER, fmt.Errorf("pkey: unknown record format %q", s)
	}
}

type privateRecordCBOR struct {
	_           struct{} `cbor:",toarray"`
	AlgorithmID int64
	Secret      []byte
	Public      []byte
}

type publicRecordCBOR struct {
	_           struct{} `cbor:",toarray"`
	AlgorithmID int64
	Public      []byte
}

var cborEncMode = func() cbor.EncMode {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	return em
}()

// cborDecMode rejects indefinite lengths, tags and duplicate keys. Parsed
// records are also re-encoded and compared with the input, which catches
// non-minimal heads the options do not cover.
var cborDecMode = func() cbor.DecMode {
	dm, err := cbor.DecOptions{
		DupMapKey:   cbor.DupMapKeyEnforcedAPF,
		IndefLength: cbor.IndefLengthForbidden,
		TagsMd:      cbor.TagsForbidden,
	}.DecMode()
	if err != nil {
		panic(err)
	}
	return dm
}()

// unmarshalCanonical decodes data into v and fails unless data is exactly
// the deterministic encoding of the decoded value
func unmarshalCanonical(data []byte, v interface{}, canonical func() ([]byte, error)) error {
	if err := cborDecMode.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	enc, err := canonical()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	if !bytes.Equal(enc, data) {
		return fmt.Errorf("%w: non-canonical CBOR encoding", ErrMalformedRecord)
	}
	return nil
}

// Marshal encodes the record in the given format
func (r *PrivateRecord) Marshal(format Format) ([]byte, error) {
	switch format {
	case FormatDER:
		var b cryptobyte.Builder
		b.AddASN1(asn1.SEQUENCE, func(b *cryptobyte.Builder) {
			b.AddASN1Int64(int64(r.AlgorithmID))
			b.AddASN1OctetString(r.Secret)
			b.AddASN1OctetString(r.Public)
		})
		return b.Bytes()
	case FormatCBOR:
		return cborEncMode.Marshal(privateRecordCBOR{
			AlgorithmID: int64(r.AlgorithmID),
			Secret:      nonNil(r.Secret),
			Public:      nonNil(r.Public),
		})
	default:
		return nil, fmt.Errorf("pkey: unknown record format %s", format)
	}
}

// Marshal encodes the record in the given format
func (r *PublicRecord) Marshal(format Format) ([]byte, error) {
	switch format {
	case FormatDER:
		var b cryptobyte.Builder
		b.AddASN1(asn1.SEQUENCE, func(b *cryptobyte.Builder) {
			b.AddASN1Int64(int64(r.AlgorithmID))
			b.AddASN1OctetString(r.Public)
		})
		return b.Bytes()
	case FormatCBOR:
		return cborEncMode.Marshal(publicRecordCBOR{
			AlgorithmID: int64(r.AlgorithmID),
			Public:      nonNil(r.Public),
		})
	default:
		return nil, fmt.Errorf("pkey: unknown record format %s", format)
	}
}

// ParsePrivateRecord decodes a private record. Trailing bytes are an error.
func ParsePrivateRecord(data []byte, format Format) (*PrivateRecord, error) {
	switch format {
	case FormatDER:
		input := cryptobyte.String(data)
		var seq, secret, public cryptobyte.String
		var id int64
		if !input.ReadASN1(&seq, asn1.SEQUENCE) || !input.Empty() {
			return nil, fmt.Errorf("%w: invalid private key sequence", ErrMalformedRecord)
		}
		if !seq.ReadASN1Integer(&id) ||
			!seq.ReadASN1(&secret, asn1.OCTET_STRING) ||
			!seq.ReadASN1(&public, asn1.OCTET_STRING) ||
			!seq.Empty() {
			return nil, fmt.Errorf("%w: invalid private key fields", ErrMalformedRecord)
		}
		return &PrivateRecord{
			AlgorithmID: ID(id),
			Secret:      append([]byte{}, secret...),
			Public:      append([]byte{}, public...),
		}, nil
	case FormatCBOR:
		var rec privateRecordCBOR
		out := &PrivateRecord{}
		err := unmarshalCanonical(data, &rec, func() ([]byte, error) {
			out.AlgorithmID = ID(rec.AlgorithmID)
			out.Secret = nonNil(rec.Secret)
			out.Public = nonNil(rec.Public)
			return out.Marshal(FormatCBOR)
		})
		if err != nil {
			return nil, err
		}
		return out, nil
	default:
		return nil, fmt.Errorf("pkey: unknown record format %s", format)
	}
}

// ParsePublicRecord decodes a public record. Trailing bytes are an error.
func ParsePublicRecord(data []byte, format Format) (*PublicRecord, error) {
	switch format {
	case FormatDER:
		input := cryptobyte.String(data)
		var seq, public cryptobyte.String
		var id int64
		if !input.ReadASN1(&seq, asn1.SEQUENCE) || !input.Empty() {
			return nil, fmt.Errorf("%w: invalid public key sequence", ErrMalformedRecord)
		}
		if !seq.ReadASN1Integer(&id) ||
			!seq.ReadASN1(&public, asn1.OCTET_STRING) ||
			!seq.Empty() {
			return nil, fmt.Errorf("%w: invalid public key fields", ErrMalformedRecord)
		}
		return &PublicRecord{
			AlgorithmID: ID(id),
			Public:      append([]byte{}, public...),
		}, nil
	case FormatCBOR:
		var rec publicRecordCBOR
		out := &PublicRecord{}
		err := unmarshalCanonical(data, &rec, func() ([]byte, error) {
			out.AlgorithmID = ID(rec.AlgorithmID)
			out.Public = nonNil(rec.Public)
			return out.Marshal(FormatCBOR)
		})
		if err != nil {
			return nil, err
		}
		return out, nil
	default:
		return nil, fmt.Errorf("pkey: unknown record format %s", format)
	}
}

func nonNil(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	return b
}
