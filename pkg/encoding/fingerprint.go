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
	"fmt"

	"github.com/ipfs/go-cid"
	"github.com/jeremyhahn/go-pqsig/pkg/pkey"
	"github.com/multiformats/go-multihash"
)

// Fingerprint returns a CIDv1 (raw codec, sha2-256 multihash) over the DER
// public key record of ctx. Equal public keys of the same algorithm always
// share a fingerprint, whatever framing they are stored in.
func Fingerprint(ctx *pkey.KeyContext) (string, error) {
	rec, err := pkey.EncodePublic(ctx)
	if err != nil {
		return "", err
	}
	der, err := rec.Marshal(pkey.FormatDER)
	if err != nil {
		return "", err
	}
	return FingerprintBytes(der)
}

// FingerprintBytes returns the CIDv1 fingerprint of data
func FingerprintBytes(data []byte) (string, error) {
	sum, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		return "", err
	}
	return cid.NewCidV1(cid.Raw, sum).String(), nil
}

// ParseFingerprint validates a fingerprint string and returns the hex
// digest it carries
func ParseFingerprint(s string) (string, error) {
	c, err := cid.Decode(s)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidFingerprint, err)
	}
	decoded, err := multihash.Decode(c.Hash())
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidFingerprint, err)
	}
	if decoded.Code != multihash.SHA2_256 {
		return "", fmt.Errorf("%w: unexpected hash %s", ErrInvalidFingerprint, decoded.Name)
	}
	return fmt.Sprintf("%x", decoded.Digest), nil
}
