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
	"crypto"
	"fmt"
)

// allowedDigests are the digests a host may select for a signature context
var allowedDigests = map[crypto.Hash]struct{}{
	crypto.SHA256: {},
	crypto.SHA384: {},
	crypto.SHA512: {},
}

// DigestAllowed reports whether h is in the digest allow-list
func DigestAllowed(h crypto.Hash) bool {
	_, ok := allowedDigests[h]
	return ok
}

// SetDigest records the digest a host selected for this context. Only
// SHA-256, SHA-384 and SHA-512 are accepted. The choice is informational:
// signatures are always computed over the raw message.
func (c *KeyContext) SetDigest(h crypto.Hash) error {
	if !DigestAllowed(h) {
		return fmt.Errorf("%w: %s", ErrUnsupportedDigest, digestName(h))
	}
	c.digest.Store(uint32(h))
	return nil
}

func digestName(h crypto.Hash) string {
	if h == 0 {
		return "none"
	}
	return h.String()
}
