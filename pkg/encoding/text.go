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
	"strings"
)

// Bytes per line used by the text dumps
const (
	PublicKeyDumpWidth = 16
	SignatureDumpWidth = 32
)

// ColonHex renders data as lower-case "xx:xx:..." lines of perLine bytes,
// each line prefixed by indent spaces. The final byte has no trailing
// colon.
func ColonHex(data []byte, perLine, indent int) string {
	if len(data) == 0 {
		return ""
	}
	if perLine <= 0 {
		perLine = PublicKeyDumpWidth
	}
	pad := strings.Repeat(" ", indent)

	var b strings.Builder
	for i, c := range data {
		if i%perLine == 0 {
			if i > 0 {
				b.WriteByte('\n')
			}
			b.WriteString(pad)
		}
		fmt.Fprintf(&b, "%02x", c)
		if i != len(data)-1 {
			b.WriteByte(':')
		}
	}
	b.WriteByte('\n')
	return b.String()
}
