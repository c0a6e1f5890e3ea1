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

package secure

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestZeroBytes(t *testing.T) {
	b := []byte{1, 2, 3, 4, 5}
	ZeroBytes(b)
	assert.Equal(t, []byte{0, 0, 0, 0, 0}, b)

	assert.NotPanics(t, func() { ZeroBytes(nil) })
	assert.NotPanics(t, func() { ZeroBytes([]byte{}) })
}

func TestClone(t *testing.T) {
	assert.Nil(t, Clone(nil))

	src := []byte{9, 8, 7}
	dst := Clone(src)
	assert.Equal(t, src, dst)

	dst[0] = 0
	assert.Equal(t, byte(9), src[0], "clone must not alias the source")

	assert.NotNil(t, Clone([]byte{}))
}
