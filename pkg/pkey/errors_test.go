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
	"testing"

	"github.com/jeremyhahn/go-pqsig/pkg/adapters/logger"
	"github.com/stretchr/testify/assert"
)

func TestErrorType(t *testing.T) {
	assert.Equal(t, "length_mismatch", errorType(fmt.Errorf("%w: detail", ErrLengthMismatch)))
	assert.Equal(t, "signature_failed", errorType(ErrSignatureFailed))
	assert.Equal(t, "unknown_algorithm", errorType(ErrUnknownAlgorithm))
	assert.Equal(t, "internal", errorType(assert.AnError))
}

func TestSetLogger(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(logger.NewSlogAdapter(&logger.SlogConfig{Output: &buf, Level: logger.LevelDebug}))
	defer SetLogger(nil)

	_, d := newTestRegistry(t, nil)
	c := newTestKey(t, d)
	c.Release()

	out := buf.String()
	assert.Contains(t, out, "registered algorithm")
	assert.Contains(t, out, "generated key pair")
	assert.Contains(t, out, "freed key context")
	assert.Contains(t, out, "algorithm="+testAlgorithm)
}
