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
	"sync"

	"github.com/jeremyhahn/go-pqsig/pkg/adapters/logger"
)

var (
	logMu     sync.RWMutex
	pkgLogger logger.Logger = logger.NewNoOpLogger()
)

// SetLogger sets the logger used by the package. A nil logger restores
// the default, which discards everything.
func SetLogger(l logger.Logger) {
	if l == nil {
		l = logger.NewNoOpLogger()
	}
	logMu.Lock()
	pkgLogger = l
	logMu.Unlock()
}

func log() logger.Logger {
	logMu.RLock()
	defer logMu.RUnlock()
	return pkgLogger
}
