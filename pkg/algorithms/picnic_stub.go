//go:build !quantum

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

package algorithms

import (
	"fmt"

	"github.com/jeremyhahn/go-pqsig/pkg/pkey"
)

// PicnicMechanism is the liboqs mechanism used for picnic-default. It has
// no effect without the quantum build tag.
var PicnicMechanism = "picnic_L1_FS"

func picnicDefault() (*pkey.Descriptor, error) {
	return nil, fmt.Errorf("%w: %s requires the quantum build tag", ErrUnavailable, NamePicnicDefault)
}
