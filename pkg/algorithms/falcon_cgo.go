//go:build cgo

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
	"github.com/jeremyhahn/go-pqsig/pkg/pkey"
	"github.com/jeremyhahn/go-pqsig/pkg/primitive/falcon"
)

func falcon1024() (*pkey.Descriptor, error) {
	return pkey.NewDescriptor(pkey.DescriptorConfig{
		ID:              Falcon1024,
		Name:            NameFalcon1024,
		LongName:        "Falcon-1024",
		PrivateKeyLen:   falcon.PrivateKeySize,
		PublicKeyLen:    falcon.PublicKeySize,
		MaxSignatureLen: falcon.MaxSignatureSize,
		Primitive:       falcon.New(),
	})
}
