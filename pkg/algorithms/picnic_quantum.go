//go:build quantum

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
	"github.com/jeremyhahn/go-pqsig/pkg/primitive/liboqs"
)

// PicnicMechanism is the liboqs mechanism used for picnic-default. Picnic
// was removed in liboqs 0.8.0, so picnic_L1_FS resolves only against
// liboqs 0.7.x. Set PQSIG_PICNIC_MECHANISM or the config file to choose a
// mechanism the linked liboqs provides.
var PicnicMechanism = liboqs.PicnicDefault

func picnicDefault() (*pkey.Descriptor, error) {
	p, err := liboqs.New(PicnicMechanism)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: liboqs %s lacks %s (Picnic was removed in liboqs 0.8.0): %v",
			ErrUnavailable, NamePicnicDefault, liboqs.Version(), PicnicMechanism, err)
	}
	return pkey.NewDescriptor(pkey.DescriptorConfig{
		ID:              PicnicDefault,
		Name:            NamePicnicDefault,
		LongName:        "PicnicL1FS_With_SHA512",
		OID:             PicnicOID,
		PrivateKeyLen:   p.PrivateKeySize(),
		PublicKeyLen:    p.PublicKeySize(),
		MaxSignatureLen: p.SignatureSize(),
		Primitive:       p,
	})
}
