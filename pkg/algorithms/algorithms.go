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

// Package algorithms registers the built-in signature algorithms.
//
// ML-DSA and the Ed25519/Ed448 Dilithium hybrids are always available.
// falcon-1024 needs cgo. picnic-default needs the "quantum" build tag and a
// liboqs that still ships Picnic: liboqs removed it in 0.8.0, so with the
// pinned liboqs-go it is only found when linked against liboqs 0.7.x, or
// when PicnicMechanism names another mechanism. Algorithms missing from a
// build are skipped with a warning and reported by Skipped.
package algorithms

import (
	"encoding/asn1"
	"errors"
	"fmt"
	"sync"

	"github.com/cloudflare/circl/sign"
	"github.com/cloudflare/circl/sign/eddilithium2"
	"github.com/cloudflare/circl/sign/eddilithium3"
	"github.com/cloudflare/circl/sign/mldsa/mldsa44"
	"github.com/cloudflare/circl/sign/mldsa/mldsa65"
	"github.com/cloudflare/circl/sign/mldsa/mldsa87"
	"github.com/jeremyhahn/go-pqsig/pkg/adapters/logger"
	"github.com/jeremyhahn/go-pqsig/pkg/pkey"
	"github.com/jeremyhahn/go-pqsig/pkg/primitive/circl"
)

// Stable algorithm identifiers. These values are written into every
// serialized key and must never change.
const (
	PicnicDefault     pkey.ID = 1
	MLDSA44           pkey.ID = 2
	MLDSA65           pkey.ID = 3
	MLDSA87           pkey.ID = 4
	Ed25519Dilithium2 pkey.ID = 5
	Ed448Dilithium3   pkey.ID = 6
	Falcon1024        pkey.ID = 7
)

// Algorithm names
const (
	NamePicnicDefault     = "picnic-default"
	NameMLDSA44           = "ml-dsa-44"
	NameMLDSA65           = "ml-dsa-65"
	NameMLDSA87           = "ml-dsa-87"
	NameEd25519Dilithium2 = "ed25519-dilithium2"
	NameEd448Dilithium3   = "ed448-dilithium3"
	NameFalcon1024        = "falcon-1024"
)

// PicnicOID is the object identifier assigned to PicnicL1FS_With_SHA512
var PicnicOID = asn1.ObjectIdentifier{1, 3, 6, 1, 4, 1, 311, 89, 2, 1, 7}

// ErrUnavailable is returned by a builder when the algorithm is not
// compiled into this binary
var ErrUnavailable = errors.New("algorithms: not available in this build")

// Unavailable describes a built-in algorithm that this build could not
// register
type Unavailable struct {
	ID     pkey.ID
	Name   string
	Reason error
}

// builder constructs the descriptor for one built-in algorithm
type builder struct {
	id    pkey.ID
	name  string
	build func() (*pkey.Descriptor, error)
}

func builders() []builder {
	return []builder{
		{PicnicDefault, NamePicnicDefault, picnicDefault},
		circlBuilder(MLDSA44, NameMLDSA44, mldsa44.Scheme()),
		circlBuilder(MLDSA65, NameMLDSA65, mldsa65.Scheme()),
		circlBuilder(MLDSA87, NameMLDSA87, mldsa87.Scheme()),
		circlBuilder(Ed25519Dilithium2, NameEd25519Dilithium2, eddilithium2.Scheme()),
		circlBuilder(Ed448Dilithium3, NameEd448Dilithium3, eddilithium3.Scheme()),
		{Falcon1024, NameFalcon1024, falcon1024},
	}
}

func circlBuilder(id pkey.ID, name string, scheme sign.Scheme) builder {
	return builder{id, name, func() (*pkey.Descriptor, error) {
		p := circl.New(scheme)
		return pkey.NewDescriptor(pkey.DescriptorConfig{
			ID:              id,
			Name:            name,
			LongName:        scheme.Name(),
			OID:             p.OID(),
			PrivateKeyLen:   p.PrivateKeySize(),
			PublicKeyLen:    p.PublicKeySize(),
			MaxSignatureLen: p.SignatureSize(),
			Primitive:       p,
		})
	}}
}

// Register adds every algorithm available in this build to r
func Register(r *pkey.Registry, log logger.Logger) error {
	_, err := register(r, log)
	return err
}

func register(r *pkey.Registry, log logger.Logger) ([]Unavailable, error) {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	var skipped []Unavailable
	for _, b := range builders() {
		d, err := b.build()
		if errors.Is(err, ErrUnavailable) {
			log.Warn("skipping algorithm", logger.Algorithm(b.name), logger.Error(err))
			skipped = append(skipped, Unavailable{ID: b.id, Name: b.name, Reason: err})
			continue
		}
		if err != nil {
			return nil, err
		}
		if err := r.Register(d); err != nil {
			return nil, fmt.Errorf("algorithms: register %s: %w", d.Name(), err)
		}
	}
	return skipped, nil
}

var (
	initMu      sync.Mutex
	initialized bool
	descriptors []*pkey.Descriptor
	unavailable []Unavailable
)

// AddAll registers the built-in algorithms in pkey.Default() once.
// Concurrent callers block until the first registration finishes. After
// Shutdown, AddAll registers the same descriptors again.
func AddAll(log logger.Logger) error {
	initMu.Lock()
	defer initMu.Unlock()

	if initialized {
		return nil
	}
	reg := pkey.Default()
	if descriptors == nil {
		tmp := pkey.NewRegistry()
		skipped, err := register(tmp, log)
		if err != nil {
			return err
		}
		descriptors = tmp.Algorithms()
		unavailable = skipped
	}
	for _, d := range descriptors {
		if err := reg.Register(d); err != nil {
			return fmt.Errorf("algorithms: register %s: %w", d.Name(), err)
		}
	}
	initialized = true
	return nil
}

// Shutdown empties pkey.Default(). It panics if key contexts are still
// alive, see pkey.Registry.UnregisterAll.
func Shutdown() {
	initMu.Lock()
	defer initMu.Unlock()

	pkey.Default().UnregisterAll()
	initialized = false
}

// Skipped returns the built-in algorithms the first AddAll could not
// register, in identifier order
func Skipped() []Unavailable {
	initMu.Lock()
	defer initMu.Unlock()
	return append([]Unavailable(nil), unavailable...)
}

// Initialized reports whether AddAll has run since the last Shutdown
func Initialized() bool {
	initMu.Lock()
	defer initMu.Unlock()
	return initialized
}
