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
	"fmt"
	"sort"
	"sync"

	"github.com/jeremyhahn/go-pqsig/pkg/adapters/logger"
	"github.com/jeremyhahn/go-pqsig/pkg/metrics"
)

// Registry maps algorithm identifiers and names to descriptors. All
// methods are safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	byID    map[ID]*Descriptor
	byName  map[string]*Descriptor
	metrics bool
}

// RegistryOption configures a Registry
type RegistryOption func(*Registry)

// WithMetrics reports the registry size to the algorithms_registered gauge
func WithMetrics() RegistryOption {
	return func(r *Registry) { r.metrics = true }
}

// NewRegistry returns an empty registry
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		byID:   make(map[ID]*Descriptor),
		byName: make(map[string]*Descriptor),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var defaultRegistry = NewRegistry(WithMetrics())

// Default returns the process-wide registry
func Default() *Registry {
	return defaultRegistry
}

// Register adds d to the registry. Registering the same descriptor again
// is a no-op. A different descriptor claiming a registered id or name
// fails with ErrAlreadyRegistered and leaves the table unchanged.
func (r *Registry) Register(d *Descriptor) error {
	if d == nil {
		return fmt.Errorf("%w: nil descriptor", ErrInvalidDescriptor)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.byID[d.id]; ok {
		if existing == d {
			return nil
		}
		return fmt.Errorf("%w: id %d is held by %s", ErrAlreadyRegistered, d.id, existing.name)
	}
	if existing, ok := r.byName[d.name]; ok {
		return fmt.Errorf("%w: name %q is held by id %d", ErrAlreadyRegistered, d.name, existing.id)
	}

	r.byID[d.id] = d
	r.byName[d.name] = d
	if r.metrics {
		metrics.SetAlgorithmsRegistered(len(r.byID))
	}
	log().Debug("registered algorithm",
		logger.Algorithm(d.name),
		logger.Int("id", int(d.id)),
		logger.Int("sk_len", d.privateKeyLen),
		logger.Int("pk_len", d.publicKeyLen),
		logger.Int("sig_len", d.maxSignatureLen))
	return nil
}

// Lookup returns the descriptor registered under id
func (r *Registry) Lookup(id ID) (*Descriptor, error) {
	r.mu.RLock()
	d, ok := r.byID[id]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: id %d", ErrUnknownAlgorithm, id)
	}
	return d, nil
}

// LookupName returns the descriptor registered under name
func (r *Registry) LookupName(name string) (*Descriptor, error) {
	r.mu.RLock()
	d, ok := r.byName[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, name)
	}
	return d, nil
}

// Algorithms returns the registered descriptors ordered by id
func (r *Registry) Algorithms() []*Descriptor {
	r.mu.RLock()
	out := make([]*Descriptor, 0, len(r.byID))
	for _, d := range r.byID {
		out = append(out, d)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

// Len returns the number of registered algorithms
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

// UnregisterAll empties the registry. Key contexts must be released
// first: if any descriptor still has live contexts UnregisterAll panics,
// since the caller has violated key lifetimes, and the table is left intact.
func (r *Registry) UnregisterAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, d := range r.byID {
		if n := d.refs.Load(); n > 0 {
			panic(fmt.Sprintf("pkey: unregister %s with %d live key contexts", d, n))
		}
	}

	r.byID = make(map[ID]*Descriptor)
	r.byName = make(map[string]*Descriptor)
	if r.metrics {
		metrics.SetAlgorithmsRegistered(0)
	}
	log().Debug("unregistered all algorithms")
}
