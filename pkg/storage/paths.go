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

package storage

import (
	"strings"
)

// Key layout prefixes
const (
	PrivatePrefix = "private/"
	PublicPrefix  = "public/"
	keySuffix     = ".pem"
)

// PrivateKeyPath returns the storage key of a named private key:
// private/{name}.pem
func PrivateKeyPath(name string) string {
	return PrivatePrefix + name + keySuffix
}

// PublicKeyPath returns the storage key of a named public key:
// public/{name}.pem
func PublicKeyPath(name string) string {
	return PublicPrefix + name + keySuffix
}

// ListNames returns the key names stored under prefix, with the prefix
// and the ".pem" suffix stripped
func ListNames(backend Backend, prefix string) ([]string, error) {
	keys, err := backend.List(prefix)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(keys))
	for _, k := range keys {
		if !strings.HasSuffix(k, keySuffix) {
			continue
		}
		name := strings.TrimSuffix(strings.TrimPrefix(k, prefix), keySuffix)
		if name != "" && !strings.Contains(name, "/") {
			names = append(names, name)
		}
	}
	return names, nil
}
