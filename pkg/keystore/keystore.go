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

// Package keystore persists named key pairs as PEM-armored records on a
// storage backend. A name maps to private/{name}.pem and, once the key
// pair is saved, public/{name}.pem.
package keystore

import (
	"errors"
	"fmt"
	"sort"

	"github.com/jeremyhahn/go-pqsig/pkg/adapters/logger"
	"github.com/jeremyhahn/go-pqsig/pkg/encoding"
	"github.com/jeremyhahn/go-pqsig/pkg/pkey"
	"github.com/jeremyhahn/go-pqsig/pkg/storage"
	"github.com/jeremyhahn/go-pqsig/pkg/validation"
)

var (
	// ErrKeyNotFound is returned when no record exists under a name
	ErrKeyNotFound = errors.New("keystore: key not found")

	// ErrKeyExists is returned when saving over an existing name
	ErrKeyExists = errors.New("keystore: key already exists")

	// ErrInvalidName is returned for names that fail validation
	ErrInvalidName = errors.New("keystore: invalid key name")

	// ErrInvalidConfig is returned by New when required fields are missing
	ErrInvalidConfig = errors.New("keystore: invalid configuration")
)

// Config holds the dependencies of a KeyStore
type Config struct {
	// Backend stores the PEM files. Required.
	Backend storage.Backend

	// Codec frames records. Defaults to DER over the default registry.
	Codec *pkey.Codec

	// Logger defaults to a no-op logger
	Logger logger.Logger
}

// Entry describes one stored name
type Entry struct {
	Name    string `json:"name"`
	Private bool   `json:"private"`
	Public  bool   `json:"public"`
}

// KeyStore reads and writes named keys. It is safe for concurrent use
// when its backend is.
type KeyStore struct {
	backend storage.Backend
	codec   *pkey.Codec
	logger  logger.Logger
}

// New creates a KeyStore from cfg
func New(cfg *Config) (*KeyStore, error) {
	if cfg == nil || cfg.Backend == nil {
		return nil, fmt.Errorf("%w: backend is required", ErrInvalidConfig)
	}
	codec := cfg.Codec
	if codec == nil {
		codec = pkey.NewCodec(nil, pkey.FormatDER)
	}
	log := cfg.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &KeyStore{
		backend: cfg.Backend,
		codec:   codec,
		logger:  log,
	}, nil
}

// Codec returns the codec used for records
func (ks *KeyStore) Codec() *pkey.Codec {
	return ks.codec
}

// Save stores the key pair held by ctx under name. Both the private and
// the public record are written; the name must be unused.
func (ks *KeyStore) Save(name string, ctx *pkey.KeyContext) error {
	if err := checkName(name); err != nil {
		return err
	}
	if err := ks.ensureUnused(name); err != nil {
		return err
	}

	privPEM, err := encoding.EncodePrivateKeyPEM(ctx, ks.codec)
	if err != nil {
		return fmt.Errorf("keystore: failed to encode private key %q: %w", name, err)
	}
	pubPEM, err := encoding.EncodePublicKeyPEM(ctx, ks.codec)
	if err != nil {
		return fmt.Errorf("keystore: failed to encode public key %q: %w", name, err)
	}

	opts := &storage.Options{Exclusive: true}
	if err := ks.backend.Put(storage.PrivateKeyPath(name), privPEM, opts); err != nil {
		return ks.mapError(name, err)
	}
	if err := ks.backend.Put(storage.PublicKeyPath(name), pubPEM, opts); err != nil {
		if derr := ks.backend.Delete(storage.PrivateKeyPath(name)); derr != nil {
			ks.logger.Warn("failed to roll back private key",
				logger.String("name", name), logger.Error(derr))
		}
		return ks.mapError(name, err)
	}

	ks.logger.Info("saved key pair",
		logger.String("name", name),
		logger.Algorithm(ctx.Algorithm().Name()))
	return nil
}

// SavePublic stores only the public key held by ctx under name
func (ks *KeyStore) SavePublic(name string, ctx *pkey.KeyContext) error {
	if err := checkName(name); err != nil {
		return err
	}
	if err := ks.ensureUnused(name); err != nil {
		return err
	}
	pubPEM, err := encoding.EncodePublicKeyPEM(ctx, ks.codec)
	if err != nil {
		return fmt.Errorf("keystore: failed to encode public key %q: %w", name, err)
	}
	if err := ks.backend.Put(storage.PublicKeyPath(name), pubPEM, &storage.Options{Exclusive: true}); err != nil {
		return ks.mapError(name, err)
	}
	ks.logger.Info("saved public key",
		logger.String("name", name),
		logger.Algorithm(ctx.Algorithm().Name()))
	return nil
}

// Load decodes the private record stored under name into a new context.
// The caller owns the returned reference.
func (ks *KeyStore) Load(name string) (*pkey.KeyContext, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	data, err := ks.backend.Get(storage.PrivateKeyPath(name))
	if err != nil {
		return nil, ks.mapError(name, err)
	}
	ctx, err := encoding.DecodePrivateKeyPEM(data, ks.codec)
	if err != nil {
		return nil, fmt.Errorf("keystore: failed to decode private key %q: %w", name, err)
	}
	ks.logger.Debug("loaded private key", logger.String("name", name), logger.KeyID(ctx.ID()))
	return ctx, nil
}

// LoadPublic decodes the public key stored under name into a verify-only
// context. Names saved with Save fall back to the private record when the
// public file is missing.
func (ks *KeyStore) LoadPublic(name string) (*pkey.KeyContext, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	data, err := ks.backend.Get(storage.PublicKeyPath(name))
	if errors.Is(err, storage.ErrNotFound) {
		data, err = ks.backend.Get(storage.PrivateKeyPath(name))
	}
	if err != nil {
		return nil, ks.mapError(name, err)
	}
	ctx, err := encoding.DecodePublicKeyPEM(data, ks.codec)
	if err != nil {
		return nil, fmt.Errorf("keystore: failed to decode public key %q: %w", name, err)
	}
	return ctx, nil
}

// PEM returns the stored PEM bytes for name. With private set the
// private record is returned, otherwise the public record.
func (ks *KeyStore) PEM(name string, private bool) ([]byte, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	key := storage.PublicKeyPath(name)
	if private {
		key = storage.PrivateKeyPath(name)
	}
	data, err := ks.backend.Get(key)
	if err != nil {
		return nil, ks.mapError(name, err)
	}
	return data, nil
}

// List returns every stored name sorted alphabetically
func (ks *KeyStore) List() ([]Entry, error) {
	private, err := storage.ListNames(ks.backend, storage.PrivatePrefix)
	if err != nil {
		return nil, fmt.Errorf("keystore: failed to list keys: %w", err)
	}
	public, err := storage.ListNames(ks.backend, storage.PublicPrefix)
	if err != nil {
		return nil, fmt.Errorf("keystore: failed to list keys: %w", err)
	}

	entries := make(map[string]*Entry)
	get := func(name string) *Entry {
		e, ok := entries[name]
		if !ok {
			e = &Entry{Name: name}
			entries[name] = e
		}
		return e
	}
	for _, name := range private {
		get(name).Private = true
	}
	for _, name := range public {
		get(name).Public = true
	}

	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Delete removes every record stored under name
func (ks *KeyStore) Delete(name string) error {
	if err := checkName(name); err != nil {
		return err
	}
	deleted := 0
	for _, key := range []string{storage.PrivateKeyPath(name), storage.PublicKeyPath(name)} {
		err := ks.backend.Delete(key)
		switch {
		case err == nil:
			deleted++
		case errors.Is(err, storage.ErrNotFound):
		default:
			return ks.mapError(name, err)
		}
	}
	if deleted == 0 {
		return fmt.Errorf("%w: %s", ErrKeyNotFound, name)
	}
	ks.logger.Info("deleted key", logger.String("name", name))
	return nil
}

// Fingerprint returns the content identifier of the public key stored
// under name
func (ks *KeyStore) Fingerprint(name string) (string, error) {
	ctx, err := ks.LoadPublic(name)
	if err != nil {
		return "", err
	}
	defer ctx.Release()
	return encoding.Fingerprint(ctx)
}

// Close closes the backend
func (ks *KeyStore) Close() error {
	return ks.backend.Close()
}

func (ks *KeyStore) ensureUnused(name string) error {
	for _, key := range []string{storage.PrivateKeyPath(name), storage.PublicKeyPath(name)} {
		exists, err := ks.backend.Exists(key)
		if err != nil {
			return ks.mapError(name, err)
		}
		if exists {
			return fmt.Errorf("%w: %s", ErrKeyExists, name)
		}
	}
	return nil
}

func (ks *KeyStore) mapError(name string, err error) error {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return fmt.Errorf("%w: %s", ErrKeyNotFound, name)
	case errors.Is(err, storage.ErrAlreadyExists):
		return fmt.Errorf("%w: %s", ErrKeyExists, name)
	default:
		return fmt.Errorf("keystore: %s: %w", name, err)
	}
}

func checkName(name string) error {
	if err := validation.ValidateKeyName(name); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidName, err)
	}
	return nil
}
