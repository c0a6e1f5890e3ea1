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

package cli

import (
	"encoding/pem"
	"errors"
	"fmt"
	"os"

	"github.com/jeremyhahn/go-pqsig/pkg/adapters/logger"
	"github.com/jeremyhahn/go-pqsig/pkg/encoding"
	"github.com/jeremyhahn/go-pqsig/pkg/keystore"
	"github.com/jeremyhahn/go-pqsig/pkg/pkey"
	"github.com/spf13/cobra"
)

const (
	keyTypePrivate = "private"
	keyTypePublic  = "public"
)

func (a *app) keygenCommand() *cobra.Command {
	var (
		algorithm string
		force     bool
	)
	cmd := &cobra.Command{
		Use:   "keygen NAME",
		Short: "Generate a key pair and store it under NAME",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if algorithm == "" {
				algorithm = a.cfg.Algorithm.Default
			}
			d, err := a.lookupAlgorithm(algorithm)
			if err != nil {
				return err
			}
			m, err := a.registry.Method(d.ID(), a.cfg.KeyFormat())
			if err != nil {
				return err
			}

			a.printVerbose(cmd, "generating %s key pair", d.Name())
			ctx, err := m.Keygen()
			if err != nil {
				return err
			}
			defer ctx.Release()

			if force {
				if err := a.store.Delete(name); err != nil && !errors.Is(err, keystore.ErrKeyNotFound) {
					return err
				}
			}
			if err := a.store.Save(name, ctx); err != nil {
				return err
			}

			info, err := newKeyInfo(name, keyTypePrivate, a.cfg.KeyFormat(), ctx)
			if err != nil {
				return err
			}
			return a.printer.PrintKeyInfo(info)
		},
	}
	cmd.Flags().StringVarP(&algorithm, "algorithm", "a", "", "algorithm name or id (default from config)")
	cmd.Flags().BoolVar(&force, "force", false, "replace an existing key with the same name")
	return cmd
}

func (a *app) pubkeyCommand() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "pubkey NAME",
		Short: "Export the public key stored under NAME as PEM",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := a.store.LoadPublic(args[0])
			if err != nil {
				return err
			}
			defer ctx.Release()

			data, err := encoding.EncodePublicKeyPEM(ctx, a.store.Codec())
			if err != nil {
				return err
			}
			if out == "" {
				return a.printer.PrintPEM(data)
			}
			// #nosec G306 - public key material
			if err := os.WriteFile(out, data, 0644); err != nil {
				return fmt.Errorf("failed to write public key: %w", err)
			}
			return a.printer.PrintSuccess(fmt.Sprintf("public key written to %s", out))
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "write the PEM to this file instead of stdout")
	return cmd
}

func (a *app) listCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List stored keys",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := a.store.List()
			if err != nil {
				return err
			}
			return a.printer.PrintKeyList(entries)
		},
	}
}

func (a *app) deleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "delete NAME",
		Aliases: []string{"rm"},
		Short:   "Delete the key stored under NAME",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.store.Delete(args[0]); err != nil {
				return err
			}
			return a.printer.PrintSuccess(fmt.Sprintf("deleted %s", args[0]))
		},
	}
}

func (a *app) inspectCommand() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "inspect [NAME]",
		Short: "Print the algorithm, fingerprint and public key of a key",
		Long: `Print the algorithm, fingerprint and public key of a stored key, or of
a PEM file given with --file. The public key is dumped as hex bytes.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				name string
				data []byte
				err  error
			)
			switch {
			case path != "":
				// #nosec G304 - path is provided by the user
				data, err = os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("failed to read %s: %w", path, err)
				}
			case len(args) == 1:
				name = args[0]
				data, err = a.store.PEM(name, true)
				if errors.Is(err, keystore.ErrKeyNotFound) {
					data, err = a.store.PEM(name, false)
				}
				if err != nil {
					return err
				}
			default:
				return fmt.Errorf("a key name or --file is required")
			}

			info, err := a.inspectPEM(name, data)
			if err != nil {
				return err
			}
			return a.printer.PrintKeyInfo(info)
		},
	}
	cmd.Flags().StringVar(&path, "file", "", "PEM file to inspect")
	return cmd
}

// inspectPEM decodes a private or public PEM block and describes it
func (a *app) inspectPEM(name string, data []byte) (*KeyInfo, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, encoding.ErrInvalidPEMEncoding
	}
	format := a.store.Codec().Format()
	if h, ok := block.Headers[encoding.HeaderFormat]; ok {
		f, err := pkey.ParseFormat(h)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", encoding.ErrInvalidData, err)
		}
		format = f
	}

	var (
		ctx *pkey.KeyContext
		typ string
		err error
	)
	switch block.Type {
	case encoding.PEMTypePrivateKey:
		typ = keyTypePrivate
		ctx, err = encoding.DecodePrivateKeyPEM(data, a.store.Codec())
	default:
		typ = keyTypePublic
		ctx, err = encoding.DecodePublicKeyPEM(data, a.store.Codec())
	}
	if err != nil {
		return nil, err
	}
	defer ctx.Release()

	a.log.Debug("inspecting key", logger.KeyID(ctx.ID()), logger.Algorithm(ctx.Algorithm().Name()))
	return newKeyInfo(name, typ, format, ctx)
}

func newKeyInfo(name, typ string, format pkey.Format, ctx *pkey.KeyContext) (*KeyInfo, error) {
	fp, err := encoding.Fingerprint(ctx)
	if err != nil {
		return nil, err
	}
	alg := newAlgorithmInfo(ctx.Algorithm())
	return &KeyInfo{
		Name:            name,
		Type:            typ,
		Algorithm:       alg.Name,
		AlgorithmID:     alg.ID,
		LongName:        alg.LongName,
		OID:             alg.OID,
		Format:          format.String(),
		Bits:            8 * alg.PublicKeyLen,
		MaxSignatureLen: alg.MaxSignatureLen,
		Fingerprint:     fp,
		PublicKey:       ctx.PublicKey(),
	}, nil
}
