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
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jeremyhahn/go-pqsig/pkg/encoding"
	"github.com/jeremyhahn/go-pqsig/pkg/pkey"
	"github.com/spf13/cobra"
)

func (a *app) signCommand() *cobra.Command {
	var in, out string
	cmd := &cobra.Command{
		Use:   "sign NAME",
		Short: "Sign a message with the private key stored under NAME",
		Long: `Sign a message with the private key stored under NAME. The message is
read from --in, or stdin when --in is empty or "-". The signature is
printed base64 encoded unless --out names a file for the raw bytes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			msg, err := readInput(cmd, in)
			if err != nil {
				return err
			}
			ctx, err := a.store.Load(args[0])
			if err != nil {
				return err
			}
			defer ctx.Release()

			sig, err := pkey.SignMessage(ctx, msg)
			if err != nil {
				return err
			}
			a.printVerbose(cmd, "signed %d bytes, signature is %d bytes", len(msg), len(sig))

			if out == "" {
				return a.printer.PrintSignature(ctx.Algorithm().Name(), base64.StdEncoding.EncodeToString(sig))
			}
			// #nosec G306 - signatures are public
			if err := os.WriteFile(out, sig, 0644); err != nil {
				return fmt.Errorf("failed to write signature: %w", err)
			}
			return a.printer.PrintSuccess(fmt.Sprintf("signature written to %s", out))
		},
	}
	cmd.Flags().StringVar(&in, "in", "", "message file (default stdin)")
	cmd.Flags().StringVar(&out, "out", "", "write the raw signature to this file")
	return cmd
}

func (a *app) verifyCommand() *cobra.Command {
	var in, sigPath, sigB64, pubPath string
	cmd := &cobra.Command{
		Use:   "verify [NAME]",
		Short: "Verify a signature with a stored or PEM public key",
		Long: `Verify a signature over a message. The public key is the one stored
under NAME, or the PEM file given with --pubkey. The signature is read
raw from --sig or base64 encoded from --signature.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sig, err := readSignature(sigPath, sigB64)
			if err != nil {
				return err
			}
			msg, err := readInput(cmd, in)
			if err != nil {
				return err
			}

			var ctx *pkey.KeyContext
			switch {
			case pubPath != "":
				// #nosec G304 - path is provided by the user
				data, err := os.ReadFile(pubPath)
				if err != nil {
					return fmt.Errorf("failed to read public key: %w", err)
				}
				ctx, err = encoding.DecodePublicKeyPEM(data, a.store.Codec())
				if err != nil {
					return err
				}
			case len(args) == 1:
				ctx, err = a.store.LoadPublic(args[0])
				if err != nil {
					return err
				}
			default:
				return fmt.Errorf("a key name or --pubkey is required")
			}
			defer ctx.Release()

			ok, err := pkey.Verify(ctx, msg, sig)
			if err != nil {
				return err
			}
			if err := a.printer.PrintVerification(ctx.Algorithm().Name(), ok); err != nil {
				return err
			}
			if !ok {
				return ErrSignatureInvalid
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&in, "in", "", "message file (default stdin)")
	cmd.Flags().StringVar(&sigPath, "sig", "", "file holding the raw signature")
	cmd.Flags().StringVar(&sigB64, "signature", "", "base64 encoded signature")
	cmd.Flags().StringVar(&pubPath, "pubkey", "", "PEM public key file")
	cmd.MarkFlagsMutuallyExclusive("sig", "signature")
	cmd.MarkFlagsOneRequired("sig", "signature")
	return cmd
}

// readInput reads path, or the command's stdin for "" and "-". The result
// is never nil so an empty message can be signed.
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if path == "" || path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		// #nosec G304 - path is provided by the user
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read message: %w", err)
	}
	if data == nil {
		data = []byte{}
	}
	return data, nil
}

func readSignature(path, b64 string) ([]byte, error) {
	if path != "" {
		// #nosec G304 - path is provided by the user
		sig, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read signature: %w", err)
		}
		return sig, nil
	}
	sig, err := base64.StdEncoding.DecodeString(strings.TrimSpace(b64))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid base64 signature: %v", pkey.ErrVerify, err)
	}
	return sig, nil
}
