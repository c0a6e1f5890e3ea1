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
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jeremyhahn/go-pqsig/pkg/algorithms"
	"github.com/jeremyhahn/go-pqsig/pkg/encoding"
	"github.com/jeremyhahn/go-pqsig/pkg/keystore"
	"github.com/jeremyhahn/go-pqsig/pkg/pkey"
)

// OutputFormat defines the output format type
type OutputFormat string

const (
	OutputFormatText  OutputFormat = "text"
	OutputFormatJSON  OutputFormat = "json"
	OutputFormatTable OutputFormat = "table"
)

func validOutput(s string) bool {
	switch OutputFormat(s) {
	case OutputFormatText, OutputFormatJSON, OutputFormatTable:
		return true
	}
	return false
}

// AlgorithmInfo is the printable view of a registered algorithm
type AlgorithmInfo struct {
	ID              int    `json:"id"`
	Name            string `json:"name"`
	LongName        string `json:"long_name,omitempty"`
	OID             string `json:"oid,omitempty"`
	PrivateKeyLen   int    `json:"private_key_len"`
	PublicKeyLen    int    `json:"public_key_len"`
	MaxSignatureLen int    `json:"max_signature_len"`
	Available       bool   `json:"available"`
	Reason          string `json:"reason,omitempty"`
}

func newAlgorithmInfo(d *pkey.Descriptor) AlgorithmInfo {
	info := AlgorithmInfo{
		Available:       true,
		ID:              int(d.ID()),
		Name:            d.Name(),
		LongName:        d.LongName(),
		PrivateKeyLen:   d.PrivateKeyLen(),
		PublicKeyLen:    d.PublicKeyLen(),
		MaxSignatureLen: d.MaxSignatureLen(),
	}
	if oid := d.OID(); len(oid) > 0 {
		info.OID = oid.String()
	}
	return info
}

func unavailableAlgorithmInfo(u algorithms.Unavailable) AlgorithmInfo {
	return AlgorithmInfo{
		ID:     int(u.ID),
		Name:   u.Name,
		Reason: u.Reason.Error(),
	}
}

// KeyInfo is the printable view of a stored or decoded key
type KeyInfo struct {
	Name            string `json:"name,omitempty"`
	Type            string `json:"type"`
	Algorithm       string `json:"algorithm"`
	AlgorithmID     int    `json:"algorithm_id"`
	LongName        string `json:"long_name,omitempty"`
	OID             string `json:"oid,omitempty"`
	Format          string `json:"format"`
	Bits            int    `json:"bits"`
	MaxSignatureLen int    `json:"max_signature_len"`
	Fingerprint     string `json:"fingerprint"`
	PublicKey       []byte `json:"-"`
}

// Printer handles formatted output
type Printer struct {
	format OutputFormat
	writer io.Writer
}

// NewPrinter creates a new Printer
func NewPrinter(format string, writer io.Writer) *Printer {
	return &Printer{
		format: OutputFormat(format),
		writer: writer,
	}
}

// PrintAlgorithms prints the registered algorithms
func (p *Printer) PrintAlgorithms(algs []AlgorithmInfo) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(map[string]interface{}{
			"algorithms": algs,
		})
	case OutputFormatTable:
		fmt.Fprintf(p.writer, "%-4s %-20s %-26s %8s %8s %8s\n", "ID", "NAME", "OID", "PRIV", "PUB", "SIG")
		fmt.Fprintln(p.writer, strings.Repeat("-", 79))
		for _, a := range algs {
			if !a.Available {
				fmt.Fprintf(p.writer, "%-4d %-20s unavailable: %s\n", a.ID, a.Name, a.Reason)
				continue
			}
			fmt.Fprintf(p.writer, "%-4d %-20s %-26s %8d %8d %8d\n",
				a.ID, a.Name, a.OID, a.PrivateKeyLen, a.PublicKeyLen, a.MaxSignatureLen)
		}
		return nil
	case OutputFormatText:
		fmt.Fprintln(p.writer, "Available Algorithms:")
		var missing []AlgorithmInfo
		for _, a := range algs {
			if !a.Available {
				missing = append(missing, a)
				continue
			}
			fmt.Fprintf(p.writer, "  - %s (id %d)\n", a.Name, a.ID)
		}
		if len(missing) > 0 {
			fmt.Fprintln(p.writer, "Unavailable in this build:")
			for _, a := range missing {
				fmt.Fprintf(p.writer, "  - %s (id %d): %s\n", a.Name, a.ID, a.Reason)
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintKeyList prints the stored keys
func (p *Printer) PrintKeyList(entries []keystore.Entry) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(map[string]interface{}{
			"keys": entries,
		})
	case OutputFormatTable:
		if len(entries) == 0 {
			fmt.Fprintln(p.writer, "No keys found")
			return nil
		}
		fmt.Fprintf(p.writer, "%-40s %-8s %-8s\n", "NAME", "PRIVATE", "PUBLIC")
		fmt.Fprintln(p.writer, strings.Repeat("-", 58))
		for _, e := range entries {
			fmt.Fprintf(p.writer, "%-40s %-8t %-8t\n", e.Name, e.Private, e.Public)
		}
		return nil
	case OutputFormatText:
		if len(entries) == 0 {
			fmt.Fprintln(p.writer, "No keys found")
			return nil
		}
		fmt.Fprintln(p.writer, "Keys:")
		for _, e := range entries {
			kind := "key pair"
			if !e.Private {
				kind = "public only"
			}
			fmt.Fprintf(p.writer, "  - %s (%s)\n", e.Name, kind)
		}
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintKeyInfo prints detailed key information. The public key is dumped
// as colon separated hex, 16 bytes per line.
func (p *Printer) PrintKeyInfo(key *KeyInfo) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(struct {
			*KeyInfo
			PublicKey string `json:"public_key"`
		}{key, hex.EncodeToString(key.PublicKey)})
	case OutputFormatTable, OutputFormatText:
		fmt.Fprintf(p.writer, "Key Information:\n")
		if key.Name != "" {
			fmt.Fprintf(p.writer, "  Name:        %s\n", key.Name)
		}
		fmt.Fprintf(p.writer, "  Type:        %s\n", key.Type)
		fmt.Fprintf(p.writer, "  Algorithm:   %s (id %d)\n", key.Algorithm, key.AlgorithmID)
		if key.LongName != "" {
			fmt.Fprintf(p.writer, "  Long Name:   %s\n", key.LongName)
		}
		if key.OID != "" {
			fmt.Fprintf(p.writer, "  OID:         %s\n", key.OID)
		}
		fmt.Fprintf(p.writer, "  Format:      %s\n", key.Format)
		fmt.Fprintf(p.writer, "  Bits:        %d\n", key.Bits)
		fmt.Fprintf(p.writer, "  Max Sig Len: %d\n", key.MaxSignatureLen)
		fmt.Fprintf(p.writer, "  Fingerprint: %s\n", key.Fingerprint)
		if len(key.PublicKey) > 0 {
			fmt.Fprintf(p.writer, "  Public Key:\n%s", encoding.ColonHex(key.PublicKey, encoding.PublicKeyDumpWidth, 4))
		}
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintPEM prints PEM armored data
func (p *Printer) PrintPEM(data []byte) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(map[string]interface{}{
			"pem": string(data),
		})
	case OutputFormatTable, OutputFormatText:
		_, err := p.writer.Write(data)
		return err
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintSignature prints a base64 encoded signature
func (p *Printer) PrintSignature(algorithm, signature string) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(map[string]interface{}{
			"algorithm": algorithm,
			"signature": signature,
		})
	case OutputFormatTable, OutputFormatText:
		fmt.Fprintln(p.writer, signature)
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintVerification prints the outcome of a signature check
func (p *Printer) PrintVerification(algorithm string, valid bool) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(map[string]interface{}{
			"algorithm": algorithm,
			"valid":     valid,
		})
	case OutputFormatTable, OutputFormatText:
		if valid {
			fmt.Fprintln(p.writer, "Signature valid")
		} else {
			fmt.Fprintln(p.writer, "Signature INVALID")
		}
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintSuccess prints a success message
func (p *Printer) PrintSuccess(message string) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(map[string]interface{}{
			"status":  "success",
			"message": message,
		})
	case OutputFormatTable, OutputFormatText:
		fmt.Fprintln(p.writer, message)
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintError prints an error message
func (p *Printer) PrintError(err error) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(map[string]interface{}{
			"status": "error",
			"error":  err.Error(),
		})
	default:
		fmt.Fprintf(p.writer, "Error: %v\n", err)
		return nil
	}
}

// printJSON prints data as indented JSON
func (p *Printer) printJSON(data interface{}) error {
	encoder := json.NewEncoder(p.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
