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

// Package cli implements the pqsig command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jeremyhahn/go-pqsig/internal/config"
	"github.com/jeremyhahn/go-pqsig/pkg/adapters/logger"
	"github.com/jeremyhahn/go-pqsig/pkg/algorithms"
	"github.com/jeremyhahn/go-pqsig/pkg/correlation"
	"github.com/jeremyhahn/go-pqsig/pkg/keystore"
	"github.com/jeremyhahn/go-pqsig/pkg/metrics"
	"github.com/jeremyhahn/go-pqsig/pkg/pkey"
	"github.com/jeremyhahn/go-pqsig/pkg/storage"
	"github.com/jeremyhahn/go-pqsig/pkg/storage/file"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	envPrefix = "PQSIG"

	// commands carrying this annotation run without a keystore
	annotationNoSetup = "pqsig/no-setup"
)

// ErrSignatureInvalid is returned by verify when the signature does not
// match. The command exits non-zero.
var ErrSignatureInvalid = errors.New("signature verification failed")

// app carries the state shared by one command line invocation
type app struct {
	configFile string

	cfg      *config.Config
	log      logger.Logger
	registry *pkey.Registry
	store    *keystore.KeyStore
	printer  *Printer
	output   string
	verbose  bool
	started  bool
}

// Execute runs the command line with the process arguments
func Execute() error {
	return Run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
}

// Run executes the command line with explicit arguments and streams.
// Errors are printed to stderr in the selected output format and returned.
func Run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	a := &app{output: string(OutputFormatText)}
	root := a.rootCommand()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	id := os.Getenv(correlation.EnvVar)
	if id == "" {
		id = correlation.NewID()
	}
	err := root.ExecuteContext(correlation.WithCorrelationID(context.Background(), id))
	if mErr := a.writeMetrics(stderr); mErr != nil && err == nil {
		err = mErr
	}
	a.close()
	if err != nil {
		_ = NewPrinter(a.output, stderr).PrintError(err) // best-effort
	}
	return err
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "pqsig",
		Short: "pqsig - post-quantum signature key management",
		Long: `pqsig generates, stores and uses post-quantum signature keys.

Built-in algorithms:
  - picnic-default:      Picnic L1 FS (quantum build tag, liboqs < 0.8.0)
  - ml-dsa-44/65/87:     FIPS 204 ML-DSA
  - ed25519-dilithium2:  Ed25519 + Dilithium2 hybrid
  - ed448-dilithium3:    Ed448 + Dilithium3 hybrid
  - falcon-1024:         Falcon-1024 (cgo builds)`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true

	pf := root.PersistentFlags()
	pf.StringVar(&a.configFile, "config", "", "config file (YAML)")
	pf.String("key-dir", "", "directory for key storage (default $HOME/.pqsig/keys)")
	pf.String("storage", "", "storage backend (file, memory)")
	pf.String("format", "", "key record format (der, cbor)")
	pf.String("log-level", "", "log level (debug, info, warn, error)")
	pf.StringP("output", "o", string(OutputFormatText), "output format (text, json, table)")
	pf.BoolP("verbose", "v", false, "verbose output")
	pf.String("metrics-file", "", "write Prometheus text metrics here when the command finishes (- for stderr)")

	root.AddCommand(
		a.versionCommand(),
		a.algorithmsCommand(),
		a.keygenCommand(),
		a.pubkeyCommand(),
		a.signCommand(),
		a.verifyCommand(),
		a.inspectCommand(),
		a.listCommand(),
		a.deleteCommand(),
	)
	return root
}

// setup resolves flags, environment and config file, then opens the
// registry and keystore
func (a *app) setup(cmd *cobra.Command) error {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(cmd.Root().PersistentFlags()); err != nil {
		return fmt.Errorf("failed to bind flags: %w", err)
	}

	a.output = strings.ToLower(v.GetString("output"))
	if !validOutput(a.output) {
		bad := a.output
		a.output = string(OutputFormatText)
		return fmt.Errorf("unknown output format: %s", bad)
	}
	a.verbose = v.GetBool("verbose")
	a.printer = NewPrinter(a.output, cmd.OutOrStdout())

	if cmd.Annotations[annotationNoSetup] == "true" || cmd.Name() == "help" {
		return nil
	}

	cfg, err := config.Load(v.GetString("config"))
	if err != nil {
		return err
	}
	if v.IsSet("key-dir") {
		cfg.Storage.Path = v.GetString("key-dir")
	}
	if v.IsSet("storage") {
		cfg.Storage.Backend = v.GetString("storage")
	}
	if v.IsSet("format") {
		cfg.Algorithm.Format = v.GetString("format")
	}
	if v.IsSet("log-level") {
		cfg.Logging.Level = v.GetString("log-level")
	}
	if v.IsSet("metrics-file") {
		cfg.Metrics.File = v.GetString("metrics-file")
	}
	if cfg.Metrics.File != "" {
		cfg.Metrics.Enabled = true
	}
	if a.verbose {
		cfg.Logging.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	a.cfg = cfg

	a.log = correlation.Logger(cmd.Context(), logger.NewSlogAdapter(&logger.SlogConfig{
		Level:  cfg.LogLevel(),
		Output: cmd.ErrOrStderr(),
		JSON:   strings.EqualFold(cfg.Logging.Format, "json"),
	}))
	pkey.SetLogger(a.log)

	if cfg.Metrics.Enabled {
		metrics.Enable()
	} else {
		metrics.Disable()
	}

	if cfg.Algorithm.PicnicMechanism != "" {
		algorithms.PicnicMechanism = cfg.Algorithm.PicnicMechanism
	}
	if err := algorithms.AddAll(a.log); err != nil {
		return err
	}
	a.started = true
	a.registry = pkey.Default()

	backend, err := openBackend(cfg)
	if err != nil {
		return err
	}
	a.store, err = keystore.New(&keystore.Config{
		Backend: backend,
		Codec:   pkey.NewCodec(a.registry, cfg.KeyFormat()),
		Logger:  a.log,
	})
	if err != nil {
		_ = backend.Close()
		return err
	}

	a.log.Debug("configuration loaded",
		logger.String("storage", cfg.Storage.Backend),
		logger.String("path", cfg.Storage.Path),
		logger.String("format", cfg.Algorithm.Format))
	return nil
}

func openBackend(cfg *config.Config) (storage.Backend, error) {
	switch cfg.Storage.Backend {
	case config.StorageMemory:
		return storage.NewMemory(), nil
	default:
		return file.New(cfg.Storage.Path)
	}
}

// close releases the keystore and empties the default registry
func (a *app) close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil && a.log != nil {
			a.log.Warn("failed to close keystore", logger.Error(err))
		}
		a.store = nil
	}
	if a.started {
		algorithms.Shutdown()
		a.started = false
	}
}

// writeMetrics dumps the collected metrics when a metrics file is configured
func (a *app) writeMetrics(stderr io.Writer) error {
	if a.cfg == nil || a.cfg.Metrics.File == "" {
		return nil
	}
	if a.cfg.Metrics.File == "-" {
		return metrics.WriteText(stderr)
	}
	return metrics.WriteTextFile(a.cfg.Metrics.File)
}

// printVerbose prints a message to stderr if verbose mode is enabled
func (a *app) printVerbose(cmd *cobra.Command, format string, args ...interface{}) {
	if a.verbose {
		fmt.Fprintf(cmd.ErrOrStderr(), "[VERBOSE] "+format+"\n", args...)
	}
}
