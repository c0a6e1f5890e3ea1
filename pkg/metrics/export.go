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


package metrics

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// WriteText writes the go-pqsig metric families from the default gatherer
// in the Prometheus text exposition format. Go runtime and process
// collectors are left out.
func WriteText(w io.Writer) error {
	return writeText(w, prometheus.DefaultGatherer)
}

func writeText(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("metrics: failed to gather: %w", err)
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if !strings.HasPrefix(mf.GetName(), Namespace+"_") {
			continue
		}
		if err := enc.Encode(mf); err != nil {
			return fmt.Errorf("metrics: failed to encode %s: %w", mf.GetName(), err)
		}
	}
	return nil
}

// WriteTextFile writes WriteText output to path through a temporary file
// and rename, so a node_exporter textfile collector never reads a partial
// file
func WriteTextFile(path string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".pqsig-metrics-*.tmp")
	if err != nil {
		return fmt.Errorf("metrics: failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if err := WriteText(tmp); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Chmod(0644); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("metrics: failed to set permissions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("metrics: failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("metrics: failed to write %s: %w", path, err)
	}
	return nil
}
