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
	"fmt"
	"sort"
	"strconv"

	"github.com/jeremyhahn/go-pqsig/pkg/algorithms"
	"github.com/jeremyhahn/go-pqsig/pkg/pkey"
	"github.com/jeremyhahn/go-pqsig/pkg/validation"
	"github.com/spf13/cobra"
)

func (a *app) algorithmsCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "algorithms",
		Aliases: []string{"algs"},
		Short:   "List the signature algorithms and whether this build provides them",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			descs := a.registry.Algorithms()
			infos := make([]AlgorithmInfo, 0, len(descs))
			for _, d := range descs {
				infos = append(infos, newAlgorithmInfo(d))
			}
			for _, u := range algorithms.Skipped() {
				infos = append(infos, unavailableAlgorithmInfo(u))
			}
			sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
			return a.printer.PrintAlgorithms(infos)
		},
	}
}

// lookupAlgorithm resolves an algorithm by name or numeric identifier
func (a *app) lookupAlgorithm(s string) (*pkey.Descriptor, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return a.registry.Lookup(pkey.ID(n))
	}
	if err := validation.ValidateAlgorithmName(s); err != nil {
		return nil, fmt.Errorf("%w: %v", pkey.ErrUnknownAlgorithm, err)
	}
	return a.registry.LookupName(s)
}
