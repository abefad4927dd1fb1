/*
Copyright © 2026 ybstat authors
SPDX-License-Identifier: Apache-2.0
*/

package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/ybstat/ybstat/pkg/snapshotter"
)

func adhocDiffCmd() *cli.Command {
	return &cli.Command{
		Name:                  "adhoc-diff",
		EnableShellCompletion: true,
		Usage:                 "Diff two live collection passes without storing anything",
		Description: `Run a first collection pass, wait for Enter, run a second pass, and
report the differences between them. Nothing is written to disk, which
makes this the quickest way to watch what a workload does to the cluster.

# Examples

Watch everything:
  ybstat adhoc-diff

Watch one kind with a metric filter:
  ybstat adhoc-diff --kind metrics --stat-match '_inserted$'`,
		Flags: append(collectionFlags(),
			append(filterFlags(),
				kindFlag,
				gaugesEnableFlag,
				detailsEnableFlag,
				silentFlag,
				formatFlag,
			)...,
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			applySilence(cmd)
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}
			kinds, err := parseKinds(cmd)
			if err != nil {
				return err
			}

			s := snapshotter.New(newCollector(cmd), nil, cfg, snapshotter.WithKinds(kinds...))

			first, err := s.CollectAll(ctx)
			if err != nil {
				return err
			}

			if !cmd.Bool("silent") {
				fmt.Fprintln(stdout(cmd), "begin capture done, press Enter to capture the end and show the differences")
			}
			if err := waitForEnter(ctx); err != nil {
				return err
			}

			second, err := s.CollectAll(ctx)
			if err != nil {
				return err
			}

			opts := diffOptions(cmd)
			var results []kindResult
			for _, kind := range kinds {
				bset, eset := first[kind], second[kind]
				if bset == nil || eset == nil {
					continue
				}
				res, err := diffSets(kind, bset, eset, opts)
				if err != nil {
					return err
				}
				results = append(results, res)
			}

			return renderResults(cmd, results)
		},
	}
}

// waitForEnter blocks until the user presses Enter or the context is
// canceled.
func waitForEnter(ctx context.Context) error {
	done := make(chan error, 1)
	go func() {
		_, err := bufio.NewReader(os.Stdin).ReadString('\n')
		done <- err
	}()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		return err
	}
}
