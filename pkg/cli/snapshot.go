/*
Copyright © 2026 ybstat authors
SPDX-License-Identifier: Apache-2.0
*/

package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/ybstat/ybstat/pkg/snapshotter"
	"github.com/ybstat/ybstat/pkg/store"
)

func snapshotCmd() *cli.Command {
	return &cli.Command{
		Name:                  "snapshot",
		EnableShellCompletion: true,
		Usage:                 "Capture a snapshot of all cluster endpoints",
		Description: `Collect every endpoint kind (metrics, versions, server variables,
cluster topology, health) from every resolved host:port target and store
the records under a new snapshot number.

Unreachable hosts never fail the capture: they contribute an empty record
tagged synthetic, so a later diff can tell "zero" from "no data".

# Examples

Capture with a comment:
  ybstat snapshot --comment "before rolling restart"

Capture from specific hosts:
  ybstat snapshot --hosts node1,node2,node3 --ports 7000,9000

Script-friendly output (just the number):
  ybstat snapshot --silent`,
		Flags: append(collectionFlags(),
			hostnameMatchFlag,
			&cli.StringFlag{
				Name:    "comment",
				Aliases: []string{"c"},
				Usage:   "free-form comment stored in the snapshot catalog",
			},
			silentFlag,
			dataDirFlag,
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			applySilence(cmd)
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}

			st := store.New(cmd.String("data-dir"))
			s := snapshotter.New(newCollector(cmd), st, cfg)

			number, err := s.Snapshot(ctx, cmd.String("comment"))
			if err != nil {
				return err
			}

			if cmd.Bool("silent") {
				fmt.Fprintln(stdout(cmd), number)
				return nil
			}
			fmt.Fprintf(stdout(cmd), "snapshot %d stored in %s\n", number, st.Root())
			return nil
		},
	}
}
