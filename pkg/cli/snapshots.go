/*
Copyright © 2026 ybstat authors
SPDX-License-Identifier: Apache-2.0
*/

package cli

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/ybstat/ybstat/pkg/record"
	"github.com/ybstat/ybstat/pkg/report"
	"github.com/ybstat/ybstat/pkg/serializer"
	"github.com/ybstat/ybstat/pkg/store"
)

func snapshotsCmd() *cli.Command {
	return &cli.Command{
		Name:                  "snapshots",
		EnableShellCompletion: true,
		Usage:                 "List the snapshot catalog",
		Description: `List every stored snapshot with its number, capture timestamp, and
comment, in capture order.

# Examples

  ybstat snapshots
  ybstat snapshots --format json`,
		Flags: []cli.Flag{
			dataDirFlag,
			formatFlag,
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			format, err := parseOutputFormat(cmd)
			if err != nil {
				return err
			}

			entries, err := store.New(cmd.String("data-dir")).List()
			if err != nil {
				return err
			}

			if format == serializer.FormatTable {
				return report.New(stdout(cmd), record.Filters{}, false).Catalog(entries)
			}
			return serializer.NewWriter(format, stdout(cmd)).Serialize(entries)
		},
	}
}
