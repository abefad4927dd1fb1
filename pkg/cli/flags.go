/*
Copyright © 2026 ybstat authors
SPDX-License-Identifier: Apache-2.0
*/

package cli

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/ybstat/ybstat/pkg/collector"
	"github.com/ybstat/ybstat/pkg/defaults"
	"github.com/ybstat/ybstat/pkg/endpoint"
	yberrors "github.com/ybstat/ybstat/pkg/errors"
	"github.com/ybstat/ybstat/pkg/logging"
	"github.com/ybstat/ybstat/pkg/record"
	"github.com/ybstat/ybstat/pkg/serializer"
)

var (
	logLevelFlag = &cli.StringFlag{
		Name:    "log-level",
		Usage:   "log level (debug, info, warn, error)",
		Sources: cli.EnvVars("LOG_LEVEL"),
		Value:   "info",
	}

	hostsFlag = &cli.StringFlag{
		Name:    "hosts",
		Usage:   "comma-separated hosts to collect from",
		Sources: cli.EnvVars("YBSTAT_HOSTS"),
		Value:   defaults.Hosts,
	}

	portsFlag = &cli.StringFlag{
		Name:    "ports",
		Usage:   "comma-separated ports combined with every host",
		Sources: cli.EnvVars("YBSTAT_PORTS"),
		Value:   defaults.Ports,
	}

	parallelFlag = &cli.IntFlag{
		Name:    "parallel",
		Usage:   "concurrent per-host fetches within one endpoint kind",
		Sources: cli.EnvVars("YBSTAT_PARALLEL"),
		Value:   defaults.Parallel,
	}

	fetchRateFlag = &cli.FloatFlag{
		Name:    "fetch-rate",
		Usage:   "cap outbound fetches per second across a pass (0 means no cap)",
		Sources: cli.EnvVars("YBSTAT_FETCH_RATE"),
	}

	hostnameMatchFlag = &cli.StringFlag{
		Name:  "hostname-match",
		Usage: "regex filtering the host:port work list and displayed records",
	}

	statMatchFlag = &cli.StringFlag{
		Name:  "stat-match",
		Usage: "regex filtering displayed metric names",
	}

	tableMatchFlag = &cli.StringFlag{
		Name:  "table-match",
		Usage: "regex filtering displayed entity identities (with --details-enable)",
	}

	gaugesEnableFlag = &cli.BoolFlag{
		Name:  "gauges-enable",
		Usage: "include gauge metrics in diff output",
	}

	detailsEnableFlag = &cli.BoolFlag{
		Name:  "details-enable",
		Usage: "report per-entity detail instead of per-host aggregates",
	}

	silentFlag = &cli.BoolFlag{
		Name:  "silent",
		Usage: "print results only, without progress messages or per-host warnings",
	}

	dataDirFlag = &cli.StringFlag{
		Name:    "data-dir",
		Usage:   "snapshot storage directory",
		Sources: cli.EnvVars("YBSTAT_DATA_DIR"),
		Value:   defaults.DataDir,
	}

	formatFlag = &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"t"},
		Usage:   fmt.Sprintf("output format (%s)", strings.Join(serializer.SupportedFormats(), ", ")),
		Sources: cli.EnvVars("YBSTAT_FORMAT"),
		Value:   string(serializer.FormatTable),
	}

	kindFlag = &cli.StringFlag{
		Name:  "kind",
		Usage: "narrow to one endpoint kind (e.g. metrics, versions, vars)",
	}
)

// stdout returns the output writer configured on the root command,
// falling back to os.Stdout.
func stdout(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

// collectionFlags are shared by every command that performs live
// collection passes. Commands that also render records get
// hostname-match through filterFlags instead, so the flag is never
// registered twice.
func collectionFlags() []cli.Flag {
	return []cli.Flag{hostsFlag, portsFlag, parallelFlag, fetchRateFlag}
}

// newCollector builds the collector for a live pass, honoring the
// optional outbound fetch rate cap.
func newCollector(cmd *cli.Command) *collector.Collector {
	return collector.New(collector.WithRateLimit(cmd.Float("fetch-rate")))
}

// applySilence raises the default logger to error level when --silent
// is set, so per-host reachability warnings stay out of script output.
func applySilence(cmd *cli.Command) {
	if cmd.Bool("silent") {
		logging.SetDefaultStructuredLoggerWithLevel(name, version, "error")
	}
}

// filterFlags are shared by every command that renders records.
func filterFlags() []cli.Flag {
	return []cli.Flag{statMatchFlag, tableMatchFlag, hostnameMatchFlag}
}

func resolveConfig(cmd *cli.Command) (*endpoint.Config, error) {
	return endpoint.Resolve(
		cmd.String("hosts"),
		cmd.String("ports"),
		int(cmd.Int("parallel")),
		cmd.String("hostname-match"),
	)
}

func parseFilters(cmd *cli.Command) (record.Filters, error) {
	var f record.Filters
	for _, p := range []struct {
		flag string
		dst  **regexp.Regexp
	}{
		{"stat-match", &f.StatName},
		{"table-match", &f.TableName},
		{"hostname-match", &f.Hostname},
	} {
		expr := cmd.String(p.flag)
		if expr == "" {
			continue
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			return record.Filters{}, yberrors.Wrap(yberrors.ErrCodeInvalidRequest,
				fmt.Sprintf("invalid --%s pattern", p.flag), err)
		}
		*p.dst = re
	}
	return f, nil
}

func parseOutputFormat(cmd *cli.Command) (serializer.Format, error) {
	f := serializer.Format(cmd.String("format"))
	if f.IsUnknown() {
		return "", fmt.Errorf("unknown output format: %q (supported: %s)",
			f, strings.Join(serializer.SupportedFormats(), ", "))
	}
	return f, nil
}

// parseKinds resolves the optional --kind flag to the list of kinds a
// command operates on. An empty flag means every registered kind.
func parseKinds(cmd *cli.Command) ([]endpoint.Kind, error) {
	expr := cmd.String("kind")
	if expr == "" {
		return endpoint.Kinds, nil
	}
	kind, ok := endpoint.ParseKind(expr)
	if !ok {
		return nil, yberrors.New(yberrors.ErrCodeInvalidRequest,
			fmt.Sprintf("unknown endpoint kind %q", expr))
	}
	return []endpoint.Kind{kind}, nil
}
