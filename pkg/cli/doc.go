/*
Copyright © 2026 ybstat authors
SPDX-License-Identifier: Apache-2.0
*/

// Package cli implements the command-line interface of the ybstat tool.
//
// # Overview
//
// ybstat captures point-in-time snapshots of distributed database
// diagnostic endpoints (metrics, versions, server variables, cluster
// topology) across every node of a cluster, stores them on disk, and
// reports the differences between any two snapshots or between two live
// collection passes.
//
// # Commands
//
// snapshot - Capture a snapshot of all endpoint kinds:
//
//	ybstat snapshot [--comment TEXT] [--silent]
//
// Collects every endpoint kind from every resolved host:port target and
// stores the records under a new snapshot number. Prints the number.
//
// snapshots - List the snapshot catalog:
//
//	ybstat snapshots [--format json|yaml|table]
//
// diff - Report the differences between two stored snapshots:
//
//	ybstat diff --begin N --end M [--kind KIND] [--gauges-enable] [--details-enable]
//
// Counter metrics are rate-normalized over the capture interval;
// structured records are reported as added, removed, or changed.
//
// adhoc-diff - Diff two live passes without touching disk:
//
//	ybstat adhoc-diff [--kind KIND]
//
// Runs a first collection pass, waits for Enter, runs a second pass,
// and reports the differences.
//
// print - Render one kind from a stored snapshot or a live pass:
//
//	ybstat print --kind KIND [--snapshot N] [--format json|yaml|table]
//
// # Shared Flags
//
//	--hosts            Comma-separated hosts to collect from
//	--ports            Comma-separated ports to combine with each host
//	--parallel         Concurrent per-host fetches within one kind
//	--hostname-match   Regex filtering the host:port work list
//	--stat-match       Regex filtering displayed metric names
//	--table-match      Regex filtering displayed entity identities
//	--data-dir         Snapshot storage directory
//	--log-level        Logging verbosity (debug, info, warn, error)
//
// # Environment Variables
//
//	YBSTAT_HOSTS     Default for --hosts
//	YBSTAT_PORTS     Default for --ports
//	YBSTAT_PARALLEL  Default for --parallel
//	YBSTAT_DATA_DIR  Default for --data-dir
//	YBSTAT_FORMAT    Default for --format
//	LOG_LEVEL        Default for --log-level
//
// # Exit Codes
//
//	0  Success
//	1  Error (invalid arguments, missing or corrupt snapshot, write failure)
//
// Version information is embedded at build time using ldflags:
//
//	go build -ldflags="-X 'github.com/ybstat/ybstat/pkg/cli.version=1.0.0'"
package cli
