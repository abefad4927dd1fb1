/*
Copyright © 2026 ybstat authors
SPDX-License-Identifier: Apache-2.0
*/

package defaults

import "time"

const (
	// ProbeTimeout is the timeout for the cheap TCP reachability probe
	// performed before any HTTP request. A host that does not accept a
	// connection within this window is treated as unreachable.
	ProbeTimeout = 2 * time.Second

	// FetchTimeout bounds a single HTTP GET against one endpoint.
	// On expiry the host is treated the same as unreachable.
	FetchTimeout = 10 * time.Second

	// TLSHandshakeTimeout bounds the TLS handshake for HTTPS endpoints.
	TLSHandshakeTimeout = 5 * time.Second
)

const (
	// Hosts is the default comma-separated host list.
	Hosts = "192.168.66.80,192.168.66.81,192.168.66.82"

	// Ports is the default comma-separated port list covering the
	// master, tablet server, YSQL, and YCQL web interfaces.
	Ports = "7000,9000,12000,13000"

	// Parallel is the default number of concurrent per-host fetches
	// within one endpoint kind pass.
	Parallel = 1

	// DataDir is the default root directory for stored snapshots,
	// relative to the current working directory.
	DataDir = "ybstat.snapshots.d"
)
