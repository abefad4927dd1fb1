/*
Copyright © 2026 ybstat authors
SPDX-License-Identifier: Apache-2.0
*/

// Package endpoint defines the closed set of diagnostic endpoint kinds
// exposed by cluster nodes, and resolves host/port inputs into the
// concrete per-kind work list.
//
// Every kind shares the same envelope (hostname_port, capture timestamp,
// synthetic flag) but owns its HTTP path, record shape, and row schema.
// All per-kind behavior elsewhere in the engine is dispatched through
// the Spec registry in this package rather than duplicated control flow.
package endpoint

// Kind represents one category of diagnostic data exposed by a cluster
// node's HTTP interface.
type Kind string

// String returns the string representation of the endpoint Kind.
func (k Kind) String() string {
	return string(k)
}

const (
	KindMetrics          Kind = "metrics"
	KindEntities         Kind = "entities"
	KindMasters          Kind = "masters"
	KindTabletServers    Kind = "tablet-servers"
	KindVersions         Kind = "versions"
	KindVars             Kind = "vars"
	KindNodeExporter     Kind = "node-exporter"
	KindStatements       Kind = "statements"
	KindThreads          Kind = "threads"
	KindGFlags           Kind = "gflags"
	KindClusterConfig    Kind = "cluster-config"
	KindHealthCheck      Kind = "health-check"
	KindDrives           Kind = "drives"
	KindTabletServerOps  Kind = "tablet-server-operations"
	KindMasterTasks      Kind = "master-tasks"
	KindTableDetail      Kind = "table-detail"
	KindTabletDetail     Kind = "tablet-detail"
	KindLogs             Kind = "logs"
	KindRPCs             Kind = "rpcs"
	KindClocks           Kind = "clocks"
)

// Kinds is the closed, ordered list of all supported endpoint kinds.
var Kinds = []Kind{
	KindMetrics,
	KindEntities,
	KindMasters,
	KindTabletServers,
	KindVersions,
	KindVars,
	KindNodeExporter,
	KindStatements,
	KindThreads,
	KindGFlags,
	KindClusterConfig,
	KindHealthCheck,
	KindDrives,
	KindTabletServerOps,
	KindMasterTasks,
	KindTableDetail,
	KindTabletDetail,
	KindLogs,
	KindRPCs,
	KindClocks,
}

// ParseKind parses a string into an endpoint Kind.
// Returns the Kind and true if parsing succeeds, or empty Kind and false
// if the string names no known kind.
func ParseKind(s string) (Kind, bool) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// Shape distinguishes the two fundamental record shapes an endpoint
// kind can produce.
type Shape string

const (
	// ShapeMetric marks kinds whose records are rate-normalized
	// counters and gauges.
	ShapeMetric Shape = "metric"

	// ShapeStructured marks kinds whose records are key-identified
	// structured rows (tables, servers, variables, entities).
	ShapeStructured Shape = "structured"
)

// Spec describes how one endpoint kind is fetched, parsed, and stored.
// It is pure data: the Collector, Store, and Diff Engine specialize
// their single generic code path per kind through this registry.
type Spec struct {
	// Path is the HTTP path of the endpoint on each node.
	Path string

	// Shape selects between the metric and structured record shapes.
	Shape Shape

	// Fields is the ordered kind-specific row schema for structured
	// kinds with a fixed adapter. A nil Fields means the schema is
	// dynamic: the stored header is derived from the collected rows.
	Fields []string

	// KeyField names the field forming the natural key of a row within
	// one host. Empty means the kind yields one row per host and the
	// hostname_port alone identifies the record.
	KeyField string
}

// specs is the per-kind registry. The paths mirror the web interfaces of
// the database nodes; schema evolution of the endpoints themselves is an
// adapter concern, not an engine concern.
var specs = map[Kind]Spec{
	KindMetrics:  {Path: "/metrics", Shape: ShapeMetric},
	KindEntities: {Path: "/dump-entities", Shape: ShapeStructured},
	KindMasters: {
		Path:     "/api/v1/masters",
		Shape:    ShapeStructured,
		Fields:   []string{"instance_uuid", "state", "role", "rpc_addresses", "http_addresses"},
		KeyField: "instance_uuid",
	},
	KindTabletServers: {
		Path:  "/api/v1/tablet-servers",
		Shape: ShapeStructured,
		Fields: []string{
			"server", "status", "uptime_seconds", "ram_used",
			"num_sst_files", "read_ops_per_sec", "write_ops_per_sec",
			"user_tablets_total", "user_tablets_leaders",
		},
		KeyField: "server",
	},
	KindVersions: {
		Path:  "/api/v1/version",
		Shape: ShapeStructured,
		Fields: []string{
			"git_hash", "build_hostname", "build_timestamp",
			"build_username", "build_clean_repo", "build_id",
			"build_type", "version_number", "build_number",
		},
	},
	KindVars: {
		Path:     "/api/v1/varz",
		Shape:    ShapeStructured,
		Fields:   []string{"name", "value", "type"},
		KeyField: "name",
	},
	KindNodeExporter: {Path: "/metrics", Shape: ShapeMetric},
	KindStatements:   {Path: "/statements", Shape: ShapeStructured},
	KindThreads:      {Path: "/api/v1/threadz", Shape: ShapeStructured},
	KindGFlags: {
		Path:     "/varz?raw",
		Shape:    ShapeStructured,
		Fields:   []string{"name", "value"},
		KeyField: "name",
	},
	KindClusterConfig: {
		Path:  "/api/v1/cluster-config",
		Shape: ShapeStructured,
	},
	KindHealthCheck: {
		Path:  "/api/v1/health-check",
		Shape: ShapeStructured,
		Fields: []string{
			"dead_nodes", "most_recent_uptime",
			"under_replicated_tablets", "failed_tablets",
		},
	},
	KindDrives:          {Path: "/drives", Shape: ShapeStructured},
	KindTabletServerOps: {Path: "/operations", Shape: ShapeStructured},
	KindMasterTasks:     {Path: "/tasks", Shape: ShapeStructured},
	KindTableDetail:     {Path: "/api/v1/tables", Shape: ShapeStructured},
	KindTabletDetail:    {Path: "/api/v1/tablets", Shape: ShapeStructured},
	KindLogs:            {Path: "/logs", Shape: ShapeStructured},
	KindRPCs:            {Path: "/rpcz", Shape: ShapeStructured},
	KindClocks:          {Path: "/tablet-server-clocks", Shape: ShapeStructured},
}

// Spec returns the registry entry for the kind. Unknown kinds return the
// zero Spec; callers are expected to hold a Kind obtained from ParseKind
// or the Kinds list.
func (k Kind) Spec() Spec {
	return specs[k]
}

// IsMetric reports whether the kind produces metric-shaped records.
func (k Kind) IsMetric() bool {
	return specs[k].Shape == ShapeMetric
}
