/*
Copyright © 2026 ybstat authors
SPDX-License-Identifier: Apache-2.0
*/

package collector

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"github.com/prometheus/common/model"

	"github.com/ybstat/ybstat/pkg/endpoint"
	"github.com/ybstat/ybstat/pkg/record"
)

// parseFn converts one endpoint response body into stored records.
// Exactly one of the returned slices is populated, per the kind's shape.
type parseFn func(body []byte, hostPort string, ts time.Time) ([]record.Metric, []record.Row, error)

// parsers is the thin per-kind adapter registry. Kinds without a
// dedicated adapter fall back to the generic JSON adapter; evolution of
// individual endpoint schemas stays out of the engine.
var parsers = map[endpoint.Kind]parseFn{
	endpoint.KindMetrics:       parseMetrics,
	endpoint.KindNodeExporter:  parseNodeExporter,
	endpoint.KindVersions:      parseVersions,
	endpoint.KindVars:          parseVars,
	endpoint.KindGFlags:        parseGFlags,
	endpoint.KindMasters:       parseMasters,
	endpoint.KindTabletServers: parseTabletServers,
	endpoint.KindHealthCheck:   parseHealthCheck,
}

// parse dispatches the body to the kind's adapter.
func parse(kind endpoint.Kind, body []byte, hostPort string, ts time.Time) ([]record.Metric, []record.Row, error) {
	if fn, ok := parsers[kind]; ok {
		return fn(body, hostPort, ts)
	}
	return parseGenericJSON(body, hostPort, ts)
}

// versionInfo mirrors the /api/v1/version payload.
type versionInfo struct {
	GitHash        string `json:"git_hash"`
	BuildHostname  string `json:"build_hostname"`
	BuildTimestamp string `json:"build_timestamp"`
	BuildUsername  string `json:"build_username"`
	BuildCleanRepo bool   `json:"build_clean_repo"`
	BuildID        string `json:"build_id"`
	BuildType      string `json:"build_type"`
	VersionNumber  string `json:"version_number"`
	BuildNumber    string `json:"build_number"`
}

func parseVersions(body []byte, hostPort string, ts time.Time) ([]record.Metric, []record.Row, error) {
	var v versionInfo
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, nil, fmt.Errorf("version payload: %w", err)
	}
	row := record.Row{
		HostnamePort: hostPort,
		Timestamp:    ts,
		Fields: map[string]string{
			"git_hash":         v.GitHash,
			"build_hostname":   v.BuildHostname,
			"build_timestamp":  v.BuildTimestamp,
			"build_username":   v.BuildUsername,
			"build_clean_repo": strconv.FormatBool(v.BuildCleanRepo),
			"build_id":         v.BuildID,
			"build_type":       v.BuildType,
			"version_number":   v.VersionNumber,
			"build_number":     v.BuildNumber,
		},
	}
	return nil, []record.Row{row}, nil
}

func parseVars(body []byte, hostPort string, ts time.Time) ([]record.Metric, []record.Row, error) {
	var payload struct {
		Flags []struct {
			Name  string `json:"name"`
			Value string `json:"value"`
			Type  string `json:"type"`
		} `json:"flags"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, nil, fmt.Errorf("varz payload: %w", err)
	}
	rows := make([]record.Row, 0, len(payload.Flags))
	for _, f := range payload.Flags {
		rows = append(rows, record.Row{
			HostnamePort: hostPort,
			Timestamp:    ts,
			Key:          f.Name,
			Fields: map[string]string{
				"name":  f.Name,
				"value": f.Value,
				"type":  f.Type,
			},
		})
	}
	return nil, rows, nil
}

// parseGFlags reads the raw flag dump: one "--name=value" per line.
func parseGFlags(body []byte, hostPort string, ts time.Time) ([]record.Metric, []record.Row, error) {
	var rows []record.Row
	for _, line := range strings.Split(string(body), "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "--") {
			continue
		}
		name, value, found := strings.Cut(line[2:], "=")
		if !found || name == "" {
			continue
		}
		rows = append(rows, record.Row{
			HostnamePort: hostPort,
			Timestamp:    ts,
			Key:          name,
			Fields:       map[string]string{"name": name, "value": value},
		})
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("gflags payload: no flag lines found")
	}
	return nil, rows, nil
}

func parseMasters(body []byte, hostPort string, ts time.Time) ([]record.Metric, []record.Row, error) {
	var payload struct {
		Masters []struct {
			InstanceID struct {
				PermanentUUID string `json:"permanent_uuid"`
			} `json:"instance_id"`
			Registration struct {
				PrivateRPCAddresses []hostPortJSON `json:"private_rpc_addresses"`
				HTTPAddresses       []hostPortJSON `json:"http_addresses"`
			} `json:"registration"`
			Role  string          `json:"role"`
			Error json.RawMessage `json:"error"`
		} `json:"masters"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, nil, fmt.Errorf("masters payload: %w", err)
	}

	rows := make([]record.Row, 0, len(payload.Masters))
	for _, m := range payload.Masters {
		state := "ALIVE"
		if len(m.Error) > 0 && string(m.Error) != "null" {
			state = "ERROR"
		}
		rows = append(rows, record.Row{
			HostnamePort: hostPort,
			Timestamp:    ts,
			Key:          m.InstanceID.PermanentUUID,
			Fields: map[string]string{
				"instance_uuid":  m.InstanceID.PermanentUUID,
				"state":          state,
				"role":           m.Role,
				"rpc_addresses":  joinAddresses(m.Registration.PrivateRPCAddresses),
				"http_addresses": joinAddresses(m.Registration.HTTPAddresses),
			},
		})
	}
	return nil, rows, nil
}

type hostPortJSON struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

func joinAddresses(addrs []hostPortJSON) string {
	parts := make([]string, 0, len(addrs))
	for _, a := range addrs {
		parts = append(parts, fmt.Sprintf("%s:%d", a.Host, a.Port))
	}
	return strings.Join(parts, ";")
}

func parseTabletServers(body []byte, hostPort string, ts time.Time) ([]record.Metric, []record.Row, error) {
	// Outer map is keyed by placement UUID, inner map by server address.
	var payload map[string]map[string]map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, nil, fmt.Errorf("tablet-servers payload: %w", err)
	}

	var rows []record.Row
	for _, servers := range payload {
		for server, attrs := range servers {
			fields := map[string]string{"server": server}
			for _, name := range []string{
				"status", "uptime_seconds", "ram_used", "num_sst_files",
				"read_ops_per_sec", "write_ops_per_sec",
				"user_tablets_total", "user_tablets_leaders",
			} {
				if v, ok := attrs[name]; ok {
					fields[name] = scalarString(v)
				} else {
					fields[name] = ""
				}
			}
			rows = append(rows, record.Row{
				HostnamePort: hostPort,
				Timestamp:    ts,
				Key:          server,
				Fields:       fields,
			})
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Key < rows[j].Key })
	return nil, rows, nil
}

func parseHealthCheck(body []byte, hostPort string, ts time.Time) ([]record.Metric, []record.Row, error) {
	var payload struct {
		DeadNodes              []string `json:"dead_nodes"`
		MostRecentUptime       int64    `json:"most_recent_uptime"`
		UnderReplicatedTablets []string `json:"under_replicated_tablets"`
		FailedTablets          []string `json:"failed_tablets"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, nil, fmt.Errorf("health-check payload: %w", err)
	}
	row := record.Row{
		HostnamePort: hostPort,
		Timestamp:    ts,
		Fields: map[string]string{
			"dead_nodes":               strings.Join(payload.DeadNodes, ";"),
			"most_recent_uptime":       strconv.FormatInt(payload.MostRecentUptime, 10),
			"under_replicated_tablets": strings.Join(payload.UnderReplicatedTablets, ";"),
			"failed_tablets":           strings.Join(payload.FailedTablets, ";"),
		},
	}
	return nil, []record.Row{row}, nil
}

// parseMetrics reads the database's JSON metrics endpoint: an array of
// entities, each carrying a metric list. Latency-style metrics expose
// total_sum/total_count instead of a single value and are stored as two
// counters.
func parseMetrics(body []byte, hostPort string, ts time.Time) ([]record.Metric, []record.Row, error) {
	var entities []struct {
		Type       string `json:"type"`
		ID         string `json:"id"`
		Attributes struct {
			NamespaceName string `json:"namespace_name"`
			TableName     string `json:"table_name"`
		} `json:"attributes"`
		Metrics []struct {
			Name       string   `json:"name"`
			Value      *float64 `json:"value"`
			TotalSum   *float64 `json:"total_sum"`
			TotalCount *float64 `json:"total_count"`
		} `json:"metrics"`
	}
	if err := json.Unmarshal(body, &entities); err != nil {
		return nil, nil, fmt.Errorf("metrics payload: %w", err)
	}

	var out []record.Metric
	for _, e := range entities {
		entityID := e.ID
		if e.Attributes.TableName != "" {
			entityID = e.Attributes.TableName
			if e.Attributes.NamespaceName != "" {
				entityID = e.Attributes.NamespaceName + "." + e.Attributes.TableName
			}
		}
		for _, m := range e.Metrics {
			base := record.Metric{
				HostnamePort: hostPort,
				Timestamp:    ts,
				MetricType:   e.Type,
				EntityID:     entityID,
			}
			switch {
			case m.Value != nil:
				base.Name = m.Name
				base.Value = *m.Value
				base.Gauge = isGaugeName(m.Name)
				out = append(out, base)
			case m.TotalSum != nil || m.TotalCount != nil:
				if m.TotalCount != nil {
					cnt := base
					cnt.Name = m.Name + ".total_count"
					cnt.Value = *m.TotalCount
					out = append(out, cnt)
				}
				if m.TotalSum != nil {
					sum := base
					sum.Name = m.Name + ".total_sum"
					sum.Value = *m.TotalSum
					out = append(out, sum)
				}
			}
		}
	}
	return out, nil, nil
}

// gauge classification is name-based: the metrics endpoint does not
// carry an explicit type, but upstream naming is consistent enough to
// identify values that may legitimately decrease.
var gaugeSuffixes = []string{
	"_bytes", "_sessions", "_running", "_queue_size", "_tasks",
	"_operations_inflight", "_usage", "_threads", "_limit",
}

var gaugePrefixes = []string{"is_", "generic_", "hybrid_clock_", "threads_running"}

func isGaugeName(name string) bool {
	for _, s := range gaugeSuffixes {
		if strings.HasSuffix(name, s) {
			return true
		}
	}
	for _, p := range gaugePrefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}

// parseNodeExporter reads Prometheus text exposition format.
func parseNodeExporter(body []byte, hostPort string, ts time.Time) ([]record.Metric, []record.Row, error) {
	var parser expfmt.TextParser
	families, err := parser.TextToMetricFamilies(bytes.NewReader(body))
	if err != nil {
		return nil, nil, fmt.Errorf("node-exporter payload: %w", err)
	}

	names := make([]string, 0, len(families))
	for name := range families {
		names = append(names, name)
	}
	sort.Strings(names)

	var out []record.Metric
	for _, name := range names {
		mf := families[name]
		for _, m := range mf.GetMetric() {
			base := record.Metric{
				HostnamePort: hostPort,
				Timestamp:    ts,
				MetricType:   "node",
				EntityID:     labelString(m),
				Name:         name,
			}
			switch mf.GetType() {
			case dto.MetricType_COUNTER:
				base.Value = m.GetCounter().GetValue()
				out = append(out, base)
			case dto.MetricType_GAUGE:
				base.Value = m.GetGauge().GetValue()
				base.Gauge = true
				out = append(out, base)
			case dto.MetricType_UNTYPED:
				base.Value = m.GetUntyped().GetValue()
				out = append(out, base)
			case dto.MetricType_SUMMARY:
				cnt := base
				cnt.Name = name + "_count"
				cnt.Value = float64(m.GetSummary().GetSampleCount())
				sum := base
				sum.Name = name + "_sum"
				sum.Value = m.GetSummary().GetSampleSum()
				out = append(out, cnt, sum)
			case dto.MetricType_HISTOGRAM:
				cnt := base
				cnt.Name = name + "_count"
				cnt.Value = float64(m.GetHistogram().GetSampleCount())
				sum := base
				sum.Name = name + "_sum"
				sum.Value = m.GetHistogram().GetSampleSum()
				out = append(out, cnt, sum)
			}
		}
	}
	return out, nil, nil
}

func labelString(m *dto.Metric) string {
	labels := m.GetLabel()
	if len(labels) == 0 {
		return ""
	}
	parts := make([]string, 0, len(labels))
	for _, l := range labels {
		parts = append(parts, l.GetName()+"="+l.GetValue())
	}
	sort.Strings(parts)
	return strings.Join(parts, ",")
}

// parseGenericJSON is the fallback adapter for kinds without a fixed
// schema. A JSON object becomes one flattened row; an array of objects
// becomes one row per element, keyed by a conventional identifier field
// when present.
func parseGenericJSON(body []byte, hostPort string, ts time.Time) ([]record.Metric, []record.Row, error) {
	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, nil, fmt.Errorf("generic payload: %w", err)
	}

	switch v := payload.(type) {
	case map[string]any:
		fields := make(map[string]string)
		flattenJSON(fields, "", v)
		return nil, []record.Row{{
			HostnamePort: hostPort,
			Timestamp:    ts,
			Fields:       fields,
		}}, nil
	case []any:
		var rows []record.Row
		for i, item := range v {
			obj, ok := item.(map[string]any)
			if !ok {
				continue
			}
			fields := make(map[string]string)
			flattenJSON(fields, "", obj)
			rows = append(rows, record.Row{
				HostnamePort: hostPort,
				Timestamp:    ts,
				Key:          naturalKey(fields, i),
				Fields:       fields,
			})
		}
		return nil, rows, nil
	default:
		return nil, nil, fmt.Errorf("generic payload: unexpected top-level %T", payload)
	}
}

// keyCandidates are conventional identifier fields, in preference order.
var keyCandidates = []string{"id", "uuid", "table_id", "tablet_id", "name", "path"}

func naturalKey(fields map[string]string, index int) string {
	for _, k := range keyCandidates {
		if v, ok := fields[k]; ok && v != "" {
			return v
		}
	}
	return strconv.Itoa(index)
}

func flattenJSON(out map[string]string, prefix string, v any) {
	switch val := v.(type) {
	case map[string]any:
		for k, child := range val {
			flattenJSON(out, joinKey(prefix, k), child)
		}
	case []any:
		scalars := make([]string, 0, len(val))
		onlyScalars := true
		for i, child := range val {
			switch child.(type) {
			case map[string]any, []any:
				onlyScalars = false
				flattenJSON(out, fmt.Sprintf("%s[%d]", prefix, i), child)
			default:
				scalars = append(scalars, scalarString(child))
			}
		}
		if onlyScalars {
			out[prefix] = strings.Join(scalars, ";")
		}
	default:
		out[prefix] = scalarString(v)
	}
}

func joinKey(prefix, suffix string) string {
	if prefix == "" {
		return suffix
	}
	return prefix + "." + suffix
}

func scalarString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
