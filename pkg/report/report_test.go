/*
Copyright © 2026 ybstat authors
SPDX-License-Identifier: Apache-2.0
*/

package report

import (
	"bytes"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ybstat/ybstat/pkg/diff"
	"github.com/ybstat/ybstat/pkg/endpoint"
	"github.com/ybstat/ybstat/pkg/record"
	"github.com/ybstat/ybstat/pkg/store"
)

var reportTs = time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC)

func TestMetricDiffTable(t *testing.T) {
	deltas := []diff.MetricDelta{
		{
			HostnamePort: "n1:9000", MetricType: "server", Name: "rows_inserted",
			Begin: 1000, End: 125000, Delta: 124000, Rate: 2066.667, RateValid: true,
		},
		{
			HostnamePort: "n1:9000", MetricType: "server", Name: "compactions",
			Begin: 50, End: 10, Delta: 10, Reset: true, Rate: 0.167, RateValid: true,
		},
	}

	var buf bytes.Buffer
	r := New(&buf, record.Filters{}, false)
	require.NoError(t, r.MetricDiff(deltas, 60*time.Second))

	out := buf.String()
	assert.Contains(t, out, "HOSTNAME:PORT")
	assert.Contains(t, out, "124,000")
	assert.Contains(t, out, "2,066.667")
	assert.Contains(t, out, "reset")
	assert.Contains(t, out, "interval: 1m0s")
}

func TestMetricDiffDetailsColumn(t *testing.T) {
	deltas := []diff.MetricDelta{
		{HostnamePort: "n1:9000", MetricType: "tablet", EntityID: "yugabyte.orders",
			Name: "rows_inserted", Delta: 5, End: 5},
	}

	var buf bytes.Buffer
	r := New(&buf, record.Filters{}, true)
	require.NoError(t, r.MetricDiff(deltas, time.Minute))
	assert.Contains(t, buf.String(), "yugabyte.orders")
	assert.Contains(t, buf.String(), "ID")
}

func TestMetricDiffStatNameFilter(t *testing.T) {
	deltas := []diff.MetricDelta{
		{HostnamePort: "n1:9000", Name: "rows_inserted", Delta: 5},
		{HostnamePort: "n1:9000", Name: "compactions", Delta: 7},
	}

	var buf bytes.Buffer
	f := record.Filters{StatName: regexp.MustCompile("^rows_")}
	require.NoError(t, New(&buf, f, false).MetricDiff(deltas, time.Minute))

	assert.Contains(t, buf.String(), "rows_inserted")
	assert.NotContains(t, buf.String(), "compactions")
}

func TestMetricDiffAllFilteredWritesNothing(t *testing.T) {
	deltas := []diff.MetricDelta{{HostnamePort: "n1:9000", Name: "compactions", Delta: 7}}

	var buf bytes.Buffer
	f := record.Filters{Hostname: regexp.MustCompile("^n9:")}
	require.NoError(t, New(&buf, f, false).MetricDiff(deltas, time.Minute))
	assert.Equal(t, "", buf.String())
}

func TestRowDiffTable(t *testing.T) {
	changes := []diff.RowChange{
		{HostnamePort: "n1:7000", Key: "new_flag", Change: diff.ChangeAdded,
			After: map[string]string{"name": "new_flag", "value": "true"}},
		{HostnamePort: "n1:7000", Key: "old_flag", Change: diff.ChangeRemoved,
			Before: map[string]string{"name": "old_flag", "value": "1"}},
		{HostnamePort: "n1:7000", Key: "log_dir", Change: diff.ChangeChanged,
			Before: map[string]string{"name": "log_dir", "value": "/a"},
			After:  map[string]string{"name": "log_dir", "value": "/b"}},
	}

	var buf bytes.Buffer
	require.NoError(t, New(&buf, record.Filters{}, false).RowDiff(changes))

	out := buf.String()
	assert.Contains(t, out, "name=new_flag value=true")
	assert.Contains(t, out, "name=old_flag value=1")
	// Changed rows show only the differing field.
	assert.Contains(t, out, "/a")
	assert.Contains(t, out, "/b")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 4) // header + one line per change
}

func TestSetTableStructured(t *testing.T) {
	set := record.NewSet(endpoint.KindVersions, reportTs)
	set.AddRows(record.Row{
		HostnamePort: "n1:7000",
		Timestamp:    reportTs,
		Fields: map[string]string{
			"git_hash": "abc", "build_hostname": "", "build_timestamp": "",
			"build_username": "", "build_clean_repo": "true", "build_id": "3686",
			"build_type": "RELEASE", "version_number": "2.11.2.0", "build_number": "89",
		},
	})

	var buf bytes.Buffer
	require.NoError(t, New(&buf, record.Filters{}, false).Set(set))

	out := buf.String()
	assert.Contains(t, out, "VERSION_NUMBER")
	assert.Contains(t, out, "2.11.2.0")
	assert.Contains(t, out, "n1:7000")
	// Versions output is narrowed to the readable columns.
	assert.NotContains(t, out, "BUILD_HOSTNAME")
	assert.NotContains(t, out, "BUILD_CLEAN_REPO")
}

func TestSetTableMetricSkipsSynthetic(t *testing.T) {
	set := record.NewSet(endpoint.KindMetrics, reportTs)
	set.AddMetrics(
		record.Metric{HostnamePort: "n1:9000", MetricType: "server", Name: "rows_inserted", Value: 1500000},
		record.SyntheticMetric("n2:9000", reportTs),
	)

	var buf bytes.Buffer
	require.NoError(t, New(&buf, record.Filters{}, false).Set(set))

	out := buf.String()
	assert.Contains(t, out, "1,500,000")
	assert.NotContains(t, out, "n2:9000")
}

func TestCatalogTable(t *testing.T) {
	entries := []store.Entry{
		{Number: 0, Timestamp: reportTs, Comment: "before load"},
		{Number: 1, Timestamp: reportTs.Add(time.Hour), Comment: ""},
	}

	var buf bytes.Buffer
	require.NoError(t, New(&buf, record.Filters{}, false).Catalog(entries))

	out := buf.String()
	assert.Contains(t, out, "NUMBER")
	assert.Contains(t, out, "before load")
	assert.Contains(t, out, "2026-08-26 10:00:00")
}

func TestCatalogEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New(&buf, record.Filters{}, false).Catalog(nil))
	assert.Contains(t, buf.String(), "no snapshots found")
}
