/*
Copyright © 2026 ybstat authors
SPDX-License-Identifier: Apache-2.0
*/

package record

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFiltersZeroValueMatchesEverything(t *testing.T) {
	var f Filters
	assert.True(t, f.MatchMetric(Metric{HostnamePort: "h:7000", Name: "anything"}))
	assert.True(t, f.MatchRow(Row{HostnamePort: "h:9000"}))
}

func TestFiltersStatName(t *testing.T) {
	f := Filters{StatName: regexp.MustCompile(`^rpc_`)}

	ms := f.Metrics([]Metric{
		{HostnamePort: "h:7000", Name: "rpc_inbound_calls"},
		{HostnamePort: "h:7000", Name: "cpu_utime"},
	})
	assert.Len(t, ms, 1)
	assert.Equal(t, "rpc_inbound_calls", ms[0].Name)
}

func TestFiltersHostname(t *testing.T) {
	f := Filters{Hostname: regexp.MustCompile(`:9000$`)}

	rows := f.Rows([]Row{
		{HostnamePort: "10.0.0.1:7000"},
		{HostnamePort: "10.0.0.1:9000"},
	})
	assert.Len(t, rows, 1)
	assert.Equal(t, "10.0.0.1:9000", rows[0].HostnamePort)
}

func TestFiltersTableName(t *testing.T) {
	f := Filters{TableName: regexp.MustCompile(`orders`)}

	ms := f.Metrics([]Metric{
		{HostnamePort: "h:9000", MetricType: "table", EntityID: "orders", Name: "rows_inserted"},
		{HostnamePort: "h:9000", MetricType: "table", EntityID: "users", Name: "rows_inserted"},
	})
	assert.Len(t, ms, 1)
	assert.Equal(t, "orders", ms[0].EntityID)
}

func TestFiltersCombined(t *testing.T) {
	f := Filters{
		Hostname: regexp.MustCompile(`^10\.0\.0\.1`),
		StatName: regexp.MustCompile(`inserted`),
	}

	ms := f.Metrics([]Metric{
		{HostnamePort: "10.0.0.1:9000", Name: "rows_inserted"},
		{HostnamePort: "10.0.0.2:9000", Name: "rows_inserted"},
		{HostnamePort: "10.0.0.1:9000", Name: "rows_deleted"},
	})
	assert.Len(t, ms, 1)
}
