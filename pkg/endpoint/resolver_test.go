/*
Copyright © 2026 ybstat authors
SPDX-License-Identifier: Apache-2.0
*/

package endpoint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	yberrors "github.com/ybstat/ybstat/pkg/errors"
)

func TestResolveDefaults(t *testing.T) {
	cfg, err := Resolve("", "", 1, "")
	require.NoError(t, err)
	assert.Len(t, cfg.Hosts, 3)
	assert.Len(t, cfg.Ports, 4)
	assert.Equal(t, 1, cfg.Parallel)
	assert.Len(t, cfg.Targets(), 12)
}

func TestResolveCrossProduct(t *testing.T) {
	cfg, err := Resolve("10.0.0.1,10.0.0.2", "7000,9000", 2, "")
	require.NoError(t, err)

	targets := cfg.Targets()
	require.Len(t, targets, 4)
	assert.Equal(t, "10.0.0.1:7000", targets[0].HostPort())
	assert.Equal(t, "10.0.0.1:9000", targets[1].HostPort())
	assert.Equal(t, "10.0.0.2:7000", targets[2].HostPort())
	assert.Equal(t, "10.0.0.2:9000", targets[3].HostPort())
}

func TestResolveTrimsWhitespaceAndEmptyEntries(t *testing.T) {
	cfg, err := Resolve(" 10.0.0.1 , ,10.0.0.2", "7000, ", 1, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, cfg.Hosts)
	assert.Equal(t, []string{"7000"}, cfg.Ports)
}

func TestResolveHostnameMatch(t *testing.T) {
	cfg, err := Resolve("10.0.0.1,10.0.0.2", "7000,9000", 1, `10\.0\.0\.1:\d+`)
	require.NoError(t, err)

	targets := cfg.Targets()
	require.Len(t, targets, 2)
	for _, tgt := range targets {
		assert.Equal(t, "10.0.0.1", tgt.Host)
	}
}

func TestResolveHostnameMatchNoHosts(t *testing.T) {
	// A filter matching nothing yields an empty work list, not an error.
	cfg, err := Resolve("10.0.0.1", "7000", 1, "nomatch")
	require.NoError(t, err)
	assert.Empty(t, cfg.Targets())
}

func TestResolveInvalidPattern(t *testing.T) {
	_, err := Resolve("10.0.0.1", "7000", 1, "[unterminated")
	require.Error(t, err)
	assert.True(t, yberrors.HasCode(err, yberrors.ErrCodeInvalidRequest))
}

func TestResolveInvalidParallel(t *testing.T) {
	_, err := Resolve("10.0.0.1", "7000", 0, "")
	require.Error(t, err)
	assert.True(t, yberrors.HasCode(err, yberrors.ErrCodeInvalidRequest))
}
