/*
Copyright © 2026 ybstat authors
SPDX-License-Identifier: Apache-2.0
*/

// Package defaults provides centralized configuration constants for ybstat.
//
// This package defines timeout values and collection defaults used across
// the codebase. Centralizing these values ensures consistency and makes
// tuning easier.
//
// # Categories
//
//   - Probe/fetch timeouts: for per-host reachability checks and HTTP GETs
//   - Collection defaults: host list, port list, parallelism
//
// # Usage
//
// Import and use constants directly:
//
//	import "github.com/ybstat/ybstat/pkg/defaults"
//
//	ctx, cancel := context.WithTimeout(ctx, defaults.FetchTimeout)
//	defer cancel()
package defaults
