/*
Copyright © 2026 ybstat authors
SPDX-License-Identifier: Apache-2.0
*/

// Package snapshotter orchestrates full capture passes: every endpoint
// kind collected from every resolved target, flushed through the
// snapshot store as each kind completes.
package snapshotter

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ybstat/ybstat/pkg/collector"
	"github.com/ybstat/ybstat/pkg/endpoint"
	"github.com/ybstat/ybstat/pkg/record"
	"github.com/ybstat/ybstat/pkg/store"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// Snapshotter captures cluster diagnostics into the snapshot store.
type Snapshotter struct {
	collector *collector.Collector
	store     *store.Store
	config    *endpoint.Config
	kinds     []endpoint.Kind
}

// Option configures a Snapshotter.
type Option func(*Snapshotter)

// WithKinds narrows the pass to the given kinds. The default is every
// registered kind.
func WithKinds(kinds ...endpoint.Kind) Option {
	return func(s *Snapshotter) {
		if len(kinds) > 0 {
			s.kinds = kinds
		}
	}
}

// New creates a Snapshotter over the given collector, store, and
// resolved collection config.
func New(c *collector.Collector, st *store.Store, cfg *endpoint.Config, opts ...Option) *Snapshotter {
	s := &Snapshotter{
		collector: c,
		store:     st,
		config:    cfg,
		kinds:     endpoint.Kinds,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot runs one full capture pass and returns the allocated
// snapshot number. Kinds run concurrently and are flushed to disk as
// each completes; within one kind, per-host fetches are bounded by the
// configured parallelism. A process killed mid-pass leaves the number
// allocated with whatever kinds completed, which a later diff reports
// as missing data rather than corruption.
func (s *Snapshotter) Snapshot(ctx context.Context, comment string) (int, error) {
	targets := s.config.Targets()
	slog.Debug("starting snapshot pass",
		"targets", len(targets),
		"kinds", len(s.kinds),
		"parallel", s.config.Parallel)

	start := time.Now()
	defer func() {
		snapshotDuration.Observe(time.Since(start).Seconds())
	}()

	number, err := s.store.Begin(comment)
	if err != nil {
		snapshotTotal.WithLabelValues(statusError).Inc()
		return 0, err
	}

	var (
		mu    sync.Mutex
		total int
	)
	g, gctx := errgroup.WithContext(ctx)
	for _, kind := range s.kinds {
		g.Go(func() error {
			kindStart := time.Now()
			defer func() {
				snapshotKindDuration.WithLabelValues(kind.String()).Observe(time.Since(kindStart).Seconds())
			}()

			set, err := s.collector.Collect(gctx, kind, targets, s.config.Parallel)
			if err != nil {
				return fmt.Errorf("collect %s: %w", kind, err)
			}
			if err := s.store.Write(number, set); err != nil {
				return fmt.Errorf("store %s: %w", kind, err)
			}

			mu.Lock()
			total += set.Len()
			mu.Unlock()
			slog.Debug("stored kind", "kind", kind.String(), "records", set.Len(), "snapshot", number)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		snapshotTotal.WithLabelValues(statusError).Inc()
		return 0, err
	}

	snapshotTotal.WithLabelValues(statusSuccess).Inc()
	snapshotRecords.Set(float64(total))
	slog.Debug("snapshot pass complete", "snapshot", number, "records", total)
	return number, nil
}

// CollectAll runs one live pass across the snapshotter's kinds and
// keeps the results in memory, for adhoc diffs that never touch disk.
func (s *Snapshotter) CollectAll(ctx context.Context) (map[endpoint.Kind]*record.Set, error) {
	targets := s.config.Targets()

	var mu sync.Mutex
	sets := make(map[endpoint.Kind]*record.Set, len(s.kinds))

	g, gctx := errgroup.WithContext(ctx)
	for _, kind := range s.kinds {
		g.Go(func() error {
			set, err := s.collector.Collect(gctx, kind, targets, s.config.Parallel)
			if err != nil {
				return fmt.Errorf("collect %s: %w", kind, err)
			}
			mu.Lock()
			sets[kind] = set
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return sets, nil
}
