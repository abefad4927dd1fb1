/*
Copyright © 2026 ybstat authors
SPDX-License-Identifier: Apache-2.0
*/

// Package collector fetches one endpoint kind from every host in a work
// list with bounded concurrency.
//
// Per-host failures never abort a pass: unreachable or unresponsive
// hosts, and hosts returning unparseable payloads, contribute a default
// record explicitly tagged synthetic, plus a warning on the structured
// log. The only error Collect returns is context cancellation.
package collector

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/ybstat/ybstat/pkg/defaults"
	"github.com/ybstat/ybstat/pkg/endpoint"
	"github.com/ybstat/ybstat/pkg/record"
)

// maxResponseBytes bounds one endpoint response body read.
const maxResponseBytes = 32 * 1024 * 1024

// fetch outcome labels for self-instrumentation.
const (
	statusOK          = "ok"
	statusUnreachable = "unreachable"
	statusSynthetic   = "synthetic"
)

// Collector fetches diagnostic endpoints from cluster nodes.
type Collector struct {
	client       *http.Client
	probeTimeout time.Duration
	limiter      *rate.Limiter
}

// Option configures a Collector.
type Option func(*Collector)

// WithHTTPClient overrides the HTTP client used for endpoint fetches.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Collector) {
		c.client = client
	}
}

// WithProbeTimeout overrides the TCP reachability probe timeout.
func WithProbeTimeout(d time.Duration) Option {
	return func(c *Collector) {
		c.probeTimeout = d
	}
}

// WithRateLimit caps outbound fetches at rps requests per second across
// the whole pass. Zero or negative disables limiting.
func WithRateLimit(rps float64) Option {
	return func(c *Collector) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// New creates a Collector with the default accept-any-certificate TLS
// policy and bounded per-request timeout.
func New(opts ...Option) *Collector {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = &tls.Config{
		InsecureSkipVerify: true, //nolint:gosec // cluster web UIs use self-signed certs
	}
	transport.TLSHandshakeTimeout = defaults.TLSHandshakeTimeout

	c := &Collector{
		client: &http.Client{
			Timeout:   defaults.FetchTimeout,
			Transport: transport,
		},
		probeTimeout: defaults.ProbeTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Collect fetches kind from every target, running at most parallel
// fetches concurrently, and waits for all of them before returning. The
// returned set carries one timestamp shared by the whole pass. Record
// order is unspecified.
func (c *Collector) Collect(ctx context.Context, kind endpoint.Kind, targets []endpoint.Target, parallel int) (*record.Set, error) {
	capturedAt := time.Now()
	set := record.NewSet(kind, capturedAt)
	if len(targets) == 0 {
		return set, nil
	}
	if parallel < 1 {
		parallel = defaults.Parallel
	}

	passID := uuid.NewString()
	start := time.Now()
	defer func() {
		fetchPassDuration.WithLabelValues(kind.String()).Observe(time.Since(start).Seconds())
	}()

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)

	for _, target := range targets {
		g.Go(func() error {
			if c.limiter != nil {
				if err := c.limiter.Wait(gctx); err != nil {
					return err
				}
			}
			if err := gctx.Err(); err != nil {
				return err
			}

			metrics, rows, status := c.fetchOne(gctx, kind, target, capturedAt, passID)
			fetchTotal.WithLabelValues(kind.String(), status).Inc()

			mu.Lock()
			set.AddMetrics(metrics...)
			set.AddRows(rows...)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	set.Dedupe()
	return set, nil
}

// fetchOne probes, fetches, and parses a single target. It always
// produces records: failures degrade to the kind's synthetic default.
func (c *Collector) fetchOne(ctx context.Context, kind endpoint.Kind, target endpoint.Target, capturedAt time.Time, passID string) ([]record.Metric, []record.Row, string) {
	hostPort := target.HostPort()

	if !c.reachable(hostPort) {
		slog.Warn("hostname:port cannot be reached, skipping",
			"hostname_port", hostPort,
			"kind", kind.String(),
			"pass", passID)
		return synthetic(kind, hostPort, capturedAt, statusUnreachable)
	}

	body, err := c.get(ctx, kind, hostPort)
	if err != nil {
		// Timeouts and transport errors are treated identically to
		// an unreachable host.
		slog.Warn("endpoint fetch failed, skipping",
			"hostname_port", hostPort,
			"kind", kind.String(),
			"pass", passID,
			"error", err.Error())
		return synthetic(kind, hostPort, capturedAt, statusUnreachable)
	}

	metrics, rows, err := parse(kind, body, hostPort, capturedAt)
	if err != nil {
		slog.Warn("payload could not be parsed, substituting empty record",
			"hostname_port", hostPort,
			"kind", kind.String(),
			"pass", passID,
			"error", err.Error())
		return synthetic(kind, hostPort, capturedAt, statusSynthetic)
	}
	return metrics, rows, statusOK
}

// reachable performs the cheap TCP probe ahead of the HTTP request.
func (c *Collector) reachable(hostPort string) bool {
	conn, err := net.DialTimeout("tcp", hostPort, c.probeTimeout)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

func (c *Collector) get(ctx context.Context, kind endpoint.Kind, hostPort string) ([]byte, error) {
	url := "http://" + hostPort + kind.Spec().Path

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()
	fetchDuration.WithLabelValues(kind.String()).Observe(time.Since(start).Seconds())

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return body, nil
}

func synthetic(kind endpoint.Kind, hostPort string, ts time.Time, status string) ([]record.Metric, []record.Row, string) {
	if kind.IsMetric() {
		return []record.Metric{record.SyntheticMetric(hostPort, ts)}, nil, status
	}
	return nil, []record.Row{record.SyntheticRow(kind, hostPort, ts)}, status
}
