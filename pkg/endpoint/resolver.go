/*
Copyright © 2026 ybstat authors
SPDX-License-Identifier: Apache-2.0
*/

package endpoint

import (
	"fmt"
	"net"
	"regexp"
	"strings"

	"github.com/ybstat/ybstat/pkg/defaults"
	yberrors "github.com/ybstat/ybstat/pkg/errors"
)

// Target is one concrete fetch destination.
type Target struct {
	Host string
	Port string
}

// HostPort returns the host:port form used as the record envelope value.
func (t Target) HostPort() string {
	return net.JoinHostPort(t.Host, t.Port)
}

// Config is the explicit result of resolving collection inputs. It is a
// plain value handed from the command surface to the collector; no
// resolved setting lives in ambient mutable state.
type Config struct {
	Hosts    []string
	Ports    []string
	Parallel int

	// HostnameMatch, when non-nil, filters the work list before any
	// network call is made. A pattern matching zero hosts is not an
	// error: it yields an empty section for every kind.
	HostnameMatch *regexp.Regexp
}

// Resolve turns comma-separated host and port lists, a parallelism bound,
// and an optional hostname-match pattern into a Config.
//
// Empty hosts or ports fall back to the package defaults. Parallelism
// below 1 is rejected: the bound is an admission gate, not a hint.
func Resolve(hosts, ports string, parallel int, hostnameMatch string) (*Config, error) {
	if strings.TrimSpace(hosts) == "" {
		hosts = defaults.Hosts
	}
	if strings.TrimSpace(ports) == "" {
		ports = defaults.Ports
	}
	if parallel < 1 {
		return nil, yberrors.NewWithContext(yberrors.ErrCodeInvalidRequest,
			"parallelism must be at least 1",
			map[string]any{"parallel": parallel})
	}

	cfg := &Config{
		Hosts:    splitList(hosts),
		Ports:    splitList(ports),
		Parallel: parallel,
	}

	if hostnameMatch != "" {
		re, err := regexp.Compile(hostnameMatch)
		if err != nil {
			return nil, yberrors.Wrap(yberrors.ErrCodeInvalidRequest,
				fmt.Sprintf("invalid hostname match pattern %q", hostnameMatch), err)
		}
		cfg.HostnameMatch = re
	}

	return cfg, nil
}

// Targets returns the host × port cross product, filtered by the
// hostname-match pattern. The result may be empty.
func (c *Config) Targets() []Target {
	targets := make([]Target, 0, len(c.Hosts)*len(c.Ports))
	for _, host := range c.Hosts {
		for _, port := range c.Ports {
			t := Target{Host: host, Port: port}
			if c.HostnameMatch != nil && !c.HostnameMatch.MatchString(t.HostPort()) {
				continue
			}
			targets = append(targets, t)
		}
	}
	return targets
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
