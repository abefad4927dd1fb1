/*
Copyright © 2026 ybstat authors
SPDX-License-Identifier: Apache-2.0
*/

package defaults

import (
	"testing"
	"time"
)

func TestTimeoutConstants(t *testing.T) {
	tests := []struct {
		name     string
		timeout  time.Duration
		minValue time.Duration
		maxValue time.Duration
	}{
		{"ProbeTimeout", ProbeTimeout, 100 * time.Millisecond, 5 * time.Second},
		{"FetchTimeout", FetchTimeout, 5 * time.Second, 30 * time.Second},
		{"TLSHandshakeTimeout", TLSHandshakeTimeout, 1 * time.Second, 15 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.timeout < tt.minValue {
				t.Errorf("%s (%v) is below minimum expected value (%v)", tt.name, tt.timeout, tt.minValue)
			}
			if tt.timeout > tt.maxValue {
				t.Errorf("%s (%v) is above maximum expected value (%v)", tt.name, tt.timeout, tt.maxValue)
			}
		})
	}
}

func TestProbeTimeoutLessThanFetch(t *testing.T) {
	// The probe exists to fail fast; it must be cheaper than a full fetch.
	if ProbeTimeout >= FetchTimeout {
		t.Errorf("ProbeTimeout (%v) should be less than FetchTimeout (%v)",
			ProbeTimeout, FetchTimeout)
	}
}

func TestTLSHandshakeTimeoutLessThanFetch(t *testing.T) {
	if TLSHandshakeTimeout >= FetchTimeout {
		t.Errorf("TLSHandshakeTimeout (%v) should be less than FetchTimeout (%v)",
			TLSHandshakeTimeout, FetchTimeout)
	}
}
