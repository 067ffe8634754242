package metrics_test

import (
	"encoding/json"
	"errors"
	"testing"

	"gopkg.in/yaml.v3"

	metrics "github.com/kilianp07/metromatic/core/metrics"
)

// Test decoding from YAML with backends, the legacy statsd section and metrics.
func TestOptionsDecodeYAML(t *testing.T) {
	data := `backends:
  - type: nop
  - type: nop
statsd:
  host: localhost
  port: 8125
metrics:
  - type: timing
    name: t1
    eventStart: a
    eventStop: b
  - type: gauge
    name: g1
    eventGauge: g
`
	var opts metrics.Options
	if err := yaml.Unmarshal([]byte(data), &opts); err != nil {
		t.Fatalf("yaml unmarshal: %v", err)
	}
	if len(opts.Backends) != 2 || opts.StatsD == nil || opts.StatsD.Port != 8125 {
		t.Fatalf("unexpected backends %+v statsd %+v", opts.Backends, opts.StatsD)
	}
	want := []metrics.MetricSpec{
		{Type: "timing", Name: "t1", EventStart: "a", EventStop: "b"},
		{Type: "gauge", Name: "g1", EventGauge: "g"},
	}
	if len(opts.Metrics) != len(want) {
		t.Fatalf("expected %d metrics got %d", len(want), len(opts.Metrics))
	}
	for i := range want {
		if opts.Metrics[i] != want[i] {
			t.Fatalf("metric %d: expected %+v got %+v", i, want[i], opts.Metrics[i])
		}
	}
}

// Test decoding from JSON with an invalid backend type.
func TestOptionsDecodeJSON_Invalid(t *testing.T) {
	data := `{"backends":[{"type":"missing"}]}`
	var opts metrics.Options
	if err := json.Unmarshal([]byte(data), &opts); err != nil {
		t.Fatalf("json unmarshal: %v", err)
	}
	_, err := metrics.NewBackends(opts)
	if !errors.Is(err, metrics.ErrConfig) {
		t.Fatalf("expected ErrConfig for unknown type, got %v", err)
	}
}
