package metrics

import "github.com/kilianp07/metromatic/core/factory"

// Options describes one instrumentation request.
type Options struct {
	Backends []factory.ModuleConfig `json:"backends" yaml:"backends"`
	// StatsD is the legacy single-backend shortcut. When set, a statsd
	// backend is appended after Backends.
	StatsD  *StatsDConfig `json:"statsd" yaml:"statsd"`
	Metrics []MetricSpec  `json:"metrics" yaml:"metrics"`
}

// StatsDConfig holds the legacy top-level statsd section.
type StatsDConfig struct {
	Host string `json:"host" yaml:"host"`
	Port int    `json:"port" yaml:"port"`
}

// MetricSpec describes one measurement. Name is the label reported to
// backends; the Event fields name the source events to subscribe to.
type MetricSpec struct {
	Type       string `json:"type" yaml:"type"`
	Name       string `json:"name" yaml:"name"`
	EventStart string `json:"eventStart" yaml:"eventStart"`
	EventStop  string `json:"eventStop" yaml:"eventStop"`
	EventGauge string `json:"eventGauge" yaml:"eventGauge"`
}
