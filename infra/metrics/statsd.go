package metrics

import (
	"fmt"
	"net"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/cactus/go-statsd-client/v5/statsd"

	"github.com/kilianp07/metromatic/core/factory"
	coremetrics "github.com/kilianp07/metromatic/core/metrics"
)

// StatsdConfig configures a statsd backend.
type StatsdConfig struct {
	Host       string            `json:"host"`
	Port       int               `json:"port"`
	Prefix     string            `json:"prefix"`
	SampleRate float32           `json:"sample_rate"`
	Tags       map[string]string `json:"tags"`
}

// StatsdBackend is an abstraction over a UDP statsd emitter. Samples are sent
// unbuffered, one datagram per call.
type StatsdBackend struct {
	client     statsd.Statter
	tags       string
	sampleRate float32
}

// NewStatsdBackend decodes conf and connects a statsd client to host:port.
func NewStatsdBackend(conf map[string]any) (coremetrics.Backend, error) {
	var c StatsdConfig
	if err := factory.Decode(conf, &c); err != nil {
		return nil, fmt.Errorf("%w: statsd: %v", coremetrics.ErrConfig, err)
	}
	return NewStatsdBackendFromConfig(c)
}

// NewStatsdBackendFromConfig creates a statsd backend from a typed config.
func NewStatsdBackendFromConfig(c StatsdConfig) (*StatsdBackend, error) {
	if c.Host == "" || c.Port == 0 {
		return nil, fmt.Errorf("%w: statsd backend requires host and port", coremetrics.ErrConfig)
	}
	if c.SampleRate <= 0 {
		c.SampleRate = 1
	}
	client, err := statsd.NewClientWithConfig(&statsd.ClientConfig{
		Address: net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Prefix:  c.Prefix,
	})
	if err != nil {
		return nil, fmt.Errorf("statsd: error creating statsd client: %w", err)
	}
	return &StatsdBackend{
		client:     client,
		tags:       formatTags(c.Tags),
		sampleRate: c.SampleRate,
	}, nil
}

// Send routes the sample to the statsd operation matching kind.
func (s *StatsdBackend) Send(kind coremetrics.Kind, name string, value any) error {
	stat := s.formatMetric(name)
	switch kind {
	case coremetrics.Timing:
		ms, ok := toInt64(value)
		if !ok {
			return fmt.Errorf("%w: statsd timing %q needs a duration, got %T", coremetrics.ErrUnsupportedOperation, name, value)
		}
		return s.client.Timing(stat, ms, s.sampleRate)
	case coremetrics.Gauge:
		n, ok := toInt64(value)
		if !ok {
			return fmt.Errorf("%w: statsd gauge %q needs a number, got %T", coremetrics.ErrUnsupportedOperation, name, value)
		}
		return s.client.Gauge(stat, n, s.sampleRate)
	case coremetrics.Counter:
		delta := int64(1)
		if value != nil {
			n, ok := toInt64(value)
			if !ok {
				return fmt.Errorf("%w: statsd counter %q needs a number, got %T", coremetrics.ErrUnsupportedOperation, name, value)
			}
			delta = n
		}
		return s.client.Inc(stat, delta, s.sampleRate)
	case coremetrics.Set:
		return s.client.Set(stat, fmt.Sprint(value), s.sampleRate)
	default:
		return fmt.Errorf("%w: statsd backend does not support %q", coremetrics.ErrUnsupportedOperation, kind)
	}
}

// Close releases the underlying socket.
func (s *StatsdBackend) Close() error { return s.client.Close() }

// formatMetric escapes the metric name and appends the configured tags.
func (s *StatsdBackend) formatMetric(metric string) string {
	// Colons and pipes would break the statsd line format.
	escaped := url.QueryEscape(metric)
	if s.tags == "" {
		return escaped
	}
	return escaped + "," + s.tags
}

// formatTags serializes tags InfluxDB-style, sorted by key.
func formatTags(tags map[string]string) string {
	if len(tags) == 0 {
		return ""
	}
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	components := make([]string, 0, len(keys))
	for _, k := range keys {
		components = append(components, fmt.Sprintf("%s=%s", url.QueryEscape(k), url.QueryEscape(tags[k])))
	}
	return strings.Join(components, ",")
}
