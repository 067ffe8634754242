package metrics

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/kilianp07/metromatic/core/factory"
	coremetrics "github.com/kilianp07/metromatic/core/metrics"
)

// InfluxConfig configures an influx backend.
type InfluxConfig struct {
	URL    string            `json:"url"`
	Token  string            `json:"token"`
	Org    string            `json:"org"`
	Bucket string            `json:"bucket"`
	Tags   map[string]string `json:"tags"`
}

// InfluxSink writes one point per sample to InfluxDB using the blocking write
// API. The measurement is the metric name.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	tags     map[string]string
	now      func() time.Time
}

// NewInfluxBackend decodes conf and creates an InfluxSink.
func NewInfluxBackend(conf map[string]any) (coremetrics.Backend, error) {
	var c InfluxConfig
	if err := factory.Decode(conf, &c); err != nil {
		return nil, fmt.Errorf("%w: influx: %v", coremetrics.ErrConfig, err)
	}
	if c.URL == "" || c.Org == "" || c.Bucket == "" {
		return nil, fmt.Errorf("%w: influx backend requires url, org and bucket", coremetrics.ErrConfig)
	}
	return NewInfluxSink(c), nil
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(c InfluxConfig) *InfluxSink {
	base := strings.TrimSuffix(c.URL, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, c.Token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(c.Org, c.Bucket),
		tags:     c.Tags,
		now:      time.Now,
	}
}

// Send writes the sample as a line protocol point.
func (s *InfluxSink) Send(kind coremetrics.Kind, name string, value any) error {
	p := write.NewPointWithMeasurement(name).
		AddTag("kind", kind.String()).
		SetTime(s.now())
	for k, v := range s.tags {
		p.AddTag(k, v)
	}
	switch kind {
	case coremetrics.Timing:
		ms, ok := toFloat64(value)
		if !ok {
			return fmt.Errorf("%w: influx timing %q needs a duration, got %T", coremetrics.ErrUnsupportedOperation, name, value)
		}
		p.AddField("duration_ms", round3(ms))
	case coremetrics.Gauge:
		if m, ok := value.(map[string]any); ok {
			if len(m) == 0 {
				return nil
			}
			for k, v := range m {
				p.AddField(k, v)
			}
		} else {
			p.AddField("value", value)
		}
	case coremetrics.Counter:
		if value == nil {
			value = 1
		}
		p.AddField("count", value)
	case coremetrics.Set:
		p.AddField("member", fmt.Sprint(value))
	default:
		return fmt.Errorf("%w: influx backend does not support %q", coremetrics.ErrUnsupportedOperation, kind)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.writeAPI.WritePoint(ctx, p)
}

// Close releases the HTTP client.
func (s *InfluxSink) Close() error {
	s.client.Close()
	return nil
}

func round3(f float64) float64 {
	return float64(int64(f*1000+0.5)) / 1000
}
