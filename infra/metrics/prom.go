package metrics

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/metromatic/core/factory"
	coremetrics "github.com/kilianp07/metromatic/core/metrics"
)

// PromConfig configures a prometheus backend.
type PromConfig struct {
	Namespace string    `json:"namespace"`
	Buckets   []float64 `json:"buckets"`
}

// PromSink records samples in Prometheus collectors labelled by metric name.
type PromSink struct {
	timing  *prometheus.HistogramVec
	gauge   *prometheus.GaugeVec
	counter *prometheus.CounterVec
}

// NewPromSink registers the collectors on the default Prometheus registerer.
// The /metrics endpoint is served separately by StartPromServer.
func NewPromSink(conf map[string]any) (coremetrics.Backend, error) {
	var c PromConfig
	if err := factory.Decode(conf, &c); err != nil {
		return nil, fmt.Errorf("%w: prometheus: %v", coremetrics.ErrConfig, err)
	}
	return NewPromSinkWithRegistry(c, prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers the collectors on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer. Collectors
// already registered by an earlier session are reused.
func NewPromSinkWithRegistry(cfg PromConfig, reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if cfg.Namespace == "" {
		cfg.Namespace = "metromatic"
	}
	if len(cfg.Buckets) == 0 {
		cfg.Buckets = prometheus.DefBuckets
	}
	timing := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: cfg.Namespace,
		Name:      "timing_seconds",
		Help:      "Duration between correlated start and stop events",
		Buckets:   cfg.Buckets,
	}, []string{"metric"})
	gauge := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: cfg.Namespace,
		Name:      "gauge",
		Help:      "Last reported gauge value; structured payloads use one series per numeric field",
	}, []string{"metric", "field"})
	counter := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: cfg.Namespace,
		Name:      "counter_total",
		Help:      "Accumulated counter samples",
	}, []string{"metric"})

	var err error
	if timing, err = register(reg, timing); err != nil {
		return nil, err
	}
	if gauge, err = register(reg, gauge); err != nil {
		return nil, err
	}
	if counter, err = register(reg, counter); err != nil {
		return nil, err
	}
	return &PromSink{timing: timing, gauge: gauge, counter: counter}, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, fmt.Errorf("%w: prometheus: %v", coremetrics.ErrConfig, err)
	}
	return c, nil
}

// Send observes timings in seconds, sets gauges and adds to counters.
func (s *PromSink) Send(kind coremetrics.Kind, name string, value any) error {
	switch kind {
	case coremetrics.Timing:
		ms, ok := toFloat64(value)
		if !ok {
			return fmt.Errorf("%w: prometheus timing %q needs a duration, got %T", coremetrics.ErrUnsupportedOperation, name, value)
		}
		s.timing.WithLabelValues(name).Observe(ms / 1000)
	case coremetrics.Gauge:
		if f, ok := toFloat64(value); ok {
			s.gauge.WithLabelValues(name, "").Set(f)
			return nil
		}
		if _, ok := value.(map[string]any); !ok {
			return fmt.Errorf("%w: prometheus gauge %q needs a number or a map, got %T", coremetrics.ErrUnsupportedOperation, name, value)
		}
		for _, f := range numericFields(value) {
			s.gauge.WithLabelValues(name, f.Key).Set(f.Value)
		}
	case coremetrics.Counter:
		delta := 1.0
		if value != nil {
			f, ok := toFloat64(value)
			if !ok || f < 0 {
				return fmt.Errorf("%w: prometheus counter %q needs a non-negative number, got %v", coremetrics.ErrUnsupportedOperation, name, value)
			}
			delta = f
		}
		s.counter.WithLabelValues(name).Add(delta)
	default:
		return fmt.Errorf("%w: prometheus backend does not support %q", coremetrics.ErrUnsupportedOperation, kind)
	}
	return nil
}
