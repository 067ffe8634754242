package metrics

import (
	"fmt"

	"github.com/kilianp07/metromatic/core/factory"
	coremetrics "github.com/kilianp07/metromatic/core/metrics"
	"github.com/kilianp07/metromatic/infra/logger"
)

// LogSink writes every sample as a structured debug log line. Useful while
// wiring events, before a real backend is configured.
type LogSink struct {
	log logger.Logger
}

// NewLogBackend decodes conf and creates a LogSink.
func NewLogBackend(conf map[string]any) (coremetrics.Backend, error) {
	var c struct {
		Component string `json:"component"`
	}
	if err := factory.Decode(conf, &c); err != nil {
		return nil, fmt.Errorf("%w: log: %v", coremetrics.ErrConfig, err)
	}
	if c.Component == "" {
		c.Component = "metrics"
	}
	return NewLogSink(logger.New(c.Component)), nil
}

// NewLogSink creates a LogSink writing to l.
func NewLogSink(l logger.Logger) *LogSink { return &LogSink{log: l} }

func (s *LogSink) Send(kind coremetrics.Kind, name string, value any) error {
	s.log.Debugw("metric", map[string]any{
		"kind":  kind.String(),
		"name":  name,
		"value": value,
	})
	return nil
}
