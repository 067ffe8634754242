package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/kilianp07/metromatic/config"
	"github.com/kilianp07/metromatic/core/events"
	"github.com/kilianp07/metromatic/core/instrument"
	coremon "github.com/kilianp07/metromatic/core/monitoring"
	"github.com/kilianp07/metromatic/infra/logger"
	"github.com/kilianp07/metromatic/infra/metrics"
	"github.com/kilianp07/metromatic/infra/monitoring"
	"github.com/kilianp07/metromatic/infra/mqtt"
	"github.com/kilianp07/metromatic/internal/eventbus"
)

// feeder pushes external messages into an event source.
type feeder interface {
	Start() error
	Stop()
}

var newFeeder = func(cfg mqtt.Config, src events.Source) (feeder, error) {
	return mqtt.NewBridge(cfg, src)
}

var startPromServer = metrics.StartPromServer

// Service instruments an in-process emitter fed by MQTT and exposes the
// configured backends.
type Service struct {
	Source       *eventbus.Emitter
	Instrumenter *instrument.Instrumenter
	Session      *instrument.Session

	feeder   feeder
	log      logger.Logger
	promAddr string
}

// New creates a Service from the configuration. Backends are built and
// metrics installed immediately; nothing is connected until Run.
func New(cfg *config.Config) (*Service, error) {
	if err := logger.SetLevel(cfg.Logging.Level); err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	mon, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, fmt.Errorf("sentry: %w", err)
	}
	coremon.Init(mon)

	logg := logger.New("service")
	src := eventbus.New()
	in := instrument.New(instrument.WithLogger(logger.New("instrument")))
	sess, err := in.Instrument(src, cfg.Instrument)
	if err != nil {
		return nil, fmt.Errorf("instrument: %w", err)
	}
	f, err := newFeeder(cfg.MQTT, src)
	if err != nil {
		in.Restore(src)
		closeBackends(sess)
		return nil, fmt.Errorf("mqtt bridge: %w", err)
	}
	return &Service{
		Source:       src,
		Instrumenter: in,
		Session:      sess,
		feeder:       f,
		log:          logg,
		promAddr:     cfg.Prometheus.Addr,
	}, nil
}

// Run starts the feeder and the Prometheus endpoint and blocks until the
// context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	if err := s.feeder.Start(); err != nil {
		return err
	}
	if s.promAddr != "" {
		go func() {
			defer coremon.Recover()
			if err := startPromServer(ctx, s.promAddr); err != nil {
				s.log.Errorf("prom server: %v", err)
				coremon.CaptureException(err, map[string]string{"module": "prometheus"})
			}
		}()
	}
	s.log.Infof("service running: %d backends, %d metrics", len(s.Session.Backends), len(s.Session.Metrics))
	<-ctx.Done()
	return nil
}

// Close stops the feeder, removes the installed metrics and closes the
// backends that hold resources.
func (s *Service) Close() error {
	s.feeder.Stop()
	s.Instrumenter.Restore(s.Source)
	err := closeBackends(s.Session)
	coremon.Flush(2 * time.Second)
	return err
}

func closeBackends(sess *instrument.Session) error {
	var errs []error
	for _, b := range sess.Backends {
		if c, ok := b.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
