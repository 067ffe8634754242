package instrument

import (
	"fmt"
	"reflect"
	"runtime"
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"

	"github.com/kilianp07/metromatic/core/events"
	"github.com/kilianp07/metromatic/core/logger"
	"github.com/kilianp07/metromatic/core/metrics"
)

// Session is the live instrumentation state of one source.
type Session struct {
	ID       string
	Backends []metrics.Backend
	Metrics  []metrics.MetricSpec

	dispatcher *metrics.Dispatcher
	key        uintptr
	cleanup    runtime.Cleanup
}

// Send dispatches an unscheduled sample to every backend of the session.
func (s *Session) Send(kind metrics.Kind, name string, value any) error {
	return s.dispatcher.Send(kind, name, value)
}

// Instrumenter tracks which sources are instrumented and what was installed
// on each.
type Instrumenter struct {
	mu         sync.Mutex
	sessions   map[uintptr]*Session
	installers map[string]Installer
	clock      clock.Clock
	log        logger.Logger
}

// Option configures an Instrumenter.
type Option func(*Instrumenter)

// WithClock sets the clock used by the timing installer.
func WithClock(c clock.Clock) Option {
	return func(i *Instrumenter) { i.clock = c }
}

// WithLogger sets the logger used for session lifecycle messages.
func WithLogger(l logger.Logger) Option {
	return func(i *Instrumenter) { i.log = l }
}

// WithInstaller registers in for metric specs of the given type, replacing
// any built-in installer of that type.
func WithInstaller(metricType string, in Installer) Option {
	return func(i *Instrumenter) { i.installers[metricType] = in }
}

// New creates an Instrumenter with the timing and gauge installers.
func New(opts ...Option) *Instrumenter {
	i := &Instrumenter{
		sessions:   make(map[uintptr]*Session),
		installers: make(map[string]Installer),
		clock:      clock.New(),
		log:        logger.NopLogger{},
	}
	for _, o := range opts {
		o(i)
	}
	if _, ok := i.installers[string(metrics.Timing)]; !ok {
		i.installers[string(metrics.Timing)] = &TimingInstaller{Clock: i.clock}
	}
	if _, ok := i.installers[string(metrics.Gauge)]; !ok {
		i.installers[string(metrics.Gauge)] = GaugeInstaller{}
	}
	return i
}

// Instrument builds the backends of opts and installs every metric on src.
// Either everything is installed or nothing is.
func (i *Instrumenter) Instrument(src events.Source, opts metrics.Options) (*Session, error) {
	key, err := identity(src)
	if err != nil {
		return nil, err
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	if _, ok := i.sessions[key]; ok {
		return nil, fmt.Errorf("%w: %T", metrics.ErrAlreadyInstrumented, src)
	}

	backends, err := metrics.NewBackends(opts)
	if err != nil {
		return nil, err
	}
	installers := make([]Installer, len(opts.Metrics))
	for n, spec := range opts.Metrics {
		in, err := i.installerFor(spec)
		if err != nil {
			return nil, fmt.Errorf("metrics[%d]: %w", n, err)
		}
		installers[n] = in
	}

	s := &Session{
		ID:         uuid.NewString(),
		Backends:   append([]metrics.Backend(nil), backends...),
		Metrics:    append([]metrics.MetricSpec(nil), opts.Metrics...),
		dispatcher: metrics.NewDispatcher(backends...),
		key:        key,
	}
	for n, spec := range s.Metrics {
		installers[n].Install(src, spec, s.dispatcher.Send)
	}
	s.cleanup = watch(src, i.forget, s)
	i.sessions[key] = s
	i.log.Infof("instrumented %T: session %s, %d backends, %d metrics", src, s.ID, len(backends), len(s.Metrics))
	return s, nil
}

// Validate checks that spec names a known metric type and carries the
// fields its installer needs.
func (i *Instrumenter) Validate(spec metrics.MetricSpec) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	_, err := i.installerFor(spec)
	return err
}

func (i *Instrumenter) installerFor(spec metrics.MetricSpec) (Installer, error) {
	in, ok := i.installers[spec.Type]
	if !ok {
		return nil, fmt.Errorf("%w %q", metrics.ErrUnsupportedMetricType, spec.Type)
	}
	if err := in.Validate(spec); err != nil {
		return nil, err
	}
	return in, nil
}

// Restore removes every handler installed on src and forgets its session.
// Unmanaged sources are ignored. Backends are left as they are.
func (i *Instrumenter) Restore(src events.Source) {
	key, err := identity(src)
	if err != nil {
		return
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	s, ok := i.sessions[key]
	if !ok {
		return
	}
	for _, spec := range s.Metrics {
		if in, ok := i.installers[spec.Type]; ok {
			in.Uninstall(src, spec)
		}
	}
	s.cleanup.Stop()
	delete(i.sessions, key)
	i.log.Infof("restored %T: session %s", src, s.ID)
}

// Session returns the live session of src, if any.
func (i *Instrumenter) Session(src events.Source) (*Session, bool) {
	key, err := identity(src)
	if err != nil {
		return nil, false
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	s, ok := i.sessions[key]
	return s, ok
}

// Send dispatches an unscheduled sample through the session of src.
func (i *Instrumenter) Send(src events.Source, kind metrics.Kind, name string, value any) error {
	s, ok := i.Session(src)
	if !ok {
		return fmt.Errorf("%w: %T", metrics.ErrNotInstrumented, src)
	}
	return s.Send(kind, name, value)
}

// Len returns the number of live sessions.
func (i *Instrumenter) Len() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.sessions)
}

// forget drops a session whose source has been collected. Its handlers went
// away with the source.
func (i *Instrumenter) forget(s *Session) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if cur, ok := i.sessions[s.key]; ok && cur == s {
		delete(i.sessions, s.key)
		i.log.Debugf("source of session %s collected", s.ID)
	}
}

// identity returns the address used to key src. Only non-nil pointers to
// sized values have a stable, distinct address.
func identity(src events.Source) (uintptr, error) {
	if src == nil {
		return 0, fmt.Errorf("%w: nil source", metrics.ErrCapability)
	}
	v := reflect.ValueOf(src)
	if v.Kind() != reflect.Pointer || v.IsNil() {
		return 0, fmt.Errorf("%w: %T must be a non-nil pointer", metrics.ErrCapability, src)
	}
	if v.Type().Elem().Size() == 0 {
		return 0, fmt.Errorf("%w: %T points to a zero-size value", metrics.ErrCapability, src)
	}
	return v.Pointer(), nil
}

// watch arranges for forget(s) to run once src is unreachable. The cleanup
// holds s, never src.
func watch(src events.Source, forget func(*Session), s *Session) runtime.Cleanup {
	ptr := (*byte)(reflect.ValueOf(src).UnsafePointer())
	return runtime.AddCleanup(ptr, forget, s)
}

var std = New()

// Default returns the package-level Instrumenter used by Instrument and Restore.
func Default() *Instrumenter { return std }

// Instrument instruments src on the default Instrumenter.
func Instrument(src events.Source, opts metrics.Options) (*Session, error) {
	return std.Instrument(src, opts)
}

// Restore restores src on the default Instrumenter.
func Restore(src events.Source) { std.Restore(src) }
