package instrument

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/kilianp07/metromatic/core/events"
	"github.com/kilianp07/metromatic/core/metrics"
)

// TimingInstaller measures the time between a start and a stop event sharing
// a correlation id.
type TimingInstaller struct {
	Clock clock.Clock
}

func (t *TimingInstaller) Validate(spec metrics.MetricSpec) error {
	return requireFields(spec, map[string]string{
		"eventStart": spec.EventStart,
		"eventStop":  spec.EventStop,
	})
}

// Install subscribes both events. Each installed metric owns its own
// correlation table; it is released together with the handlers.
func (t *TimingInstaller) Install(src events.Source, spec metrics.MetricSpec, dispatch metrics.SendFunc) {
	clk := t.Clock
	if clk == nil {
		clk = clock.New()
	}
	tbl := &correlationTable{starts: make(map[string]time.Time)}

	src.On(spec.EventStart, func(args ...any) error {
		tbl.start(CorrelationID(args), clk.Now())
		return nil
	})
	src.On(spec.EventStop, func(args ...any) error {
		started, ok := tbl.stop(CorrelationID(args))
		if !ok {
			// Unmatched stop: no start seen, or already stopped.
			return nil
		}
		return dispatch(metrics.Timing, spec.Name, clk.Since(started))
	})
}

func (t *TimingInstaller) Uninstall(src events.Source, spec metrics.MetricSpec) {
	src.RemoveAllListeners(spec.EventStart)
	src.RemoveAllListeners(spec.EventStop)
}

// correlationTable maps a correlation id to the time its start was seen.
// Presence means the start was seen and the stop was not.
type correlationTable struct {
	mu     sync.Mutex
	starts map[string]time.Time
}

func (c *correlationTable) start(id string, at time.Time) {
	c.mu.Lock()
	c.starts[id] = at
	c.mu.Unlock()
}

func (c *correlationTable) stop(id string) (time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	at, ok := c.starts[id]
	if ok {
		delete(c.starts, id)
	}
	return at, ok
}
