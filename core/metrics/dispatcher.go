package metrics

import "fmt"

// Dispatcher fans samples out to a fixed list of backends.
type Dispatcher struct {
	backends []Backend
}

// NewDispatcher creates a Dispatcher delivering to backends in the given order.
func NewDispatcher(backends ...Backend) *Dispatcher {
	return &Dispatcher{backends: backends}
}

// Send forwards the sample to every backend in registration order. The first
// failing backend aborts delivery; later backends do not see the sample.
func (d *Dispatcher) Send(kind Kind, name string, value any) error {
	for i, b := range d.backends {
		if err := b.Send(kind, name, value); err != nil {
			return fmt.Errorf("backend %d: %w", i, err)
		}
	}
	return nil
}

// Backends returns a copy of the backend list.
func (d *Dispatcher) Backends() []Backend {
	return append([]Backend(nil), d.backends...)
}
