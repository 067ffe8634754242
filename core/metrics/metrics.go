package metrics

// Kind identifies the type of a metric sample.
type Kind string

const (
	// Timing samples carry a time.Duration measured between two events.
	Timing Kind = "timing"
	// Gauge samples carry the payload of a single event.
	Gauge Kind = "gauge"
	// Counter samples carry an integer delta.
	Counter Kind = "counter"
	// Set samples carry a value counted once per flush interval.
	Set Kind = "set"
)

func (k Kind) String() string { return string(k) }

// Backend is a destination for metric samples.
type Backend interface {
	Send(kind Kind, name string, value any) error
}

// SendFunc adapts a plain function to the Backend interface.
type SendFunc func(kind Kind, name string, value any) error

// Send calls f.
func (f SendFunc) Send(kind Kind, name string, value any) error { return f(kind, name, value) }

// NopBackend accepts and discards every sample.
type NopBackend struct{}

func (NopBackend) Send(Kind, string, any) error { return nil }
