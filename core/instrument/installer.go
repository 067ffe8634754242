package instrument

import (
	"fmt"

	"github.com/kilianp07/metromatic/core/events"
	"github.com/kilianp07/metromatic/core/metrics"
)

// Installer knows how to subscribe one metric type to a source.
type Installer interface {
	// Validate checks spec before anything is subscribed.
	Validate(spec metrics.MetricSpec) error
	// Install subscribes the handlers of spec, sending samples through dispatch.
	Install(src events.Source, spec metrics.MetricSpec, dispatch metrics.SendFunc)
	// Uninstall removes every handler bound to the events of spec.
	Uninstall(src events.Source, spec metrics.MetricSpec)
}

// CorrelationID extracts the optional correlation id from the first emit
// argument. A missing or nil argument yields "".
func CorrelationID(args []any) string {
	if len(args) == 0 || args[0] == nil {
		return ""
	}
	switch id := args[0].(type) {
	case string:
		return id
	case fmt.Stringer:
		return id.String()
	default:
		return fmt.Sprint(id)
	}
}

func requireFields(spec metrics.MetricSpec, fields map[string]string) error {
	if spec.Name == "" {
		return fmt.Errorf("%w: %s metric requires a name", metrics.ErrConfig, spec.Type)
	}
	for _, key := range []string{"eventStart", "eventStop", "eventGauge"} {
		if v, ok := fields[key]; ok && v == "" {
			return fmt.Errorf("%w: %s metric %q requires %s", metrics.ErrConfig, spec.Type, spec.Name, key)
		}
	}
	return nil
}
