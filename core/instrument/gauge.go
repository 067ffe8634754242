package instrument

import (
	"reflect"

	"github.com/kilianp07/metromatic/core/events"
	"github.com/kilianp07/metromatic/core/metrics"
)

// GaugeInstaller reports the payload of every occurrence of one event.
type GaugeInstaller struct{}

func (GaugeInstaller) Validate(spec metrics.MetricSpec) error {
	return requireFields(spec, map[string]string{"eventGauge": spec.EventGauge})
}

// Install subscribes the gauge event. A missing or nil payload, typed nils
// included, is reported as an empty map.
func (GaugeInstaller) Install(src events.Source, spec metrics.MetricSpec, dispatch metrics.SendFunc) {
	src.On(spec.EventGauge, func(args ...any) error {
		var payload any = map[string]any{}
		if len(args) > 0 && !isNil(args[0]) {
			payload = args[0]
		}
		return dispatch(metrics.Gauge, spec.Name, payload)
	})
}

func (GaugeInstaller) Uninstall(src events.Source, spec metrics.MetricSpec) {
	src.RemoveAllListeners(spec.EventGauge)
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map, reflect.Pointer, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
