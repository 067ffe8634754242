package metrics

import (
	"errors"
	"fmt"

	"github.com/kilianp07/metromatic/core/factory"
)

var backendRegistry = factory.NewRegistry[Backend]()

func init() {
	_ = RegisterBackend("nop", func(map[string]any) (Backend, error) {
		return NopBackend{}, nil
	})
	_ = RegisterBackend("custom", newCustomBackend)
}

// RegisterBackend adds a backend factory identified by its type tag.
func RegisterBackend(name string, f factory.Factory[Backend]) error {
	return backendRegistry.Register(name, f)
}

// BackendTypes lists the registered backend type tags.
func BackendTypes() []string { return backendRegistry.Types() }

// HasBackend reports whether a backend type is registered.
func HasBackend(name string) bool { return backendRegistry.Has(name) }

// Custom returns the configuration of a custom backend wrapping b.
func Custom(b Backend) factory.ModuleConfig {
	return factory.ModuleConfig{Type: "custom", Conf: map[string]any{"send": b}}
}

// NewBackend builds a single backend. Every failure wraps ErrConfig.
func NewBackend(cfg factory.ModuleConfig) (Backend, error) {
	b, err := backendRegistry.Create(cfg)
	if err != nil {
		if errors.Is(err, ErrConfig) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: backend %q: %w", ErrConfig, cfg.Type, err)
	}
	if b == nil {
		return nil, fmt.Errorf("%w: backend %q: factory returned nil", ErrConfig, cfg.Type)
	}
	return b, nil
}

// NewBackends builds the backends of opts in order, appending the legacy
// statsd section last. An empty result is a configuration error.
func NewBackends(opts Options) ([]Backend, error) {
	cfgs := append([]factory.ModuleConfig(nil), opts.Backends...)
	if opts.StatsD != nil {
		cfgs = append(cfgs, factory.ModuleConfig{Type: "statsd", Conf: map[string]any{
			"host": opts.StatsD.Host,
			"port": opts.StatsD.Port,
		}})
	}
	if len(cfgs) == 0 {
		return nil, fmt.Errorf("%w: at least one backend is required", ErrConfig)
	}
	backends := make([]Backend, 0, len(cfgs))
	for i, c := range cfgs {
		b, err := NewBackend(c)
		if err != nil {
			return nil, fmt.Errorf("backends[%d]: %w", i, err)
		}
		backends = append(backends, b)
	}
	return backends, nil
}

func newCustomBackend(conf map[string]any) (Backend, error) {
	switch s := conf["send"].(type) {
	case Backend:
		return s, nil
	case func(Kind, string, any) error:
		return SendFunc(s), nil
	default:
		return nil, fmt.Errorf("%w: custom backend must expose send(kind, name, value)", ErrConfig)
	}
}
