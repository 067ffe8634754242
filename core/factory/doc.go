// Package factory provides a small generic registry used to instantiate modules
// from configuration. Modules are defined by a type tag and a map of raw
// settings. Factories decode the settings into typed structs and return the
// concrete implementation.
//
// Example usage:
//
//	reg := factory.NewRegistry[metrics.Backend]()
//	reg.Register("stdout", func(conf map[string]any) (metrics.Backend, error) {
//	    var c struct{ Prefix string `json:"prefix"` }
//	    if err := factory.Decode(conf, &c); err != nil {
//	        return nil, err
//	    }
//	    return newStdoutBackend(c.Prefix), nil
//	})
//	b, err := reg.Create(factory.ModuleConfig{Type: "stdout", Conf: map[string]any{"prefix": "app"}})
package factory
