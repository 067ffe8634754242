package metrics_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/metromatic/core/factory"
	metrics "github.com/kilianp07/metromatic/core/metrics"
)

type recordBackend struct {
	calls []string
}

func (r *recordBackend) Send(kind metrics.Kind, name string, _ any) error {
	r.calls = append(r.calls, kind.String()+":"+name)
	return nil
}

func TestNewBackends_Empty(t *testing.T) {
	_, err := metrics.NewBackends(metrics.Options{})
	assert.ErrorIs(t, err, metrics.ErrConfig)
}

func TestNewBackends_Custom(t *testing.T) {
	rec := &recordBackend{}
	bs, err := metrics.NewBackends(metrics.Options{Backends: []factory.ModuleConfig{metrics.Custom(rec)}})
	require.NoError(t, err)
	require.Len(t, bs, 1)
	assert.Same(t, rec, bs[0])
}

func TestNewBackends_CustomFunc(t *testing.T) {
	called := false
	fn := func(metrics.Kind, string, any) error { called = true; return nil }
	bs, err := metrics.NewBackends(metrics.Options{Backends: []factory.ModuleConfig{
		{Type: "custom", Conf: map[string]any{"send": fn}},
	}})
	require.NoError(t, err)
	require.NoError(t, bs[0].Send(metrics.Gauge, "g", nil))
	assert.True(t, called)
}

func TestNewBackends_CustomMissingSend(t *testing.T) {
	for _, conf := range []map[string]any{nil, {"send": "nope"}} {
		_, err := metrics.NewBackends(metrics.Options{Backends: []factory.ModuleConfig{{Type: "custom", Conf: conf}}})
		if !errors.Is(err, metrics.ErrConfig) {
			t.Fatalf("expected ErrConfig for %v, got %v", conf, err)
		}
	}
}

func TestNewBackends_UnknownType(t *testing.T) {
	_, err := metrics.NewBackends(metrics.Options{Backends: []factory.ModuleConfig{{Type: "nop"}, {Type: "missing"}}})
	assert.ErrorIs(t, err, metrics.ErrConfig)
	assert.ErrorIs(t, err, factory.ErrUnknownType)
}

func TestBackendTypes_Builtins(t *testing.T) {
	types := metrics.BackendTypes()
	assert.Contains(t, types, "custom")
	assert.Contains(t, types, "nop")
}
