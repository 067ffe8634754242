package metrics_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	metrics "github.com/kilianp07/metromatic/core/metrics"
)

type call struct {
	backend int
	kind    metrics.Kind
	name    string
	value   any
}

func TestDispatcher_OrderAndArgs(t *testing.T) {
	var calls []call
	mk := func(i int) metrics.Backend {
		return metrics.SendFunc(func(k metrics.Kind, n string, v any) error {
			calls = append(calls, call{i, k, n, v})
			return nil
		})
	}
	d := metrics.NewDispatcher(mk(0), mk(1), mk(2))
	require.NoError(t, d.Send(metrics.Timing, "t1", 500*time.Millisecond))
	require.Len(t, calls, 3)
	for i, c := range calls {
		assert.Equal(t, call{i, metrics.Timing, "t1", 500 * time.Millisecond}, c)
	}
}

func TestDispatcher_FailFast(t *testing.T) {
	boom := errors.New("boom")
	first, third := &recordBackend{}, &recordBackend{}
	failing := metrics.SendFunc(func(metrics.Kind, string, any) error { return boom })
	d := metrics.NewDispatcher(first, failing, third)

	err := d.Send(metrics.Gauge, "g", map[string]any{})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"gauge:g"}, first.calls)
	assert.Empty(t, third.calls, "backends after the failure must not be invoked")
}

func TestDispatcher_BackendsCopy(t *testing.T) {
	d := metrics.NewDispatcher(metrics.NopBackend{})
	bs := d.Backends()
	bs[0] = nil
	assert.NotNil(t, d.Backends()[0])
}

type mockBackend struct {
	mock.Mock
}

func (m *mockBackend) Send(kind metrics.Kind, name string, value any) error {
	args := m.Called(kind, name, value)
	return args.Error(0)
}

func TestDispatcher_StopsAtFirstError(t *testing.T) {
	boom := errors.New("boom")
	a, b := &mockBackend{}, &mockBackend{}
	a.On("Send", metrics.Counter, "c", 1).Return(boom)

	err := metrics.NewDispatcher(a, b).Send(metrics.Counter, "c", 1)
	assert.ErrorIs(t, err, boom)
	assert.ErrorContains(t, err, "backend 0")
	a.AssertExpectations(t)
	b.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}
