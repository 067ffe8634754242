package eventbus

import (
	"errors"
	"testing"
)

func TestEmitterOrder(t *testing.T) {
	bus := New()
	var got []int
	bus.On("e", func(...any) error { got = append(got, 1); return nil })
	bus.On("e", func(...any) error { got = append(got, 2); return nil })
	if err := bus.Emit("e"); err != nil {
		t.Fatalf("emit: %v", err)
	}
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("expected [1 2] got %v", got)
	}
}

func TestEmitterArgs(t *testing.T) {
	bus := New()
	var got []any
	bus.On("e", func(args ...any) error { got = args; return nil })
	if err := bus.Emit("e", "id", 3); err != nil {
		t.Fatalf("emit: %v", err)
	}
	if len(got) != 2 || got[0] != "id" || got[1] != 3 {
		t.Fatalf("unexpected args %v", got)
	}
}

func TestEmitterStopsOnError(t *testing.T) {
	bus := New()
	boom := errors.New("boom")
	called := false
	bus.On("e", func(...any) error { return boom })
	bus.On("e", func(...any) error { called = true; return nil })
	if err := bus.Emit("e"); !errors.Is(err, boom) {
		t.Fatalf("expected boom got %v", err)
	}
	if called {
		t.Fatalf("second handler should not run")
	}
}

func TestEmitterRemoveAllListeners(t *testing.T) {
	bus := New()
	bus.On("a", func(...any) error { return nil })
	bus.On("a", func(...any) error { return nil })
	bus.On("b", func(...any) error { return nil })
	bus.RemoveAllListeners("a")
	if n := bus.ListenerCount("a"); n != 0 {
		t.Fatalf("expected 0 listeners got %d", n)
	}
	if n := bus.ListenerCount("b"); n != 1 {
		t.Fatalf("expected 1 listener got %d", n)
	}
	if ev := bus.Events(); len(ev) != 1 || ev[0] != "b" {
		t.Fatalf("unexpected events %v", ev)
	}
}

func TestEmitterUnsubscribeDuringEmit(t *testing.T) {
	bus := New()
	calls := 0
	bus.On("e", func(...any) error {
		calls++
		bus.RemoveAllListeners("e")
		return nil
	})
	bus.On("e", func(...any) error { calls++; return nil })
	if err := bus.Emit("e"); err != nil {
		t.Fatalf("emit: %v", err)
	}
	if calls != 2 {
		t.Fatalf("snapshot should still deliver to both handlers, got %d", calls)
	}
	if err := bus.Emit("e"); err != nil {
		t.Fatalf("emit: %v", err)
	}
	if calls != 2 {
		t.Fatalf("handlers should be gone, got %d calls", calls)
	}
}

func TestEmitterNoListeners(t *testing.T) {
	var bus Emitter
	if err := bus.Emit("nothing"); err != nil {
		t.Fatalf("emit: %v", err)
	}
	bus.On("x", nil)
	if bus.ListenerCount("x") != 0 {
		t.Fatalf("nil handler should be ignored")
	}
}
