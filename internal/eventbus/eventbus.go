package eventbus

import (
	"sort"
	"sync"

	"github.com/kilianp07/metromatic/core/events"
)

// Emitter is a synchronous, name-keyed implementation of events.Source.
// Handlers run on the goroutine calling Emit, in subscription order.
type Emitter struct {
	mu        sync.RWMutex
	listeners map[string][]events.Handler
}

var _ events.Source = (*Emitter)(nil)

// New creates an empty Emitter.
func New() *Emitter {
	return &Emitter{listeners: make(map[string][]events.Handler)}
}

// On appends h to the handlers of event. A nil handler is ignored.
func (e *Emitter) On(event string, h events.Handler) {
	if h == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.listeners == nil {
		e.listeners = make(map[string][]events.Handler)
	}
	e.listeners[event] = append(e.listeners[event], h)
}

// RemoveAllListeners drops every handler bound to event.
func (e *Emitter) RemoveAllListeners(event string) {
	e.mu.Lock()
	delete(e.listeners, event)
	e.mu.Unlock()
}

// Emit calls the handlers bound to event and stops at the first error.
// The handler list is snapshotted first so handlers may subscribe or
// unsubscribe while being invoked.
func (e *Emitter) Emit(event string, args ...any) error {
	e.mu.RLock()
	hs := append([]events.Handler(nil), e.listeners[event]...)
	e.mu.RUnlock()
	for _, h := range hs {
		if err := h(args...); err != nil {
			return err
		}
	}
	return nil
}

// ListenerCount returns the number of handlers bound to event.
func (e *Emitter) ListenerCount(event string) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.listeners[event])
}

// Events lists the event names that currently have handlers, sorted.
func (e *Emitter) Events() []string {
	e.mu.RLock()
	names := make([]string, 0, len(e.listeners))
	for name := range e.listeners {
		names = append(names, name)
	}
	e.mu.RUnlock()
	sort.Strings(names)
	return names
}
