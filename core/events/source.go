package events

// Handler receives the arguments passed to Emit.
type Handler func(args ...any) error

// Source is the capability set an instrumented object must provide.
type Source interface {
	// On subscribes h to event. Handlers for the same event fire in
	// subscription order.
	On(event string, h Handler)
	// RemoveAllListeners drops every handler bound to event.
	RemoveAllListeners(event string)
	// Emit invokes the handlers bound to event and returns the first error.
	Emit(event string, args ...any) error
}
