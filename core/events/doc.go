// Package events defines the contract the instrumentation engine expects from
// an event-emitting object.
//
// A Source delivers named events to handlers in subscription order. Handlers
// receive the raw emit arguments; by convention the first argument of a start
// or stop event is a correlation id and the first argument of a gauge event is
// its payload. Errors returned by handlers surface from Emit.
package events
