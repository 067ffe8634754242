// Package instrument attaches metric handlers to an events.Source and detaches
// them again.
//
// An Instrumenter keeps at most one Session per source. Instrument builds the
// session's backends, validates every metric spec, and only then subscribes
// the handlers, so a failing call leaves the source untouched. Restore removes
// every handler the session installed. Sessions are keyed by the address of
// the source and dropped automatically when the source is garbage collected;
// the instrumenter never keeps a source alive.
//
// Two metric types are installed out of the box:
//
//   - timing: pairs EventStart and EventStop by correlation id and reports the
//     elapsed time.Duration.
//   - gauge: reports the payload of every EventGauge occurrence.
//
// Additional types can be added with WithInstaller.
package instrument
