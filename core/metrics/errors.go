package metrics

import "errors"

var (
	// ErrConfig reports a malformed or incomplete backend or metric configuration.
	ErrConfig = errors.New("invalid configuration")
	// ErrCapability reports a source lacking the capabilities required for instrumentation.
	ErrCapability = errors.New("source lacks required capability")
	// ErrAlreadyInstrumented reports a second instrumentation attempt on a live source.
	ErrAlreadyInstrumented = errors.New("source already instrumented")
	// ErrUnsupportedMetricType reports a metric spec whose type has no installer.
	ErrUnsupportedMetricType = errors.New("unsupported metric type")
	// ErrUnsupportedOperation reports a backend asked to handle a sample it cannot represent.
	ErrUnsupportedOperation = errors.New("unsupported operation")
	// ErrNotInstrumented reports a send through a source with no live session.
	ErrNotInstrumented = errors.New("source not instrumented")
)
