// Package metrics defines the metric sample vocabulary shared by the
// instrumentation engine and its backends.
//
// A Backend accepts (kind, name, value) samples. Backends are built from
// tagged factory.ModuleConfig entries through a registry; the custom and nop
// types live here, the network-backed ones (statsd, cloudwatch, prometheus,
// influx, log) register themselves from infra/metrics. A Dispatcher fans one
// sample out to every backend of a session, in order, stopping at the first
// failure.
package metrics
