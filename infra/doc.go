// Package infra contains technical adapters such as the MQTT event bridge
// and the metric backends. These packages should depend only on the
// interfaces defined in the core packages.
package infra
