// Package infra contains technical adapters such as the MQTT client, the Sentry monitor
// and the metrics sinks. These packages should depend only on the
// interfaces defined in the core packages.
package infra
