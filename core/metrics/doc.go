// Package metrics defines the sink interfaces used to observe a Benders run.
// Sinks record one entry per iteration and may optionally record scenario
// solves and run status changes. Implementations such as PromSink and
// InfluxSink live in infra/metrics and register themselves with the factory.
// NewMetricsSink returns a MultiSink automatically when several sinks are
// configured.
package metrics
