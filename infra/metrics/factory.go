package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/flightrecovery/core/factory"
	coremetrics "github.com/kilianp07/flightrecovery/core/metrics"
	coremqtt "github.com/kilianp07/flightrecovery/core/mqtt"
	"github.com/kilianp07/flightrecovery/infra/mqtt"
)

// mqttSinkConf is the raw configuration of the "mqtt" sink. Connection
// settings sit next to the topic prefix.
type mqttSinkConf struct {
	Topic       string `json:"topic"`
	mqtt.Config `json:",squash"`
}

// newMQTTPublisher is swapped in tests.
var newMQTTPublisher = func(cfg mqtt.Config) (coremqtt.Publisher, error) {
	return mqtt.NewPahoClient(cfg)
}

// init registers built-in metrics sinks.
func init() {
	_ = coremetrics.RegisterMetricsSink("nop", func(map[string]any) (coremetrics.MetricsSink, error) {
		return coremetrics.NopSink{}, nil
	})

	_ = coremetrics.RegisterMetricsSink("prometheus", func(map[string]any) (coremetrics.MetricsSink, error) {
		// The listen address belongs to metrics.Config; the sink only registers collectors.
		return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
	})

	_ = coremetrics.RegisterMetricsSink("influx", func(conf map[string]any) (coremetrics.MetricsSink, error) {
		var c struct {
			URL    string `json:"url"`
			Token  string `json:"token"`
			Org    string `json:"org"`
			Bucket string `json:"bucket"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		if c.URL == "" {
			return nil, fmt.Errorf("influx sink: url is required")
		}
		return NewInfluxSinkWithFallback(c.URL, c.Token, c.Org, c.Bucket), nil
	})

	_ = coremetrics.RegisterMetricsSink("mqtt", func(conf map[string]any) (coremetrics.MetricsSink, error) {
		var c mqttSinkConf
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		cli, err := newMQTTPublisher(c.Config)
		if err != nil {
			return nil, fmt.Errorf("mqtt sink: %w", err)
		}
		return NewMQTTSink(cli, c.Topic), nil
	})
}
