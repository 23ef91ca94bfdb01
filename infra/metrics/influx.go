package metrics

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/kilianp07/flightrecovery/core/events"
	coremetrics "github.com/kilianp07/flightrecovery/core/metrics"
	"github.com/kilianp07/flightrecovery/infra/logger"
)

// InfluxSink writes Benders progress to an InfluxDB instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	timeout  time.Duration
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		timeout:  5 * time.Second,
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.MetricsSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

func (s *InfluxSink) write(p *write.Point) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordIteration writes one point per Benders iteration. Infinite bounds are
// omitted since line protocol cannot carry them.
func (s *InfluxSink) RecordIteration(ev events.IterationEvent) error {
	p := write.NewPointWithMeasurement("benders_iteration").
		AddTag("run_id", ev.RunID).
		AddTag("component", "benders").
		AddField("iteration", ev.Iteration).
		AddField("lower_bound", round3(ev.LowerBound))
	if !math.IsInf(ev.UpperBound, 0) {
		p = p.AddField("upper_bound", round3(ev.UpperBound))
	}
	if !math.IsInf(ev.Gap, 0) {
		p = p.AddField("gap", ev.Gap)
	}
	p = p.AddField("cuts_added", ev.CutsAdded).
		AddField("columns", ev.Columns).
		AddField("reschedule_cost", round3(ev.RescheduleCost)).
		AddField("duration_ms", round3(ev.Duration.Seconds()*1000)).
		SetTime(ev.Time)
	return s.write(p)
}

// RecordScenario writes one point per scenario subproblem solve.
func (s *InfluxSink) RecordScenario(ev events.ScenarioEvent) error {
	p := write.NewPointWithMeasurement("benders_scenario").
		AddTag("run_id", ev.RunID).
		AddTag("scenario", strconv.Itoa(ev.Scenario)).
		AddTag("early_exit", strconv.FormatBool(ev.EarlyExit)).
		AddField("iteration", ev.Iteration).
		AddField("objective", round3(ev.Objective)).
		AddField("passes", ev.Passes).
		AddField("columns", ev.Columns).
		AddField("duration_ms", round3(ev.Duration.Seconds()*1000)).
		SetTime(ev.Time)
	return s.write(p)
}

// RecordRun writes the run status.
func (s *InfluxSink) RecordRun(st coremetrics.RunStatus) error {
	p := write.NewPointWithMeasurement("benders_run").
		AddTag("run_id", st.RunID).
		AddTag("status", st.Status).
		AddField("error", st.Error).
		SetTime(st.Time)
	return s.write(p)
}

// Close releases the HTTP client resources.
func (s *InfluxSink) Close() { s.client.Close() }

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
