package metrics

import (
	"context"
	"net/http"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/planwerk/planwerk/core/metrics"
	"github.com/planwerk/planwerk/infra/logger"
)

// InfluxSink writes planning KPIs to an InfluxDB instance using the
// official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a sink for the given InfluxDB endpoint.
func NewInfluxSink(cfg coremetrics.Config) *InfluxSink {
	client := influxdb2.NewClientWithOptions(cfg.InfluxURL, cfg.InfluxToken,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.InfluxOrg, cfg.InfluxBucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback pings the InfluxDB instance and degrades to a
// NopSink when the health check fails.
func NewInfluxSinkWithFallback(cfg coremetrics.Config) coremetrics.Sink {
	sink := NewInfluxSink(cfg)
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

// RecordRun writes one point per completed run.
func (s *InfluxSink) RecordRun(rec coremetrics.RunRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	issues := 0
	for _, n := range rec.IssuesByType {
		issues += n
	}
	p := write.NewPointWithMeasurement("autoplan_run").
		AddTag("run_id", rec.RunID).
		AddField("created_events", rec.CreatedEvents).
		AddField("skipped_orders", rec.SkippedOrders).
		AddField("issues", issues).
		AddField("duration_ms", rec.Duration.Milliseconds()).
		SetTime(rec.Start)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordEvent writes one point per created plan event.
func (s *InfluxSink) RecordEvent(rec coremetrics.EventRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("plan_event").
		AddTag("kind", string(rec.Kind)).
		AddTag("order_id", rec.OrderID).
		AddField("total_minutes", rec.TotalMinutes).
		AddField("travel_minutes", rec.TravelMinutes).
		SetTime(rec.Date.Time())
	return s.writeAPI.WritePoint(ctx, p)
}
