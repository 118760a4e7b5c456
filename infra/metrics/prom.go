package metrics

import (
	coremetrics "github.com/planwerk/planwerk/core/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// PromSink records planning activity as Prometheus metrics.
type PromSink struct {
	runs     prometheus.Counter
	duration prometheus.Histogram
	events   *prometheus.CounterVec
	issues   *prometheus.CounterVec
	skipped  prometheus.Counter
}

// NewPromSink registers planning metrics on the default registerer. The
// Prometheus endpoint itself is served separately (see StartPromServer).
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer. A
// nil registerer defaults to the global one.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	runs := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "autoplan_runs_total",
		Help: "Number of completed AutoPlan runs",
	})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "autoplan_run_duration_seconds",
		Help:    "Wall-clock duration of AutoPlan runs",
		Buckets: prometheus.DefBuckets,
	})
	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "autoplan_events_created_total",
		Help: "Plan events created by the AutoPlan engine",
	}, []string{"kind"})
	issues := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "autoplan_issues_total",
		Help: "Planning issues recorded by the AutoPlan engine",
	}, []string{"type"})
	skipped := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "autoplan_skipped_orders_total",
		Help: "Orders skipped because of planning errors",
	})

	if err := reg.Register(runs); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			runs = are.ExistingCollector.(prometheus.Counter)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(duration); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			duration = are.ExistingCollector.(prometheus.Histogram)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(events); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			events = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(issues); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			issues = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(skipped); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			skipped = are.ExistingCollector.(prometheus.Counter)
		} else {
			return nil, err
		}
	}
	return &PromSink{runs: runs, duration: duration, events: events, issues: issues, skipped: skipped}, nil
}

// RecordRun increments the run counters and observes the duration.
func (s *PromSink) RecordRun(rec coremetrics.RunRecord) error {
	s.runs.Inc()
	s.duration.Observe(rec.Duration.Seconds())
	s.skipped.Add(float64(rec.SkippedOrders))
	for typ, n := range rec.IssuesByType {
		s.issues.WithLabelValues(string(typ)).Add(float64(n))
	}
	return nil
}

// RecordEvent counts one created plan event by kind.
func (s *PromSink) RecordEvent(rec coremetrics.EventRecord) error {
	s.events.WithLabelValues(string(rec.Kind)).Inc()
	return nil
}
