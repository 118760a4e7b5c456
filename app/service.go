// Package app wires the configuration, the store, the AutoPlan engine and
// the HTTP API into a runnable service.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	apiautoplan "github.com/planwerk/planwerk/api/autoplan"
	apicapacity "github.com/planwerk/planwerk/api/capacity"
	apiorders "github.com/planwerk/planwerk/api/orders"
	apiplanning "github.com/planwerk/planwerk/api/planning"
	apisettings "github.com/planwerk/planwerk/api/settings"
	"github.com/planwerk/planwerk/config"
	engine "github.com/planwerk/planwerk/core/autoplan"
	coremetrics "github.com/planwerk/planwerk/core/metrics"
	"github.com/planwerk/planwerk/core/model"
	"github.com/planwerk/planwerk/infra/logger"
	"github.com/planwerk/planwerk/infra/metrics"
	"github.com/planwerk/planwerk/infra/store/memory"
	"github.com/planwerk/planwerk/infra/store/sqlite"
	"github.com/planwerk/planwerk/internal/eventbus"
)

// Store is the persistence surface the service needs: the engine
// contracts plus the CRUD operations of the HTTP API.
type Store interface {
	engine.OrderSource
	engine.PlanningStore
	apisettings.Store
	apiplanning.EventStore
	apiorders.Store

	ListRuns(ctx context.Context) ([]model.PlanRun, error)
	ListIssues(ctx context.Context, runID string) ([]model.PlanIssue, error)
	Close() error
}

// Service orchestrates the AutoPlan engine and the HTTP API.
type Service struct {
	Planner *engine.Planner
	Store   Store

	cfg *config.Config
	bus *eventbus.Bus[engine.Event]
	log logger.Logger
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logger.SetLevel(cfg.Logging.Level)
	logg := logger.New("service")

	var store Store
	switch cfg.Store.Backend {
	case "memory":
		store = memory.New()
	case "sqlite":
		s, err := sqlite.Open(cfg.Store.Path)
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
		store = s
	default:
		return nil, fmt.Errorf("unknown store backend %s", cfg.Store.Backend)
	}

	var sinks []coremetrics.Sink
	if cfg.Metrics.PrometheusEnabled {
		sink, err := metrics.NewPromSink()
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sinks = append(sinks, sink)
	}
	if cfg.Metrics.InfluxEnabled {
		sinks = append(sinks, metrics.NewInfluxSinkWithFallback(cfg.Metrics))
	}
	var sink coremetrics.Sink
	if len(sinks) == 1 {
		sink = sinks[0]
	} else if len(sinks) > 1 {
		sink = metrics.NewMultiSink(sinks...)
	}

	if cfg.Planning.Global != nil {
		if err := store.SetGlobalSettings(context.Background(), *cfg.Planning.Global); err != nil {
			return nil, fmt.Errorf("seed global settings: %w", err)
		}
	}
	if cfg.Planning.AutoPlan != nil {
		if err := store.SetAutoPlanSettings(context.Background(), *cfg.Planning.AutoPlan); err != nil {
			return nil, fmt.Errorf("seed autoplan settings: %w", err)
		}
	}

	bus := eventbus.New[engine.Event]()
	planner, err := engine.NewPlanner(store, store, store, nil, logger.New("autoplan"), sink, bus)
	if err != nil {
		return nil, fmt.Errorf("planner: %w", err)
	}

	return &Service{Planner: planner, Store: store, cfg: cfg, bus: bus, log: logg}, nil
}

// Handler builds the HTTP routing table.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/api/autoplan/run", apiautoplan.NewRunHandler(s.Planner))
	mux.Handle("/api/autoplan/runs", apiautoplan.NewRunsHandler(s.Store))
	mux.Handle("/api/capacity", apicapacity.NewHandler(s.Store))
	mux.Handle("/api/planning/events", apiplanning.NewEventsHandler(s.Store))
	mux.Handle("/api/planning/events/{id}", apiplanning.NewEventHandler(s.Store))
	mux.Handle("/api/orders", apiorders.NewHandler(s.Store))
	mux.Handle("/api/orders/{id}", apiorders.NewOrderHandler(s.Store))
	mux.Handle("/api/settings/employees", apisettings.NewEmployeesHandler(s.Store))
	mux.Handle("/api/settings/blockers", apisettings.NewBlockersHandler(s.Store))
	mux.Handle("/api/settings/items", apisettings.NewItemsHandler(s.Store))
	mux.Handle("/api/settings/global", apisettings.NewGlobalHandler(s.Store))
	mux.Handle("/api/settings/autoplan", apisettings.NewAutoPlanHandler(s.Store))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

// Run starts the HTTP server and blocks until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	go s.logEvents(ctx)
	if s.cfg.Metrics.PrometheusEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.cfg.Metrics.PrometheusPort); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}

	srv := &http.Server{
		Addr:              s.cfg.HTTP.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()
	s.log.Infof("listening on %s (store=%s)", s.cfg.HTTP.Addr, s.cfg.Store.Backend)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// logEvents mirrors engine progress events into the log until the
// context is cancelled.
func (s *Service) logEvents(ctx context.Context) {
	sub := s.bus.Subscribe()
	defer s.bus.Unsubscribe(sub)
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-sub:
			if !ok {
				return
			}
			switch ev := e.(type) {
			case engine.RunCompleted:
				s.log.Infof("run %s completed: %d events, %d skipped, %d issues",
					ev.RunID, ev.CreatedEvents, ev.SkippedOrders, ev.IssueCount)
			case engine.IssueRaised:
				s.log.Warnf("issue %s (%s) on order %s", ev.Issue.ID, ev.Issue.Type, ev.Issue.OrderID)
			default:
				s.log.Debugw("engine event", map[string]any{"event": fmt.Sprintf("%T", e)})
			}
		}
	}
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	s.bus.Close()
	return s.Store.Close()
}
