// Package autoplan implements the AutoPlan engine: a single-pass greedy
// scheduler that assigns production and montage workloads of unplanned
// orders to dated calendar slots, constrained by aggregated workforce
// capacity. The pass is best-effort; capacity shortfalls are recorded as
// soft issues instead of blocking event creation.
package autoplan

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/planwerk/planwerk/core/capacity"
	"github.com/planwerk/planwerk/core/logger"
	"github.com/planwerk/planwerk/core/metrics"
	"github.com/planwerk/planwerk/core/model"
	"github.com/planwerk/planwerk/internal/eventbus"
)

// Params is the request for one AutoPlan run. OverwriteExisting is
// accepted for API compatibility and currently ignored.
type Params struct {
	StartDate         model.Date `json:"startDate"`
	EndDate           model.Date `json:"endDate"`
	IncludeProduction bool       `json:"includeProduction"`
	IncludeMontage    bool       `json:"includeMontage"`
	OverwriteExisting bool       `json:"overwriteExisting"`
}

// Result is the outcome of one run.
type Result struct {
	Run           model.PlanRun     `json:"run"`
	Issues        []model.PlanIssue `json:"issues"`
	CreatedEvents int               `json:"createdEvents"`
	SkippedOrders int               `json:"skippedOrders"`
}

// Planner executes AutoPlan runs. Orders are processed strictly one at a
// time and every capacity query observes all events committed earlier in
// the same run; the run mutex additionally serializes concurrent in-process
// invocations so two runs cannot double-book a day.
type Planner struct {
	orders    OrderSource
	workforce Workforce
	store     PlanningStore
	assign    AssignmentStrategy
	log       logger.Logger
	sink      metrics.Sink
	bus       *eventbus.Bus[Event]

	runMu sync.Mutex
}

// NewPlanner creates a Planner. orders, workforce, store and log are
// required; assign defaults to FirstN, sink to a no-op, and bus may be nil
// when nobody listens for progress events.
func NewPlanner(orders OrderSource, workforce Workforce, store PlanningStore, assign AssignmentStrategy, log logger.Logger, sink metrics.Sink, bus *eventbus.Bus[Event]) (*Planner, error) {
	if orders == nil || workforce == nil || store == nil || log == nil {
		return nil, fmt.Errorf("autoplan: nil parameter provided to NewPlanner")
	}
	if assign == nil {
		assign = FirstN{}
	}
	if sink == nil {
		sink = metrics.NopSink{}
	}
	return &Planner{orders: orders, workforce: workforce, store: store, assign: assign, log: log, sink: sink, bus: bus}, nil
}

// Run executes one AutoPlan pass over [params.StartDate, params.EndDate].
// Order-level failures are isolated into planning_error issues; only
// collaborator failures outside order processing abort the run.
func (p *Planner) Run(ctx context.Context, params Params) (Result, error) {
	p.runMu.Lock()
	defer p.runMu.Unlock()

	start := time.Now().UTC()
	runID := "run-" + uuid.NewString()
	p.publish(RunStarted{RunID: runID, Params: params})
	p.log.Infof("autoplan run %s: %s..%s production=%v montage=%v",
		runID, params.StartDate, params.EndDate, params.IncludeProduction, params.IncludeMontage)
	if params.OverwriteExisting {
		p.log.Warnf("autoplan run %s: overwriteExisting requested but not implemented, ignoring", runID)
	}

	var issues []model.PlanIssue
	createdEvents := 0
	skippedOrders := 0

	employees, err := p.workforce.ListEmployees(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("list employees: %w", err)
	}
	active := employees[:0:0]
	for _, e := range employees {
		if e.Active {
			active = append(active, e)
		}
	}
	if len(active) == 0 {
		issues = append(issues, p.raiseIssue(model.PlanIssue{ID: newIssueID(), RunID: runID, Type: model.IssueNoEmployees}))
		p.log.Warnf("autoplan run %s: no active employees, aborting", runID)
		return p.finish(ctx, runID, start, params, createdEvents, skippedOrders, issues)
	}

	gs, err := p.workforce.GlobalSettings(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("global settings: %w", err)
	}
	aps, err := p.workforce.AutoPlanSettings(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("autoplan settings: %w", err)
	}

	orders, err := p.orders.ListOrders(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("list orders: %w", err)
	}
	candidates := orders[:0:0]
	for _, o := range orders {
		if o.NeedsPlanning(params.StartDate, params.EndDate) {
			candidates = append(candidates, o)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].DeliveryDate.Before(candidates[j].DeliveryDate)
	})
	p.log.Debugw("selected candidate orders", map[string]any{"run": runID, "count": len(candidates)})

	for _, order := range candidates {
		if err := p.planOrder(ctx, order, active, gs, aps, params, runID, &issues, &createdEvents); err != nil {
			skippedOrders++
			details, _ := json.Marshal(map[string]string{"error": err.Error()})
			issues = append(issues, p.raiseIssue(model.PlanIssue{
				ID:          newIssueID(),
				RunID:       runID,
				Type:        model.IssuePlanningError,
				OrderID:     order.ID,
				DetailsJSON: string(details),
			}))
			p.log.Errorf("autoplan run %s: order %s failed: %v", runID, order.ID, err)
		}
	}

	return p.finish(ctx, runID, start, params, createdEvents, skippedOrders, issues)
}

// planOrder places the production and montage workloads of one order. An
// error from either placement stops the rest of the order.
func (p *Planner) planOrder(ctx context.Context, order model.Order, active []model.Employee, gs model.GlobalSettings, aps model.AutoPlanSettings, params Params, runID string, issues *[]model.PlanIssue, created *int) error {
	if params.IncludeProduction && order.TotalProdMin > 0 {
		if err := p.placeProduction(ctx, order, active, gs, aps, runID, issues); err != nil {
			return err
		}
		*created++
	}
	if params.IncludeMontage && order.TotalMontMin > 0 {
		if err := p.placeMontage(ctx, order, active, gs, aps, runID, issues); err != nil {
			return err
		}
		*created++
	}
	return nil
}

// placeProduction schedules production at a fixed lookahead before the
// delivery date. There is no window search for production; a shortfall is
// recorded as a soft issue and the event is created regardless.
func (p *Planner) placeProduction(ctx context.Context, order model.Order, active []model.Employee, gs model.GlobalSettings, aps model.AutoPlanSettings, runID string, issues *[]model.PlanIssue) error {
	target := order.DeliveryDate.AddDays(-aps.ProductionLookaheadDays)
	required := order.TotalProdMin

	remaining, err := p.store.RemainingCapacity(ctx, model.KindProduction, target)
	if err != nil {
		return fmt.Errorf("remaining capacity %s %s: %w", model.KindProduction, target, err)
	}
	if remaining+aps.TolPerDayMin < required {
		*issues = append(*issues, p.raiseIssue(model.PlanIssue{
			ID:         newIssueID(),
			RunID:      runID,
			Type:       model.IssueInsufficientCapacity,
			OrderID:    order.ID,
			Date:       target,
			DeficitMin: required - remaining,
		}))
		p.log.Warnf("autoplan run %s: production for order %s short %d min on %s",
			runID, order.ID, required-remaining, target)
	}

	return p.commitEvent(ctx, runID, model.EventInput{
		Kind:         model.KindProduction,
		OrderID:      order.ID,
		StartDate:    target,
		EndDate:      target,
		TotalMinutes: required,
		EmployeeIDs:  p.assign.Assign(active, model.KindProduction, aps.MaxEmployeesPerOrder),
		Source:       model.SourceAutoplan,
	})
}

// placeMontage schedules montage one day before delivery, sliding inside
// the configured slip window when the base date lacks capacity. When the
// whole window is exhausted the base date is used anyway and the shortfall
// recorded.
func (p *Planner) placeMontage(ctx context.Context, order model.Order, active []model.Employee, gs model.GlobalSettings, aps model.AutoPlanSettings, runID string, issues *[]model.PlanIssue) error {
	base := order.DeliveryDate.AddDays(-1)
	required := order.TotalMontMin

	slot, baseRemaining, err := p.findSlot(ctx, model.KindMontage, required, base, aps.MontageSlipBackDays, aps.MontageSlipFwdDays, aps.TolPerDayMin)
	if err != nil {
		return fmt.Errorf("slot search for order %s: %w", order.ID, err)
	}
	date := base
	if slot != nil {
		date = slot.Date
	} else {
		*issues = append(*issues, p.raiseIssue(model.PlanIssue{
			ID:         newIssueID(),
			RunID:      runID,
			Type:       model.IssueInsufficientCapacity,
			OrderID:    order.ID,
			Date:       base,
			DeficitMin: required - baseRemaining,
		}))
		p.log.Warnf("autoplan run %s: no montage slot for order %s, forcing %s (short %d min)",
			runID, order.ID, base, required-baseRemaining)
	}

	return p.commitEvent(ctx, runID, model.EventInput{
		Kind:          model.KindMontage,
		OrderID:       order.ID,
		StartDate:     date,
		EndDate:       date,
		TotalMinutes:  required,
		TravelMinutes: capacity.TravelMinutes(order.DistanceKm, gs.TravelKmh, gs.TravelRoundTrip),
		EmployeeIDs:   p.assign.Assign(active, model.KindMontage, aps.MaxEmployeesPerOrder),
		Source:        model.SourceAutoplan,
	})
}

func (p *Planner) commitEvent(ctx context.Context, runID string, input model.EventInput) error {
	if _, err := p.store.CreateEvent(ctx, input); err != nil {
		return fmt.Errorf("create %s event for order %s: %w", input.Kind, input.OrderID, err)
	}
	p.publish(EventPlanned{
		RunID:         runID,
		Kind:          input.Kind,
		OrderID:       input.OrderID,
		Date:          input.StartDate,
		TotalMinutes:  input.TotalMinutes,
		TravelMinutes: input.TravelMinutes,
	})
	if err := p.sink.RecordEvent(metrics.EventRecord{
		RunID:         runID,
		Kind:          input.Kind,
		OrderID:       input.OrderID,
		Date:          input.StartDate,
		TotalMinutes:  input.TotalMinutes,
		TravelMinutes: input.TravelMinutes,
	}); err != nil {
		p.log.Warnf("record event metric: %v", err)
	}
	return nil
}

// finish persists the run record and its issues, emits metrics and builds
// the result.
func (p *Planner) finish(ctx context.Context, runID string, start time.Time, params Params, createdEvents, skippedOrders int, issues []model.PlanIssue) (Result, error) {
	paramsJSON, _ := json.Marshal(params)
	summaryJSON, _ := json.Marshal(model.RunSummary{
		CreatedEvents: createdEvents,
		SkippedOrders: skippedOrders,
		IssueCount:    len(issues),
	})
	run := model.PlanRun{
		ID:          runID,
		CreatedAt:   start,
		ParamsJSON:  string(paramsJSON),
		SummaryJSON: string(summaryJSON),
	}
	res := Result{Run: run, Issues: issues, CreatedEvents: createdEvents, SkippedOrders: skippedOrders}

	if err := p.store.SaveRun(ctx, run, issues); err != nil {
		return res, fmt.Errorf("save run %s: %w", runID, err)
	}

	byType := make(map[model.IssueType]int, 3)
	for _, is := range issues {
		byType[is.Type]++
	}
	if err := p.sink.RecordRun(metrics.RunRecord{
		RunID:         runID,
		Start:         start,
		Duration:      time.Since(start),
		CreatedEvents: createdEvents,
		SkippedOrders: skippedOrders,
		IssuesByType:  byType,
	}); err != nil {
		p.log.Warnf("record run metric: %v", err)
	}
	p.publish(RunCompleted{RunID: runID, CreatedEvents: createdEvents, SkippedOrders: skippedOrders, IssueCount: len(issues)})
	p.log.Infof("autoplan run %s done: %d events, %d skipped, %d issues",
		runID, createdEvents, skippedOrders, len(issues))
	return res, nil
}

func (p *Planner) raiseIssue(issue model.PlanIssue) model.PlanIssue {
	p.publish(IssueRaised{Issue: issue})
	return issue
}

func (p *Planner) publish(e Event) {
	if p.bus != nil {
		p.bus.Publish(e)
	}
}

func newIssueID() string { return "issue-" + uuid.NewString() }
