package autoplan

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planwerk/planwerk/core/capacity"
	"github.com/planwerk/planwerk/core/model"
)

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any)         {}
func (nopLogger) Debugw(string, map[string]any) {}
func (nopLogger) Infof(string, ...any)          {}
func (nopLogger) Warnf(string, ...any)          {}
func (nopLogger) Errorf(string, ...any)         {}

// fixture wires in-memory collaborators around a shared state so that
// capacity queries observe events committed earlier in the same run.
type fixture struct {
	orders    []model.Order
	employees []model.Employee
	blockers  []model.Blocker
	gs        model.GlobalSettings
	aps       model.AutoPlanSettings

	events []model.PlanEvent
	runs   []model.PlanRun
	issues []model.PlanIssue

	failCreateForOrder string
}

func newFixture() *fixture {
	return &fixture{
		gs:  model.DefaultGlobalSettings(),
		aps: model.DefaultAutoPlanSettings(),
	}
}

func (f *fixture) ListOrders(context.Context) ([]model.Order, error) { return f.orders, nil }

func (f *fixture) ListEmployees(context.Context) ([]model.Employee, error) {
	return f.employees, nil
}

func (f *fixture) ListBlockers(_ context.Context, _ BlockerFilter) ([]model.Blocker, error) {
	return f.blockers, nil
}

func (f *fixture) GlobalSettings(context.Context) (model.GlobalSettings, error) { return f.gs, nil }

func (f *fixture) AutoPlanSettings(context.Context) (model.AutoPlanSettings, error) {
	return f.aps, nil
}

func (f *fixture) RemainingCapacity(_ context.Context, kind model.Kind, date model.Date) (int, error) {
	var active []model.Employee
	for _, e := range f.employees {
		if e.Active {
			active = append(active, e)
		}
	}
	return capacity.Remaining(kind, date, active, f.blockers, f.events, f.gs.MinCapPerDay), nil
}

func (f *fixture) CreateEvent(_ context.Context, in model.EventInput) (string, error) {
	if f.failCreateForOrder != "" && in.OrderID == f.failCreateForOrder {
		return "", errors.New("disk full")
	}
	id := in.ID
	if id == "" {
		id = "event-" + in.OrderID + "-" + string(in.Kind)
	}
	f.events = append(f.events, model.PlanEvent{
		ID:            id,
		Kind:          in.Kind,
		OrderID:       in.OrderID,
		StartDate:     in.StartDate,
		EndDate:       in.EndDate,
		TotalMinutes:  in.TotalMinutes,
		TravelMinutes: in.TravelMinutes,
		Source:        in.Source,
		EmployeeIDs:   in.EmployeeIDs,
	})
	return id, nil
}

func (f *fixture) SaveRun(_ context.Context, run model.PlanRun, issues []model.PlanIssue) error {
	f.runs = append(f.runs, run)
	f.issues = append(f.issues, issues...)
	return nil
}

func (f *fixture) planner(t *testing.T) *Planner {
	t.Helper()
	p, err := NewPlanner(f, f, f, nil, nopLogger{}, nil, nil)
	require.NoError(t, err)
	return p
}

func worker(id string, role model.Role) model.Employee {
	return model.Employee{ID: id, Name: id, Role: role, WeeklyHours: 40, DaysMask: model.WorkWeekAll, Active: true}
}

func params(from, to string) Params {
	return Params{
		StartDate:         model.MustParseDate(from),
		EndDate:           model.MustParseDate(to),
		IncludeProduction: true,
		IncludeMontage:    true,
	}
}

func TestRunHappyPath(t *testing.T) {
	f := newFixture()
	f.employees = []model.Employee{worker("e1", model.RoleBoth)}
	f.orders = []model.Order{{
		ID:           "o1",
		DeliveryDate: model.MustParseDate("2025-03-11"),
		TotalProdMin: 240,
		TotalMontMin: 180,
	}}

	res, err := f.planner(t).Run(context.Background(), params("2025-03-01", "2025-03-31"))
	require.NoError(t, err)

	assert.Equal(t, 2, res.CreatedEvents)
	assert.Equal(t, 0, res.SkippedOrders)
	assert.Empty(t, res.Issues)
	require.Len(t, f.events, 2)

	prod, mont := f.events[0], f.events[1]
	assert.Equal(t, model.KindProduction, prod.Kind)
	assert.Equal(t, "2025-03-04", prod.StartDate.String()) // delivery - 7
	assert.Equal(t, 0, prod.TravelMinutes)
	assert.Equal(t, model.SourceAutoplan, prod.Source)
	assert.Equal(t, []string{"e1"}, prod.EmployeeIDs)

	assert.Equal(t, model.KindMontage, mont.Kind)
	assert.Equal(t, "2025-03-10", mont.StartDate.String()) // delivery - 1
	assert.Equal(t, mont.StartDate, mont.EndDate)

	require.Len(t, f.runs, 1)
	assert.Contains(t, f.runs[0].SummaryJSON, `"createdEvents":2`)
}

func TestRunNoActiveEmployees(t *testing.T) {
	f := newFixture()
	archived := worker("e1", model.RoleBoth)
	archived.Active = false
	f.employees = []model.Employee{archived}
	f.orders = []model.Order{{ID: "o1", DeliveryDate: model.MustParseDate("2025-03-11"), TotalProdMin: 60}}

	res, err := f.planner(t).Run(context.Background(), params("2025-03-01", "2025-03-31"))
	require.NoError(t, err)

	assert.Equal(t, 0, res.CreatedEvents)
	require.Len(t, res.Issues, 1)
	assert.Equal(t, model.IssueNoEmployees, res.Issues[0].Type)
	assert.Empty(t, f.events)
	require.Len(t, f.runs, 1, "the aborted run must still be recorded")
}

func TestRunSkipsOrdersOutsideRangeOrWithoutEffort(t *testing.T) {
	f := newFixture()
	f.employees = []model.Employee{worker("e1", model.RoleBoth)}
	f.orders = []model.Order{
		{ID: "early", DeliveryDate: model.MustParseDate("2025-02-01"), TotalProdMin: 60},
		{ID: "late", DeliveryDate: model.MustParseDate("2025-04-15"), TotalProdMin: 60},
		{ID: "empty", DeliveryDate: model.MustParseDate("2025-03-15")},
		{ID: "ok", DeliveryDate: model.MustParseDate("2025-03-15"), TotalMontMin: 90},
	}

	res, err := f.planner(t).Run(context.Background(), params("2025-03-01", "2025-03-31"))
	require.NoError(t, err)

	assert.Equal(t, 1, res.CreatedEvents)
	require.Len(t, f.events, 1)
	assert.Equal(t, "ok", f.events[0].OrderID)
}

func TestRunProcessesOrdersByDeliveryDate(t *testing.T) {
	f := newFixture()
	f.employees = []model.Employee{worker("e1", model.RoleProduction)}
	f.orders = []model.Order{
		{ID: "second", DeliveryDate: model.MustParseDate("2025-03-20"), TotalProdMin: 60},
		{ID: "first", DeliveryDate: model.MustParseDate("2025-03-10"), TotalProdMin: 60},
	}

	_, err := f.planner(t).Run(context.Background(), params("2025-03-01", "2025-03-31"))
	require.NoError(t, err)

	require.Len(t, f.events, 2)
	assert.Equal(t, "first", f.events[0].OrderID)
	assert.Equal(t, "second", f.events[1].OrderID)
}

func TestRunIncludeFlags(t *testing.T) {
	f := newFixture()
	f.employees = []model.Employee{worker("e1", model.RoleBoth)}
	f.orders = []model.Order{{
		ID:           "o1",
		DeliveryDate: model.MustParseDate("2025-03-11"),
		TotalProdMin: 240,
		TotalMontMin: 180,
	}}

	p := params("2025-03-01", "2025-03-31")
	p.IncludeProduction = false
	res, err := f.planner(t).Run(context.Background(), p)
	require.NoError(t, err)

	assert.Equal(t, 1, res.CreatedEvents)
	require.Len(t, f.events, 1)
	assert.Equal(t, model.KindMontage, f.events[0].Kind)
}

func TestProductionShortfallIsSoft(t *testing.T) {
	f := newFixture()
	f.employees = []model.Employee{worker("e1", model.RoleProduction)}
	f.aps.TolPerDayMin = 0
	// 40h over 7 days ≈ 343 min/day, far below the requested 1000.
	f.orders = []model.Order{{ID: "o1", DeliveryDate: model.MustParseDate("2025-03-11"), TotalProdMin: 1000}}

	res, err := f.planner(t).Run(context.Background(), params("2025-03-01", "2025-03-31"))
	require.NoError(t, err)

	assert.Equal(t, 1, res.CreatedEvents, "shortfall must not block event creation")
	require.Len(t, res.Issues, 1)
	issue := res.Issues[0]
	assert.Equal(t, model.IssueInsufficientCapacity, issue.Type)
	assert.Equal(t, "o1", issue.OrderID)
	assert.Equal(t, "2025-03-04", issue.Date.String())
	assert.Equal(t, 1000-343, issue.DeficitMin)
}

func TestMontageSlidesWhenBaseDateIsFull(t *testing.T) {
	f := newFixture()
	f.employees = []model.Employee{worker("e1", model.RoleMontage)}
	f.aps.TolPerDayMin = 0
	base := model.MustParseDate("2025-03-10")
	// Fill the base date completely so the search must slide.
	f.events = []model.PlanEvent{{
		ID: "pre", Kind: model.KindMontage, StartDate: base, EndDate: base, TotalMinutes: 9999,
	}}
	f.orders = []model.Order{{ID: "o1", DeliveryDate: model.MustParseDate("2025-03-11"), TotalMontMin: 120}}

	res, err := f.planner(t).Run(context.Background(), params("2025-03-01", "2025-03-31"))
	require.NoError(t, err)

	assert.Empty(t, res.Issues)
	require.Len(t, f.events, 2)
	assert.Equal(t, "2025-03-09", f.events[1].StartDate.String(), "backward candidates are probed nearest-first")
}

func TestMontageFallsBackToBaseDateWhenWindowExhausted(t *testing.T) {
	f := newFixture()
	// Production-only staff: montage capacity is zero on every date.
	f.employees = []model.Employee{worker("e1", model.RoleProduction)}
	f.aps.TolPerDayMin = 0
	f.orders = []model.Order{{ID: "o1", DeliveryDate: model.MustParseDate("2025-03-11"), TotalMontMin: 180}}

	res, err := f.planner(t).Run(context.Background(), params("2025-03-01", "2025-03-31"))
	require.NoError(t, err)

	assert.Equal(t, 1, res.CreatedEvents, "exhausted window still schedules best-effort")
	require.Len(t, f.events, 1)
	assert.Equal(t, "2025-03-10", f.events[0].StartDate.String())
	require.Len(t, res.Issues, 1)
	assert.Equal(t, model.IssueInsufficientCapacity, res.Issues[0].Type)
	assert.Equal(t, 180, res.Issues[0].DeficitMin)
}

func TestMontageTravelMinutes(t *testing.T) {
	f := newFixture()
	f.employees = []model.Employee{worker("e1", model.RoleMontage)}
	f.orders = []model.Order{{
		ID:           "o1",
		DeliveryDate: model.MustParseDate("2025-03-11"),
		TotalMontMin: 60,
		DistanceKm:   50,
	}}
	f.gs.TravelKmh = 80
	f.gs.TravelRoundTrip = true

	_, err := f.planner(t).Run(context.Background(), params("2025-03-01", "2025-03-31"))
	require.NoError(t, err)

	require.Len(t, f.events, 1)
	assert.Equal(t, 75, f.events[0].TravelMinutes)
}

func TestRunObservesEventsFromSameRun(t *testing.T) {
	f := newFixture()
	f.employees = []model.Employee{worker("e1", model.RoleMontage)}
	f.aps.TolPerDayMin = 0
	// Two orders compete for the same base date (343 min/day capacity).
	f.orders = []model.Order{
		{ID: "o1", DeliveryDate: model.MustParseDate("2025-03-11"), TotalMontMin: 300},
		{ID: "o2", DeliveryDate: model.MustParseDate("2025-03-11"), TotalMontMin: 300},
	}

	res, err := f.planner(t).Run(context.Background(), params("2025-03-01", "2025-03-31"))
	require.NoError(t, err)

	assert.Empty(t, res.Issues)
	require.Len(t, f.events, 2)
	assert.Equal(t, "2025-03-10", f.events[0].StartDate.String())
	assert.Equal(t, "2025-03-09", f.events[1].StartDate.String(),
		"the second order must see the first order's booking and slide")
}

func TestPlanningErrorIsolatesOrder(t *testing.T) {
	f := newFixture()
	f.employees = []model.Employee{worker("e1", model.RoleBoth)}
	f.failCreateForOrder = "broken"
	f.orders = []model.Order{
		{ID: "broken", DeliveryDate: model.MustParseDate("2025-03-10"), TotalProdMin: 60, TotalMontMin: 60},
		{ID: "fine", DeliveryDate: model.MustParseDate("2025-03-12"), TotalProdMin: 60},
	}

	res, err := f.planner(t).Run(context.Background(), params("2025-03-01", "2025-03-31"))
	require.NoError(t, err)

	assert.Equal(t, 1, res.SkippedOrders)
	assert.Equal(t, 1, res.CreatedEvents)
	require.Len(t, res.Issues, 1)
	issue := res.Issues[0]
	assert.Equal(t, model.IssuePlanningError, issue.Type)
	assert.Equal(t, "broken", issue.OrderID)
	assert.True(t, strings.Contains(issue.DetailsJSON, "disk full"))
	require.Len(t, f.events, 1)
	assert.Equal(t, "fine", f.events[0].OrderID)
}

func TestNewPlannerRequiresCollaborators(t *testing.T) {
	f := newFixture()
	_, err := NewPlanner(nil, f, f, nil, nopLogger{}, nil, nil)
	assert.Error(t, err)
	_, err = NewPlanner(f, f, f, nil, nil, nil, nil)
	assert.Error(t, err)
}
