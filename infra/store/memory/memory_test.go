package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planwerk/planwerk/core/autoplan"
	"github.com/planwerk/planwerk/core/model"
)

func seedEmployee(t *testing.T, s *Store, name string, role model.Role) string {
	t.Helper()
	id, err := s.UpsertEmployee(context.Background(), model.Employee{
		Name: name, Role: role, WeeklyHours: 40, DaysMask: model.WorkWeekMonFri, Active: true,
	})
	require.NoError(t, err)
	return id
}

func TestRemainingCapacityDecreasesAfterCommit(t *testing.T) {
	ctx := context.Background()
	s := New()
	seedEmployee(t, s, "Anna", model.RoleBoth)
	day := model.MustParseDate("2025-03-03") // Monday

	before, err := s.RemainingCapacity(ctx, model.KindProduction, day)
	require.NoError(t, err)
	assert.Equal(t, 480, before)

	again, err := s.RemainingCapacity(ctx, model.KindProduction, day)
	require.NoError(t, err)
	assert.Equal(t, before, again, "reads without writes must be idempotent")

	_, err = s.CreateEvent(ctx, model.EventInput{
		Kind: model.KindProduction, OrderID: "o1",
		StartDate: day, EndDate: day, TotalMinutes: 120, TravelMinutes: 30,
		Source: model.SourceAutoplan,
	})
	require.NoError(t, err)

	after, err := s.RemainingCapacity(ctx, model.KindProduction, day)
	require.NoError(t, err)
	assert.Equal(t, before-150, after)
	assert.GreaterOrEqual(t, after, 0)
}

func TestRemainingCapacityNeverNegative(t *testing.T) {
	ctx := context.Background()
	s := New()
	seedEmployee(t, s, "Anna", model.RoleMontage)
	day := model.MustParseDate("2025-03-04")

	_, err := s.CreateEvent(ctx, model.EventInput{
		Kind: model.KindMontage, OrderID: "o1",
		StartDate: day, EndDate: day, TotalMinutes: 100000,
	})
	require.NoError(t, err)

	got, err := s.RemainingCapacity(ctx, model.KindMontage, day)
	require.NoError(t, err)
	assert.Equal(t, 0, got)
}

func TestRemainingCapacityHonorsBlockers(t *testing.T) {
	ctx := context.Background()
	s := New()
	id := seedEmployee(t, s, "Anna", model.RoleBoth)
	seedEmployee(t, s, "Bert", model.RoleBoth)
	day := model.MustParseDate("2025-03-05")

	_, err := s.UpsertBlocker(ctx, model.Blocker{EmployeeID: id, Date: day, Reason: "vacation"})
	require.NoError(t, err)

	got, err := s.RemainingCapacity(ctx, model.KindProduction, day)
	require.NoError(t, err)
	assert.Equal(t, 480, got, "blocked employee contributes nothing")
}

func TestListBlockersFilter(t *testing.T) {
	ctx := context.Background()
	s := New()
	a := seedEmployee(t, s, "Anna", model.RoleBoth)
	b := seedEmployee(t, s, "Bert", model.RoleBoth)
	d1 := model.MustParseDate("2025-03-05")
	d2 := model.MustParseDate("2025-03-06")
	for _, bl := range []model.Blocker{{EmployeeID: a, Date: d1}, {EmployeeID: a, Date: d2}, {EmployeeID: b, Date: d1}} {
		_, err := s.UpsertBlocker(ctx, bl)
		require.NoError(t, err)
	}

	all, err := s.ListBlockers(ctx, autoplan.BlockerFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	forA, err := s.ListBlockers(ctx, autoplan.BlockerFilter{EmployeeID: a})
	require.NoError(t, err)
	assert.Len(t, forA, 2)

	onD1, err := s.ListBlockers(ctx, autoplan.BlockerFilter{Date: d1})
	require.NoError(t, err)
	assert.Len(t, onD1, 2)

	both, err := s.ListBlockers(ctx, autoplan.BlockerFilter{EmployeeID: b, Date: d1})
	require.NoError(t, err)
	assert.Len(t, both, 1)
}

func TestEmployeeListingIsDeterministic(t *testing.T) {
	ctx := context.Background()
	s := New()
	seedEmployee(t, s, "Clara", model.RoleBoth)
	seedEmployee(t, s, "Anna", model.RoleBoth)
	seedEmployee(t, s, "Bert", model.RoleBoth)

	emps, err := s.ListEmployees(ctx)
	require.NoError(t, err)
	require.Len(t, emps, 3)
	assert.Equal(t, "Anna", emps[0].Name)
	assert.Equal(t, "Bert", emps[1].Name)
	assert.Equal(t, "Clara", emps[2].Name)
}

func TestEventCRUD(t *testing.T) {
	ctx := context.Background()
	s := New()
	day := model.MustParseDate("2025-03-10")

	id, err := s.CreateEvent(ctx, model.EventInput{
		Kind: model.KindMontage, OrderID: "o1",
		StartDate: day, EndDate: day, TotalMinutes: 60, EmployeeIDs: []string{"e1"},
	})
	require.NoError(t, err)

	events, err := s.ListEvents(ctx, model.KindMontage, model.Date{}, model.Date{})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, model.SourceManual, events[0].Source, "source defaults to manual")

	err = s.UpdateEvent(ctx, model.EventInput{
		ID: id, Kind: model.KindMontage, OrderID: "o1",
		StartDate: day, EndDate: day.AddDays(1), TotalMinutes: 90,
	})
	require.NoError(t, err)

	events, err = s.ListEvents(ctx, "", day, day.AddDays(2))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, 90, events[0].TotalMinutes)
	assert.Equal(t, []string{"e1"}, events[0].EmployeeIDs, "omitted employee list keeps previous assignment")

	require.NoError(t, s.DeleteEvent(ctx, id))
	events, err = s.ListEvents(ctx, "", model.Date{}, model.Date{})
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestEventValidation(t *testing.T) {
	ctx := context.Background()
	s := New()
	day := model.MustParseDate("2025-03-10")

	_, err := s.CreateEvent(ctx, model.EventInput{Kind: "cleanup", OrderID: "o", StartDate: day, EndDate: day})
	assert.Error(t, err)
	_, err = s.CreateEvent(ctx, model.EventInput{Kind: model.KindMontage, OrderID: "o", StartDate: day, EndDate: day.AddDays(-1)})
	assert.Error(t, err)
	_, err = s.CreateEvent(ctx, model.EventInput{Kind: model.KindMontage, OrderID: "o", StartDate: day, EndDate: day, TotalMinutes: -1})
	assert.Error(t, err)
	err = s.UpdateEvent(ctx, model.EventInput{ID: "missing", Kind: model.KindMontage, OrderID: "o", StartDate: day, EndDate: day})
	assert.Error(t, err)
}

func TestSaveAndListRuns(t *testing.T) {
	ctx := context.Background()
	s := New()
	run := model.PlanRun{ID: "run-1", ParamsJSON: "{}", SummaryJSON: "{}"}
	issues := []model.PlanIssue{{ID: "issue-1", RunID: "run-1", Type: model.IssueNoEmployees}}
	require.NoError(t, s.SaveRun(ctx, run, issues))

	runs, err := s.ListRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 1)

	got, err := s.ListIssues(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, model.IssueNoEmployees, got[0].Type)
}
