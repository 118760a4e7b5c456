package autoplan

import (
	"context"

	"github.com/planwerk/planwerk/core/model"
)

// OrderSource supplies the orders considered for planning.
type OrderSource interface {
	ListOrders(ctx context.Context) ([]model.Order, error)
}

// BlockerFilter narrows a blocker listing. Zero values match everything.
type BlockerFilter struct {
	EmployeeID string
	Date       model.Date
}

// Workforce supplies employees, absences and planning settings.
type Workforce interface {
	ListEmployees(ctx context.Context) ([]model.Employee, error)
	ListBlockers(ctx context.Context, f BlockerFilter) ([]model.Blocker, error)
	GlobalSettings(ctx context.Context) (model.GlobalSettings, error)
	AutoPlanSettings(ctx context.Context) (model.AutoPlanSettings, error)
}

// PlanningStore reads and writes the planning calendar. RemainingCapacity
// must reflect every event committed so far, including events created
// earlier in the same run.
type PlanningStore interface {
	RemainingCapacity(ctx context.Context, kind model.Kind, date model.Date) (int, error)
	CreateEvent(ctx context.Context, input model.EventInput) (string, error)
	SaveRun(ctx context.Context, run model.PlanRun, issues []model.PlanIssue) error
}
