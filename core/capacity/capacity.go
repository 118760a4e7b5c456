// Package capacity implements the pure workforce-capacity math consumed by
// the planning stores and the AutoPlan engine: per-employee day capacity
// from the weekly-hours/work-week model, blocker filtering and aggregation
// of remaining minutes against committed plan events.
package capacity

import (
	"math"

	"github.com/planwerk/planwerk/core/model"
)

// DayCapacity returns the minutes an employee can contribute to work of
// the given kind on the given date. It is zero when the employee is
// inactive, the role does not cover the kind, or the date's weekday is not
// in the employee's work week. Otherwise the weekly hours are spread
// evenly over the scheduled weekdays, subject to the configured floor.
func DayCapacity(emp model.Employee, kind model.Kind, date model.Date, minCapPerDay int) int {
	if !emp.Active || !emp.Role.Covers(kind) || !emp.DaysMask.IsWorkingDay(date) {
		return 0
	}
	perDay := int(math.Round(emp.WeeklyHours * 60 / float64(emp.DaysMask.Count())))
	if perDay < minCapPerDay {
		return minCapPerDay
	}
	return perDay
}

// Blocked reports whether the employee has a registered absence on the
// date. Blockers are full-day and matched by exact date equality; there is
// no range or overnight spillover logic.
func Blocked(blockers []model.Blocker, employeeID string, date model.Date) bool {
	for _, b := range blockers {
		if b.EmployeeID == employeeID && b.Date.Equal(date) {
			return true
		}
	}
	return false
}

// Remaining aggregates the capacity left for (kind, date) over a snapshot
// of the workforce and the committed events: the sum of every eligible
// employee's day capacity, with blocked employees contributing zero, minus
// the minutes (work plus travel) of every same-kind event whose date span
// contains the date. The result is clamped at zero.
func Remaining(kind model.Kind, date model.Date, employees []model.Employee, blockers []model.Blocker, events []model.PlanEvent, minCapPerDay int) int {
	total := 0
	for _, emp := range employees {
		if Blocked(blockers, emp.ID, date) {
			continue
		}
		total += DayCapacity(emp, kind, date, minCapPerDay)
	}
	for _, ev := range events {
		if ev.Kind != kind || !ev.Overlaps(date) {
			continue
		}
		total -= ev.TotalMinutes + ev.TravelMinutes
	}
	if total < 0 {
		return 0
	}
	return total
}
