package autoplan

import "github.com/planwerk/planwerk/core/model"

// AssignmentStrategy selects the employees attached to a newly created
// plan event. The capacity aggregation has already applied the kind-level
// role filter; strategies receive the full active pool.
type AssignmentStrategy interface {
	Assign(employees []model.Employee, kind model.Kind, max int) []string
}

// FirstN assigns the first max employees of the active pool in listing
// order. It performs no load balancing and no per-employee conflict check;
// a smarter strategy can be swapped in without touching the planner.
type FirstN struct{}

func (FirstN) Assign(employees []model.Employee, _ model.Kind, max int) []string {
	if max <= 0 || len(employees) == 0 {
		return nil
	}
	if max > len(employees) {
		max = len(employees)
	}
	ids := make([]string, 0, max)
	for _, e := range employees[:max] {
		ids = append(ids, e.ID)
	}
	return ids
}
