package autoplan

import (
	"context"

	"github.com/planwerk/planwerk/core/model"
)

// Slot is a feasible montage date found by the window search.
type Slot struct {
	Date      model.Date
	Remaining int
}

// findSlot probes candidate dates around base for one whose remaining
// capacity plus tolerance covers the required minutes. The base date is
// tried first, then earlier dates nearest-first down to base-maxBack, then
// later dates nearest-first up to base+maxForward. The first hit wins.
//
// A nil slot with a nil error means the whole window is exhausted; the
// caller is expected to schedule at the base date anyway and record the
// shortfall against baseRemaining.
func (p *Planner) findSlot(ctx context.Context, kind model.Kind, required int, base model.Date, maxBack, maxForward, tolerance int) (slot *Slot, baseRemaining int, err error) {
	if maxBack < 0 {
		maxBack = 0
	}
	if maxForward < 0 {
		maxForward = 0
	}
	offsets := make([]int, 0, 1+maxBack+maxForward)
	offsets = append(offsets, 0)
	for i := 1; i <= maxBack; i++ {
		offsets = append(offsets, -i)
	}
	for i := 1; i <= maxForward; i++ {
		offsets = append(offsets, i)
	}

	for _, off := range offsets {
		candidate := base.AddDays(off)
		remaining, err := p.store.RemainingCapacity(ctx, kind, candidate)
		if err != nil {
			return nil, 0, err
		}
		if off == 0 {
			baseRemaining = remaining
		}
		if remaining+tolerance >= required {
			return &Slot{Date: candidate, Remaining: remaining}, baseRemaining, nil
		}
	}
	return nil, baseRemaining, nil
}
