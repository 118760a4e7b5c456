// Package memory implements the planning stores on plain in-memory maps.
// It backs tests and the `store.backend: memory` mode, where state lives
// only for the lifetime of the process.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/planwerk/planwerk/core/autoplan"
	"github.com/planwerk/planwerk/core/capacity"
	"github.com/planwerk/planwerk/core/model"
)

// Store holds all planning state behind one RWMutex. It implements the
// engine's OrderSource, Workforce and PlanningStore contracts plus the
// CRUD surface of the HTTP API.
type Store struct {
	mu        sync.RWMutex
	orders    map[string]model.Order
	employees map[string]model.Employee
	blockers  map[string]model.Blocker
	items     map[string]model.Item
	events    map[string]model.PlanEvent
	runs      []model.PlanRun
	issues    map[string][]model.PlanIssue
	global    model.GlobalSettings
	autoplan  model.AutoPlanSettings
}

// New creates an empty store seeded with default settings.
func New() *Store {
	return &Store{
		orders:    make(map[string]model.Order),
		employees: make(map[string]model.Employee),
		blockers:  make(map[string]model.Blocker),
		items:     make(map[string]model.Item),
		events:    make(map[string]model.PlanEvent),
		issues:    make(map[string][]model.PlanIssue),
		global:    model.DefaultGlobalSettings(),
		autoplan:  model.DefaultAutoPlanSettings(),
	}
}

// Orders

func (s *Store) ListOrders(context.Context) ([]model.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Order, 0, len(s.orders))
	for _, o := range s.orders {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) UpsertOrder(_ context.Context, o model.Order) (string, error) {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	s.mu.Lock()
	s.orders[o.ID] = o
	s.mu.Unlock()
	return o.ID, nil
}

// Workforce

// ListEmployees returns employees sorted by name then id so that the
// assignment order is deterministic across backends.
func (s *Store) ListEmployees(context.Context) ([]model.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Employee, 0, len(s.employees))
	for _, e := range s.employees {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) UpsertEmployee(_ context.Context, e model.Employee) (string, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	s.mu.Lock()
	s.employees[e.ID] = e
	s.mu.Unlock()
	return e.ID, nil
}

// DeleteEmployee removes an employee and their blockers.
func (s *Store) DeleteEmployee(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.employees, id)
	for bid, b := range s.blockers {
		if b.EmployeeID == id {
			delete(s.blockers, bid)
		}
	}
	s.mu.Unlock()
	return nil
}

func (s *Store) ListBlockers(_ context.Context, f autoplan.BlockerFilter) ([]model.Blocker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Blocker, 0, len(s.blockers))
	for _, b := range s.blockers {
		if f.EmployeeID != "" && b.EmployeeID != f.EmployeeID {
			continue
		}
		if !f.Date.IsZero() && !b.Date.Equal(f.Date) {
			continue
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) UpsertBlocker(_ context.Context, b model.Blocker) (string, error) {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	s.mu.Lock()
	s.blockers[b.ID] = b
	s.mu.Unlock()
	return b.ID, nil
}

func (s *Store) DeleteBlocker(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.blockers, id)
	s.mu.Unlock()
	return nil
}

// Items

func (s *Store) ListItems(context.Context) ([]model.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Item, 0, len(s.items))
	for _, it := range s.items {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SKU < out[j].SKU })
	return out, nil
}

func (s *Store) UpsertItem(_ context.Context, it model.Item) error {
	if it.SKU == "" {
		return fmt.Errorf("item sku is required")
	}
	s.mu.Lock()
	s.items[it.SKU] = it
	s.mu.Unlock()
	return nil
}

func (s *Store) DeleteItem(_ context.Context, sku string) error {
	s.mu.Lock()
	delete(s.items, sku)
	s.mu.Unlock()
	return nil
}

// Settings

func (s *Store) GlobalSettings(context.Context) (model.GlobalSettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.global, nil
}

func (s *Store) SetGlobalSettings(_ context.Context, gs model.GlobalSettings) error {
	s.mu.Lock()
	s.global = gs
	s.mu.Unlock()
	return nil
}

func (s *Store) AutoPlanSettings(context.Context) (model.AutoPlanSettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.autoplan, nil
}

func (s *Store) SetAutoPlanSettings(_ context.Context, aps model.AutoPlanSettings) error {
	s.mu.Lock()
	s.autoplan = aps
	s.mu.Unlock()
	return nil
}

// Planning

func (s *Store) RemainingCapacity(ctx context.Context, kind model.Kind, date model.Date) (int, error) {
	if !kind.Valid() {
		return 0, fmt.Errorf("unknown kind %q", kind)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	employees := make([]model.Employee, 0, len(s.employees))
	for _, e := range s.employees {
		if e.Active {
			employees = append(employees, e)
		}
	}
	blockers := make([]model.Blocker, 0, len(s.blockers))
	for _, b := range s.blockers {
		blockers = append(blockers, b)
	}
	events := make([]model.PlanEvent, 0, len(s.events))
	for _, ev := range s.events {
		events = append(events, ev)
	}
	return capacity.Remaining(kind, date, employees, blockers, events, s.global.MinCapPerDay), nil
}

func (s *Store) CreateEvent(_ context.Context, in model.EventInput) (string, error) {
	if err := validateEventInput(in); err != nil {
		return "", err
	}
	id := in.ID
	if id == "" {
		id = "event-" + uuid.NewString()
	}
	now := time.Now().UTC()
	source := in.Source
	if source == "" {
		source = model.SourceManual
	}
	s.mu.Lock()
	s.events[id] = model.PlanEvent{
		ID:            id,
		Kind:          in.Kind,
		OrderID:       in.OrderID,
		StartDate:     in.StartDate,
		EndDate:       in.EndDate,
		TotalMinutes:  in.TotalMinutes,
		TravelMinutes: in.TravelMinutes,
		Source:        source,
		EmployeeIDs:   append([]string(nil), in.EmployeeIDs...),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	s.mu.Unlock()
	return id, nil
}

func (s *Store) UpdateEvent(_ context.Context, in model.EventInput) error {
	if in.ID == "" {
		return fmt.Errorf("event id is required for update")
	}
	if err := validateEventInput(in); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.events[in.ID]
	if !ok {
		return fmt.Errorf("event %s not found", in.ID)
	}
	existing.Kind = in.Kind
	existing.OrderID = in.OrderID
	existing.StartDate = in.StartDate
	existing.EndDate = in.EndDate
	existing.TotalMinutes = in.TotalMinutes
	existing.TravelMinutes = in.TravelMinutes
	if in.Source != "" {
		existing.Source = in.Source
	}
	if in.EmployeeIDs != nil {
		existing.EmployeeIDs = append([]string(nil), in.EmployeeIDs...)
	}
	existing.UpdatedAt = time.Now().UTC()
	s.events[in.ID] = existing
	return nil
}

func (s *Store) DeleteEvent(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.events, id)
	s.mu.Unlock()
	return nil
}

// ListEvents returns events ordered by start date, optionally filtered by
// kind and by start-date range.
func (s *Store) ListEvents(_ context.Context, kind model.Kind, from, to model.Date) ([]model.PlanEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.PlanEvent, 0, len(s.events))
	for _, ev := range s.events {
		if kind != "" && ev.Kind != kind {
			continue
		}
		if !from.IsZero() && ev.StartDate.Before(from) {
			continue
		}
		if !to.IsZero() && ev.StartDate.After(to) {
			continue
		}
		out = append(out, ev)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].StartDate.Compare(out[j].StartDate); c != 0 {
			return c < 0
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) SaveRun(_ context.Context, run model.PlanRun, issues []model.PlanIssue) error {
	s.mu.Lock()
	s.runs = append(s.runs, run)
	s.issues[run.ID] = append([]model.PlanIssue(nil), issues...)
	s.mu.Unlock()
	return nil
}

// ListRuns returns runs newest-first.
func (s *Store) ListRuns(context.Context) ([]model.PlanRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := append([]model.PlanRun(nil), s.runs...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// ListIssues returns the issues recorded for one run.
func (s *Store) ListIssues(_ context.Context, runID string) ([]model.PlanIssue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.PlanIssue(nil), s.issues[runID]...), nil
}

// Close satisfies the service store contract; there is nothing to
// release.
func (s *Store) Close() error { return nil }

func validateEventInput(in model.EventInput) error {
	if !in.Kind.Valid() {
		return fmt.Errorf("unknown kind %q", in.Kind)
	}
	if in.OrderID == "" {
		return fmt.Errorf("order id is required")
	}
	if in.StartDate.IsZero() || in.EndDate.IsZero() {
		return fmt.Errorf("start and end dates are required")
	}
	if in.EndDate.Before(in.StartDate) {
		return fmt.Errorf("end date %s before start date %s", in.EndDate, in.StartDate)
	}
	if in.TotalMinutes < 0 || in.TravelMinutes < 0 {
		return fmt.Errorf("minutes must not be negative")
	}
	return nil
}
