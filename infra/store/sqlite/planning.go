package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/planwerk/planwerk/core/autoplan"
	"github.com/planwerk/planwerk/core/capacity"
	"github.com/planwerk/planwerk/core/model"
)

// RemainingCapacity aggregates the workforce snapshot and the committed
// events for (kind, date) through the shared capacity math. Reads are
// fresh on every call; nothing is cached between queries.
func (s *Store) RemainingCapacity(ctx context.Context, kind model.Kind, date model.Date) (int, error) {
	if !kind.Valid() {
		return 0, fmt.Errorf("unknown kind %q", kind)
	}
	employees, err := s.ListEmployees(ctx)
	if err != nil {
		return 0, err
	}
	blockers, err := s.ListBlockers(ctx, autoplan.BlockerFilter{Date: date})
	if err != nil {
		return 0, err
	}
	events, err := s.eventsOverlapping(ctx, kind, date)
	if err != nil {
		return 0, err
	}
	gs, err := s.GlobalSettings(ctx)
	if err != nil {
		return 0, err
	}
	return capacity.Remaining(kind, date, employees, blockers, events, gs.MinCapPerDay), nil
}

func (s *Store) eventsOverlapping(ctx context.Context, kind model.Kind, date model.Date) ([]model.PlanEvent, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, kind, order_id, start_date, end_date, total_minutes, travel_minutes, source
         FROM plan_events
         WHERE kind = ? AND start_date <= ? AND end_date >= ?`,
		string(kind), date.String(), date.String())
	if err != nil {
		return nil, fmt.Errorf("events overlapping %s: %w", date, err)
	}
	defer func() { _ = rows.Close() }()
	return scanEvents(rows)
}

// CreateEvent commits a new plan event and its employee assignments in
// one transaction.
func (s *Store) CreateEvent(ctx context.Context, in model.EventInput) (string, error) {
	if err := validateEventInput(in); err != nil {
		return "", err
	}
	id := in.ID
	if id == "" {
		id = "event-" + uuid.NewString()
	}
	source := in.Source
	if source == "" {
		source = model.SourceManual
	}
	now := time.Now().UTC().Format(time.RFC3339)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin create event: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO plan_events (id, kind, order_id, start_date, end_date, total_minutes, travel_minutes, created_at, updated_at, source)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, string(in.Kind), in.OrderID, in.StartDate.String(), in.EndDate.String(),
		in.TotalMinutes, in.TravelMinutes, now, now, string(source)); err != nil {
		return "", fmt.Errorf("insert event %s: %w", id, err)
	}
	for _, empID := range in.EmployeeIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO plan_event_employees (event_id, employee_id) VALUES (?, ?)`, id, empID); err != nil {
			return "", fmt.Errorf("insert event employee %s/%s: %w", id, empID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit create event: %w", err)
	}
	return id, nil
}

// UpdateEvent replaces an existing event. A non-nil employee list
// replaces the previous assignment.
func (s *Store) UpdateEvent(ctx context.Context, in model.EventInput) error {
	if in.ID == "" {
		return fmt.Errorf("event id is required for update")
	}
	if err := validateEventInput(in); err != nil {
		return err
	}
	now := time.Now().UTC().Format(time.RFC3339)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update event: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`UPDATE plan_events SET kind = ?, order_id = ?, start_date = ?, end_date = ?,
             total_minutes = ?, travel_minutes = ?, updated_at = ?,
             source = COALESCE(NULLIF(?, ''), source)
         WHERE id = ?`,
		string(in.Kind), in.OrderID, in.StartDate.String(), in.EndDate.String(),
		in.TotalMinutes, in.TravelMinutes, now, string(in.Source), in.ID)
	if err != nil {
		return fmt.Errorf("update event %s: %w", in.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("event %s not found", in.ID)
	}
	if in.EmployeeIDs != nil {
		if _, err := tx.ExecContext(ctx, `DELETE FROM plan_event_employees WHERE event_id = ?`, in.ID); err != nil {
			return fmt.Errorf("clear event employees %s: %w", in.ID, err)
		}
		for _, empID := range in.EmployeeIDs {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO plan_event_employees (event_id, employee_id) VALUES (?, ?)`, in.ID, empID); err != nil {
				return fmt.Errorf("insert event employee %s/%s: %w", in.ID, empID, err)
			}
		}
	}
	return tx.Commit()
}

// DeleteEvent removes an event and its assignments.
func (s *Store) DeleteEvent(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM plan_event_employees WHERE event_id = ?`, id); err != nil {
		return fmt.Errorf("delete event employees %s: %w", id, err)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM plan_events WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete event %s: %w", id, err)
	}
	return nil
}

// ListEvents returns events ordered by start date, optionally filtered by
// kind and by start-date range.
func (s *Store) ListEvents(ctx context.Context, kind model.Kind, from, to model.Date) ([]model.PlanEvent, error) {
	query := `SELECT id, kind, order_id, start_date, end_date, total_minutes, travel_minutes, source
              FROM plan_events WHERE 1=1`
	var args []any
	if kind != "" {
		query += ` AND kind = ?`
		args = append(args, string(kind))
	}
	if !from.IsZero() {
		query += ` AND start_date >= ?`
		args = append(args, from.String())
	}
	if !to.IsZero() {
		query += ` AND start_date <= ?`
		args = append(args, to.String())
	}
	query += ` ORDER BY start_date, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	events, err := scanEvents(rows)
	if err != nil {
		return nil, err
	}
	for i := range events {
		ids, err := s.eventEmployees(ctx, events[i].ID)
		if err != nil {
			return nil, err
		}
		events[i].EmployeeIDs = ids
	}
	return events, nil
}

func (s *Store) eventEmployees(ctx context.Context, eventID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT employee_id FROM plan_event_employees WHERE event_id = ? ORDER BY employee_id`, eventID)
	if err != nil {
		return nil, fmt.Errorf("event employees %s: %w", eventID, err)
	}
	defer func() { _ = rows.Close() }()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// SaveRun persists one run record together with its issues.
func (s *Store) SaveRun(ctx context.Context, run model.PlanRun, issues []model.PlanIssue) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save run: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO autoplan_runs (id, created_at, params_json, summary_json) VALUES (?, ?, ?, ?)`,
		run.ID, run.CreatedAt.UTC().Format(time.RFC3339), run.ParamsJSON, run.SummaryJSON); err != nil {
		return fmt.Errorf("insert run %s: %w", run.ID, err)
	}
	for _, is := range issues {
		dateIso := ""
		if !is.Date.IsZero() {
			dateIso = is.Date.String()
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO autoplan_issues (id, run_id, type, order_id, date_iso, deficit_min, details_json)
             VALUES (?, ?, ?, ?, ?, ?, ?)`,
			is.ID, is.RunID, string(is.Type), is.OrderID, dateIso, is.DeficitMin, is.DetailsJSON); err != nil {
			return fmt.Errorf("insert issue %s: %w", is.ID, err)
		}
	}
	return tx.Commit()
}

// ListRuns returns runs newest-first.
func (s *Store) ListRuns(ctx context.Context) ([]model.PlanRun, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, params_json, summary_json FROM autoplan_runs ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.PlanRun
	for rows.Next() {
		var (
			r         model.PlanRun
			createdAt string
		)
		if err := rows.Scan(&r.ID, &createdAt, &r.ParamsJSON, &r.SummaryJSON); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
			r.CreatedAt = t
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ListIssues returns the issues recorded for one run.
func (s *Store) ListIssues(ctx context.Context, runID string) ([]model.PlanIssue, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, run_id, type, order_id, date_iso, deficit_min, details_json
         FROM autoplan_issues WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("list issues: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.PlanIssue
	for rows.Next() {
		var (
			is      model.PlanIssue
			orderID sql.NullString
			dateIso sql.NullString
			deficit sql.NullInt64
			details sql.NullString
		)
		if err := rows.Scan(&is.ID, &is.RunID, &is.Type, &orderID, &dateIso, &deficit, &details); err != nil {
			return nil, fmt.Errorf("scan issue: %w", err)
		}
		is.OrderID = orderID.String
		if dateIso.String != "" {
			d, err := model.ParseDate(dateIso.String)
			if err != nil {
				return nil, err
			}
			is.Date = d
		}
		is.DeficitMin = int(deficit.Int64)
		is.DetailsJSON = details.String
		out = append(out, is)
	}
	return out, rows.Err()
}

func scanEvents(rows *sql.Rows) ([]model.PlanEvent, error) {
	var out []model.PlanEvent
	for rows.Next() {
		var (
			ev         model.PlanEvent
			start, end string
		)
		if err := rows.Scan(&ev.ID, &ev.Kind, &ev.OrderID, &start, &end, &ev.TotalMinutes, &ev.TravelMinutes, &ev.Source); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		sd, err := model.ParseDate(start)
		if err != nil {
			return nil, err
		}
		ed, err := model.ParseDate(end)
		if err != nil {
			return nil, err
		}
		ev.StartDate, ev.EndDate = sd, ed
		out = append(out, ev)
	}
	return out, rows.Err()
}

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
