package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/planwerk/planwerk/core/autoplan"
	"github.com/planwerk/planwerk/core/model"
)

// Settings are stored as JSON blobs under fixed app_settings keys, the
// same key/value layout the settings UI edits.
const (
	keyGlobalSettings   = "planning.global"
	keyAutoPlanSettings = "planning.autoplan"
)

// ListEmployees returns employees sorted by name then id so that the
// assignment order is deterministic across backends.
func (s *Store) ListEmployees(ctx context.Context) ([]model.Employee, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, role, weekly_hours, days_mask, active, color
         FROM employees ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.Employee
	for rows.Next() {
		var (
			e      model.Employee
			mask   int
			active int
			color  sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.Name, &e.Role, &e.WeeklyHours, &mask, &active, &color); err != nil {
			return nil, fmt.Errorf("scan employee: %w", err)
		}
		e.DaysMask = model.WorkWeek(mask)
		e.Active = active == 1
		e.Color = color.String
		out = append(out, e)
	}
	return out, rows.Err()
}

// UpsertEmployee inserts or replaces an employee, generating an id when
// absent.
func (s *Store) UpsertEmployee(ctx context.Context, e model.Employee) (string, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO employees (id, name, role, weekly_hours, days_mask, active, color)
         VALUES (?, ?, ?, ?, ?, ?, ?)
         ON CONFLICT(id) DO UPDATE SET
             name = excluded.name,
             role = excluded.role,
             weekly_hours = excluded.weekly_hours,
             days_mask = excluded.days_mask,
             active = excluded.active,
             color = excluded.color`,
		e.ID, e.Name, string(e.Role), e.WeeklyHours, int(e.DaysMask), boolToInt(e.Active), e.Color)
	if err != nil {
		return "", fmt.Errorf("upsert employee %s: %w", e.ID, err)
	}
	return e.ID, nil
}

// DeleteEmployee removes an employee and their blockers.
func (s *Store) DeleteEmployee(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM blockers WHERE employee_id = ?`, id); err != nil {
		return fmt.Errorf("delete blockers of %s: %w", id, err)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM employees WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete employee %s: %w", id, err)
	}
	return nil
}

// ListBlockers returns blockers matching the filter, all when it is zero.
func (s *Store) ListBlockers(ctx context.Context, f autoplan.BlockerFilter) ([]model.Blocker, error) {
	query := `SELECT id, employee_id, date_iso, overnight, reason FROM blockers WHERE 1=1`
	var args []any
	if f.EmployeeID != "" {
		query += ` AND employee_id = ?`
		args = append(args, f.EmployeeID)
	}
	if !f.Date.IsZero() {
		query += ` AND date_iso = ?`
		args = append(args, f.Date.String())
	}
	query += ` ORDER BY date_iso, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list blockers: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.Blocker
	for rows.Next() {
		var (
			b         model.Blocker
			dateIso   string
			overnight int
			reason    sql.NullString
		)
		if err := rows.Scan(&b.ID, &b.EmployeeID, &dateIso, &overnight, &reason); err != nil {
			return nil, fmt.Errorf("scan blocker: %w", err)
		}
		d, err := model.ParseDate(dateIso)
		if err != nil {
			return nil, err
		}
		b.Date = d
		b.Overnight = overnight == 1
		b.Reason = reason.String
		out = append(out, b)
	}
	return out, rows.Err()
}

// UpsertBlocker inserts or replaces a blocker, generating an id when
// absent.
func (s *Store) UpsertBlocker(ctx context.Context, b model.Blocker) (string, error) {
	if b.Date.IsZero() {
		return "", fmt.Errorf("blocker date is required")
	}
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO blockers (id, employee_id, date_iso, overnight, reason)
         VALUES (?, ?, ?, ?, ?)
         ON CONFLICT(id) DO UPDATE SET
             employee_id = excluded.employee_id,
             date_iso = excluded.date_iso,
             overnight = excluded.overnight,
             reason = excluded.reason`,
		b.ID, b.EmployeeID, b.Date.String(), boolToInt(b.Overnight), b.Reason)
	if err != nil {
		return "", fmt.Errorf("upsert blocker %s: %w", b.ID, err)
	}
	return b.ID, nil
}

// DeleteBlocker removes a blocker.
func (s *Store) DeleteBlocker(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM blockers WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete blocker %s: %w", id, err)
	}
	return nil
}

// ListItems returns the item catalogue sorted by SKU.
func (s *Store) ListItems(ctx context.Context) ([]model.Item, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT sku, name, prod_min_per_unit, mont_min_per_unit, active FROM items ORDER BY sku`)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.Item
	for rows.Next() {
		var (
			it     model.Item
			name   sql.NullString
			active int
		)
		if err := rows.Scan(&it.SKU, &name, &it.ProdMinPerUnit, &it.MontMinPerUnit, &active); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		it.Name = name.String
		it.Active = active == 1
		out = append(out, it)
	}
	return out, rows.Err()
}

// UpsertItem inserts or replaces an item by SKU.
func (s *Store) UpsertItem(ctx context.Context, it model.Item) error {
	if it.SKU == "" {
		return fmt.Errorf("item sku is required")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO items (sku, name, prod_min_per_unit, mont_min_per_unit, active)
         VALUES (?, ?, ?, ?, ?)
         ON CONFLICT(sku) DO UPDATE SET
             name = excluded.name,
             prod_min_per_unit = excluded.prod_min_per_unit,
             mont_min_per_unit = excluded.mont_min_per_unit,
             active = excluded.active`,
		it.SKU, it.Name, it.ProdMinPerUnit, it.MontMinPerUnit, boolToInt(it.Active))
	if err != nil {
		return fmt.Errorf("upsert item %s: %w", it.SKU, err)
	}
	return nil
}

// DeleteItem removes an item.
func (s *Store) DeleteItem(ctx context.Context, sku string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM items WHERE sku = ?`, sku); err != nil {
		return fmt.Errorf("delete item %s: %w", sku, err)
	}
	return nil
}

// GlobalSettings returns the stored global settings, falling back to the
// defaults when nothing has been saved yet.
func (s *Store) GlobalSettings(ctx context.Context) (model.GlobalSettings, error) {
	gs := model.DefaultGlobalSettings()
	if err := s.loadSetting(ctx, keyGlobalSettings, &gs); err != nil {
		return model.GlobalSettings{}, err
	}
	return gs, nil
}

// SetGlobalSettings replaces the stored global settings.
func (s *Store) SetGlobalSettings(ctx context.Context, gs model.GlobalSettings) error {
	return s.saveSetting(ctx, keyGlobalSettings, gs)
}

// AutoPlanSettings returns the stored AutoPlan settings, falling back to
// the defaults when nothing has been saved yet.
func (s *Store) AutoPlanSettings(ctx context.Context) (model.AutoPlanSettings, error) {
	aps := model.DefaultAutoPlanSettings()
	if err := s.loadSetting(ctx, keyAutoPlanSettings, &aps); err != nil {
		return model.AutoPlanSettings{}, err
	}
	return aps, nil
}

// SetAutoPlanSettings replaces the stored AutoPlan settings.
func (s *Store) SetAutoPlanSettings(ctx context.Context, aps model.AutoPlanSettings) error {
	return s.saveSetting(ctx, keyAutoPlanSettings, aps)
}

func (s *Store) loadSetting(ctx context.Context, key string, dst any) error {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT value_json FROM app_settings WHERE key = ?`, key).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load setting %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return fmt.Errorf("decode setting %s: %w", key, err)
	}
	return nil
}

func (s *Store) saveSetting(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode setting %s: %w", key, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO app_settings (key, value_json) VALUES (?, ?)
         ON CONFLICT(key) DO UPDATE SET value_json = excluded.value_json`,
		key, string(raw))
	if err != nil {
		return fmt.Errorf("save setting %s: %w", key, err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
