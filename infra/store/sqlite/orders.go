package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/planwerk/planwerk/core/model"
)

// ListOrders returns all orders sorted by id.
func (s *Store) ListOrders(ctx context.Context) ([]model.Order, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, customer, status, delivery_date, distance_km, total_prod_min, total_mont_min
         FROM orders ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.Order
	for rows.Next() {
		var (
			o        model.Order
			customer sql.NullString
			status   sql.NullString
			delivery sql.NullString
		)
		if err := rows.Scan(&o.ID, &customer, &status, &delivery, &o.DistanceKm, &o.TotalProdMin, &o.TotalMontMin); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		o.Customer = customer.String
		o.Status = status.String
		if delivery.String != "" {
			d, err := model.ParseDate(delivery.String)
			if err != nil {
				return nil, err
			}
			o.DeliveryDate = d
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// UpsertOrder inserts or replaces an order, generating an id when absent.
func (s *Store) UpsertOrder(ctx context.Context, o model.Order) (string, error) {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	delivery := ""
	if !o.DeliveryDate.IsZero() {
		delivery = o.DeliveryDate.String()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO orders (id, customer, status, delivery_date, distance_km, total_prod_min, total_mont_min)
         VALUES (?, ?, ?, ?, ?, ?, ?)
         ON CONFLICT(id) DO UPDATE SET
             customer = excluded.customer,
             status = excluded.status,
             delivery_date = excluded.delivery_date,
             distance_km = excluded.distance_km,
             total_prod_min = excluded.total_prod_min,
             total_mont_min = excluded.total_mont_min`,
		o.ID, o.Customer, o.Status, delivery, o.DistanceKm, o.TotalProdMin, o.TotalMontMin)
	if err != nil {
		return "", fmt.Errorf("upsert order %s: %w", o.ID, err)
	}
	return o.ID, nil
}
