// Package orders exposes the order book over HTTP.
package orders

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/planwerk/planwerk/core/model"
)

// Store is the order surface the handlers need.
type Store interface {
	ListOrders(ctx context.Context) ([]model.Order, error)
	UpsertOrder(ctx context.Context, o model.Order) (string, error)
}

// NewHandler returns an HTTP handler for /api/orders: GET lists all
// orders, POST and PUT upsert one.
func NewHandler(store Store) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			orders, err := store.ListOrders(r.Context())
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			if orders == nil {
				orders = []model.Order{}
			}
			w.Header().Set("Content-Type", "application/json")
			if err := json.NewEncoder(w).Encode(orders); err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
			}
		case http.MethodPost, http.MethodPut:
			var o model.Order
			if err := json.NewDecoder(r.Body).Decode(&o); err != nil {
				http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
				return
			}
			id, err := store.UpsertOrder(r.Context(), o)
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			if err := json.NewEncoder(w).Encode(map[string]string{"id": id}); err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
			}
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})
}

// NewOrderHandler returns an HTTP handler for a single order addressed by
// the {id} path value: PUT upserts it under that id.
func NewOrderHandler(store Store) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		id := r.PathValue("id")
		if id == "" {
			http.Error(w, "order id is required", http.StatusBadRequest)
			return
		}
		var o model.Order
		if err := json.NewDecoder(r.Body).Decode(&o); err != nil {
			http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
			return
		}
		o.ID = id
		if _, err := store.UpsertOrder(r.Context(), o); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(map[string]string{"id": id}); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
}
