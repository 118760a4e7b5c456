// Package settings exposes the workforce and planning configuration over
// HTTP: employees, blockers, the item catalogue and the two settings
// documents.
package settings

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/planwerk/planwerk/core/autoplan"
	"github.com/planwerk/planwerk/core/model"
)

// Store is the configuration surface the handlers need.
type Store interface {
	ListEmployees(ctx context.Context) ([]model.Employee, error)
	UpsertEmployee(ctx context.Context, e model.Employee) (string, error)
	DeleteEmployee(ctx context.Context, id string) error

	ListBlockers(ctx context.Context, f autoplan.BlockerFilter) ([]model.Blocker, error)
	UpsertBlocker(ctx context.Context, b model.Blocker) (string, error)
	DeleteBlocker(ctx context.Context, id string) error

	ListItems(ctx context.Context) ([]model.Item, error)
	UpsertItem(ctx context.Context, it model.Item) error
	DeleteItem(ctx context.Context, sku string) error

	GlobalSettings(ctx context.Context) (model.GlobalSettings, error)
	SetGlobalSettings(ctx context.Context, gs model.GlobalSettings) error
	AutoPlanSettings(ctx context.Context) (model.AutoPlanSettings, error)
	SetAutoPlanSettings(ctx context.Context, aps model.AutoPlanSettings) error
}

// NewEmployeesHandler serves /api/settings/employees: GET lists, POST and
// PUT upsert, DELETE removes by ?id=.
func NewEmployeesHandler(store Store) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			emps, err := store.ListEmployees(r.Context())
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			if emps == nil {
				emps = []model.Employee{}
			}
			writeJSON(w, emps)
		case http.MethodPost, http.MethodPut:
			var e model.Employee
			if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
				http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
				return
			}
			if e.Name == "" {
				http.Error(w, "employee name is required", http.StatusBadRequest)
				return
			}
			if !e.Role.Valid() {
				http.Error(w, "role must be production, montage or both", http.StatusBadRequest)
				return
			}
			id, err := store.UpsertEmployee(r.Context(), e)
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			writeJSON(w, map[string]string{"id": id})
		case http.MethodDelete:
			id := r.URL.Query().Get("id")
			if id == "" {
				http.Error(w, "id is required", http.StatusBadRequest)
				return
			}
			if err := store.DeleteEmployee(r.Context(), id); err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})
}

// NewBlockersHandler serves /api/settings/blockers: GET lists with
// optional ?employee_id= and ?date= filters, POST and PUT upsert, DELETE
// removes by ?id=.
func NewBlockersHandler(store Store) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			f := autoplan.BlockerFilter{EmployeeID: r.URL.Query().Get("employee_id")}
			if s := r.URL.Query().Get("date"); s != "" {
				d, err := model.ParseDate(s)
				if err != nil {
					http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
					return
				}
				f.Date = d
			}
			blockers, err := store.ListBlockers(r.Context(), f)
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			if blockers == nil {
				blockers = []model.Blocker{}
			}
			writeJSON(w, blockers)
		case http.MethodPost, http.MethodPut:
			var b model.Blocker
			if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
				http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
				return
			}
			if b.EmployeeID == "" || b.Date.IsZero() {
				http.Error(w, "employeeId and date are required", http.StatusBadRequest)
				return
			}
			id, err := store.UpsertBlocker(r.Context(), b)
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			writeJSON(w, map[string]string{"id": id})
		case http.MethodDelete:
			id := r.URL.Query().Get("id")
			if id == "" {
				http.Error(w, "id is required", http.StatusBadRequest)
				return
			}
			if err := store.DeleteBlocker(r.Context(), id); err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})
}

// NewItemsHandler serves /api/settings/items: GET lists the catalogue,
// POST and PUT upsert by SKU, DELETE removes by ?sku=.
func NewItemsHandler(store Store) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			items, err := store.ListItems(r.Context())
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			if items == nil {
				items = []model.Item{}
			}
			writeJSON(w, items)
		case http.MethodPost, http.MethodPut:
			var it model.Item
			if err := json.NewDecoder(r.Body).Decode(&it); err != nil {
				http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
				return
			}
			if err := store.UpsertItem(r.Context(), it); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		case http.MethodDelete:
			sku := r.URL.Query().Get("sku")
			if sku == "" {
				http.Error(w, "sku is required", http.StatusBadRequest)
				return
			}
			if err := store.DeleteItem(r.Context(), sku); err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})
}

// NewGlobalHandler serves /api/settings/global: GET returns the settings
// document, PUT replaces it.
func NewGlobalHandler(store Store) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			gs, err := store.GlobalSettings(r.Context())
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			writeJSON(w, gs)
		case http.MethodPut:
			var gs model.GlobalSettings
			if err := json.NewDecoder(r.Body).Decode(&gs); err != nil {
				http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
				return
			}
			if gs.DayMinutes <= 0 || gs.MinCapPerDay < 0 {
				http.Error(w, "dayMinutes must be positive and minCapPerDay non-negative", http.StatusBadRequest)
				return
			}
			if err := store.SetGlobalSettings(r.Context(), gs); err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			writeJSON(w, gs)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})
}

// NewAutoPlanHandler serves /api/settings/autoplan: GET returns the
// AutoPlan tuning document, PUT replaces it.
func NewAutoPlanHandler(store Store) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			aps, err := store.AutoPlanSettings(r.Context())
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			writeJSON(w, aps)
		case http.MethodPut:
			var aps model.AutoPlanSettings
			if err := json.NewDecoder(r.Body).Decode(&aps); err != nil {
				http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
				return
			}
			if aps.MontageSlipBackDays < 0 || aps.MontageSlipFwdDays < 0 || aps.ProductionLookaheadDays < 0 {
				http.Error(w, "slip and lookahead days must be non-negative", http.StatusBadRequest)
				return
			}
			if err := store.SetAutoPlanSettings(r.Context(), aps); err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			writeJSON(w, aps)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
