// Package capacity exposes the remaining-capacity query over HTTP.
package capacity

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/planwerk/planwerk/core/model"
)

// Reader answers remaining-capacity queries.
type Reader interface {
	RemainingCapacity(ctx context.Context, kind model.Kind, date model.Date) (int, error)
}

type capacityResponse struct {
	Kind             model.Kind `json:"kind"`
	Date             model.Date `json:"date"`
	RemainingMinutes int        `json:"remainingMinutes"`
}

// NewHandler returns an HTTP handler answering
// GET /api/capacity?kind=production&date=2025-03-04.
func NewHandler(reader Reader) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		kind := model.Kind(r.URL.Query().Get("kind"))
		if !kind.Valid() {
			http.Error(w, "kind must be production or montage", http.StatusBadRequest)
			return
		}
		date, err := model.ParseDate(r.URL.Query().Get("date"))
		if err != nil {
			http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		remaining, err := reader.RemainingCapacity(r.Context(), kind, date)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(capacityResponse{Kind: kind, Date: date, RemainingMinutes: remaining}); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
}
