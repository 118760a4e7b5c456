// Package planning exposes the plan-event calendar over HTTP.
package planning

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/planwerk/planwerk/core/model"
)

// EventStore is the calendar surface the handlers need.
type EventStore interface {
	ListEvents(ctx context.Context, kind model.Kind, from, to model.Date) ([]model.PlanEvent, error)
	CreateEvent(ctx context.Context, in model.EventInput) (string, error)
	UpdateEvent(ctx context.Context, in model.EventInput) error
	DeleteEvent(ctx context.Context, id string) error
}

// NewEventsHandler returns an HTTP handler for the event collection:
// GET /api/planning/events?kind=&from=&to= lists, POST creates.
func NewEventsHandler(store EventStore) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			listEvents(store, w, r)
		case http.MethodPost:
			createEvent(store, w, r)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})
}

// NewEventHandler returns an HTTP handler for a single event addressed by
// the {id} path value: PUT updates, DELETE removes.
func NewEventHandler(store EventStore) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		if id == "" {
			http.Error(w, "event id is required", http.StatusBadRequest)
			return
		}
		switch r.Method {
		case http.MethodPut:
			var in model.EventInput
			if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
				http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
				return
			}
			in.ID = id
			if err := store.UpdateEvent(r.Context(), in); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		case http.MethodDelete:
			if err := store.DeleteEvent(r.Context(), id); err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})
}

func listEvents(store EventStore, w http.ResponseWriter, r *http.Request) {
	var kind model.Kind
	if s := r.URL.Query().Get("kind"); s != "" {
		kind = model.Kind(s)
		if !kind.Valid() {
			http.Error(w, "kind must be production or montage", http.StatusBadRequest)
			return
		}
	}
	var from, to model.Date
	if s := r.URL.Query().Get("from"); s != "" {
		d, err := model.ParseDate(s)
		if err != nil {
			http.Error(w, "from must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		from = d
	}
	if s := r.URL.Query().Get("to"); s != "" {
		d, err := model.ParseDate(s)
		if err != nil {
			http.Error(w, "to must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		to = d
	}
	events, err := store.ListEvents(r.Context(), kind, from, to)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if events == nil {
		events = []model.PlanEvent{}
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(events); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func createEvent(store EventStore, w http.ResponseWriter, r *http.Request) {
	var in model.EventInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	id, err := store.CreateEvent(r.Context(), in)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(map[string]string{"id": id}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
