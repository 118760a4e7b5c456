// Package autoplan exposes the AutoPlan engine over HTTP: triggering runs
// and browsing the run history with its issues.
package autoplan

import (
	"context"
	"encoding/json"
	"net/http"

	engine "github.com/planwerk/planwerk/core/autoplan"
	"github.com/planwerk/planwerk/core/model"
)

// Runner executes AutoPlan runs.
type Runner interface {
	Run(ctx context.Context, params engine.Params) (engine.Result, error)
}

// History reads persisted runs and their issues.
type History interface {
	ListRuns(ctx context.Context) ([]model.PlanRun, error)
	ListIssues(ctx context.Context, runID string) ([]model.PlanIssue, error)
}

// runRequest mirrors engine.Params but keeps the include flags as
// pointers so an absent flag defaults to true instead of false.
type runRequest struct {
	StartDate         model.Date `json:"startDate"`
	EndDate           model.Date `json:"endDate"`
	IncludeProduction *bool      `json:"includeProduction"`
	IncludeMontage    *bool      `json:"includeMontage"`
	OverwriteExisting bool       `json:"overwriteExisting"`
}

// NewRunHandler returns an HTTP handler triggering an AutoPlan run via
// POST /api/autoplan/run. The run result is returned synchronously.
func NewRunHandler(runner Runner) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req runRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
			return
		}
		if req.StartDate.IsZero() || req.EndDate.IsZero() {
			http.Error(w, "startDate and endDate are required", http.StatusBadRequest)
			return
		}
		if req.EndDate.Before(req.StartDate) {
			http.Error(w, "endDate must not be before startDate", http.StatusBadRequest)
			return
		}
		params := engine.Params{
			StartDate:         req.StartDate,
			EndDate:           req.EndDate,
			IncludeProduction: req.IncludeProduction == nil || *req.IncludeProduction,
			IncludeMontage:    req.IncludeMontage == nil || *req.IncludeMontage,
			OverwriteExisting: req.OverwriteExisting,
		}
		res, err := runner.Run(r.Context(), params)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(res); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}

// NewRunsHandler returns an HTTP handler listing past runs via
// GET /api/autoplan/runs, newest first. With ?run_id=<id> it returns the
// issues of that run instead.
func NewRunsHandler(history History) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if runID := r.URL.Query().Get("run_id"); runID != "" {
			issues, err := history.ListIssues(r.Context(), runID)
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			if issues == nil {
				issues = []model.PlanIssue{}
			}
			if err := json.NewEncoder(w).Encode(issues); err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
			}
			return
		}
		runs, err := history.ListRuns(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if runs == nil {
			runs = []model.PlanRun{}
		}
		if err := json.NewEncoder(w).Encode(runs); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
}
