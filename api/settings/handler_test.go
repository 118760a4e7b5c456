package settings

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/planwerk/planwerk/core/model"
	"github.com/planwerk/planwerk/infra/store/memory"
)

func TestEmployeesHandler_CRUD(t *testing.T) {
	store := memory.New()
	h := NewEmployeesHandler(store)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/settings/employees", strings.NewReader(
		`{"name":"Anna","role":"both","weeklyHours":40,"daysMask":31,"active":true}`))
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rr.Code, rr.Body.String())
	}
	var created map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/api/settings/employees", nil))
	var emps []model.Employee
	if err := json.Unmarshal(rr.Body.Bytes(), &emps); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(emps) != 1 || emps[0].DaysMask != model.WorkWeekMonFri {
		t.Fatalf("unexpected employees %#v", emps)
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("DELETE", "/api/settings/employees?id="+created["id"], nil))
	if rr.Code != http.StatusNoContent {
		t.Fatalf("status %d", rr.Code)
	}
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/api/settings/employees", nil))
	if rr.Body.String() != "[]\n" {
		t.Fatalf("expected empty list got %s", rr.Body.String())
	}
}

func TestEmployeesHandler_Validation(t *testing.T) {
	h := NewEmployeesHandler(memory.New())
	for _, body := range []string{
		`{"role":"both"}`,
		`{"name":"Anna","role":"pilot"}`,
		`{`,
	} {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest("POST", "/api/settings/employees", strings.NewReader(body)))
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("body %s: expected 400, got %d", body, rr.Code)
		}
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("DELETE", "/api/settings/employees", nil))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("delete without id: status %d", rr.Code)
	}
}

func TestBlockersHandler_FilterByDate(t *testing.T) {
	store := memory.New()
	h := NewBlockersHandler(store)

	for _, body := range []string{
		`{"employeeId":"e1","dateIso":"2025-03-05","reason":"training"}`,
		`{"employeeId":"e1","dateIso":"2025-03-06"}`,
	} {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest("POST", "/api/settings/blockers", strings.NewReader(body)))
		if rr.Code != http.StatusOK {
			t.Fatalf("status %d: %s", rr.Code, rr.Body.String())
		}
	}

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/api/settings/blockers?date=2025-03-05", nil))
	var blockers []model.Blocker
	if err := json.Unmarshal(rr.Body.Bytes(), &blockers); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(blockers) != 1 || blockers[0].Reason != "training" {
		t.Fatalf("unexpected blockers %#v", blockers)
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("POST", "/api/settings/blockers", strings.NewReader(`{"dateIso":"2025-03-05"}`)))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("blocker without employee: status %d", rr.Code)
	}
}

func TestItemsHandler_CRUD(t *testing.T) {
	h := NewItemsHandler(memory.New())

	rr := httptest.NewRecorder()
	req := httptest.NewRequest("PUT", "/api/settings/items", strings.NewReader(
		`{"sku":"TBL-200","name":"Table 200cm","prodMinPerUnit":90,"montMinPerUnit":45,"active":true}`))
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("status %d: %s", rr.Code, rr.Body.String())
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/api/settings/items", nil))
	var items []model.Item
	if err := json.Unmarshal(rr.Body.Bytes(), &items); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(items) != 1 || items[0].ProdMinPerUnit != 90 {
		t.Fatalf("unexpected items %#v", items)
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("DELETE", "/api/settings/items?sku=TBL-200", nil))
	if rr.Code != http.StatusNoContent {
		t.Fatalf("status %d", rr.Code)
	}
}

func TestGlobalHandler_RoundTrip(t *testing.T) {
	h := NewGlobalHandler(memory.New())

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/api/settings/global", nil))
	var gs model.GlobalSettings
	if err := json.Unmarshal(rr.Body.Bytes(), &gs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if gs != model.DefaultGlobalSettings() {
		t.Fatalf("fresh store must serve defaults, got %+v", gs)
	}

	rr = httptest.NewRecorder()
	req := httptest.NewRequest("PUT", "/api/settings/global", strings.NewReader(
		`{"dayMinutes":540,"minCapPerDay":30,"travelKmh":70,"travelRoundTrip":false}`))
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rr.Code, rr.Body.String())
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/api/settings/global", nil))
	_ = json.Unmarshal(rr.Body.Bytes(), &gs)
	if gs.DayMinutes != 540 || gs.TravelRoundTrip {
		t.Fatalf("update not applied: %+v", gs)
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("PUT", "/api/settings/global", strings.NewReader(`{"dayMinutes":0}`)))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status %d", rr.Code)
	}
}

func TestAutoPlanHandler_RoundTrip(t *testing.T) {
	h := NewAutoPlanHandler(memory.New())

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/api/settings/autoplan", nil))
	var aps model.AutoPlanSettings
	if err := json.Unmarshal(rr.Body.Bytes(), &aps); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if aps != model.DefaultAutoPlanSettings() {
		t.Fatalf("fresh store must serve defaults, got %+v", aps)
	}

	aps.ProductionLookaheadDays = 10
	body, _ := json.Marshal(aps)
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("PUT", "/api/settings/autoplan", strings.NewReader(string(body))))
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rr.Code, rr.Body.String())
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/api/settings/autoplan", nil))
	_ = json.Unmarshal(rr.Body.Bytes(), &aps)
	if aps.ProductionLookaheadDays != 10 {
		t.Fatalf("update not applied: %+v", aps)
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("PUT", "/api/settings/autoplan", strings.NewReader(
		`{"autoPlanMontageSlipBackDays":-1}`)))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status %d", rr.Code)
	}
}
