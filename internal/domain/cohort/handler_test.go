package cohort

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/casedash/casedash/internal/dataset"
	"github.com/casedash/casedash/pkg/pagination"
)

const handlerCSV = `caseid,age,sex,height,weight,bmi,asa,emop,icu_days,death_inhosp,intraop_ebl
1,60,M,165,65,24,2,0,2,0,300
2,62,F,167,68,25,2,0,4,0,500
3,58,M,163,62,23,3,0,1,1,200
4,95,M,190,90,40,5,1,10,1,2000
`

func newTestHandler(t *testing.T) (*Handler, *echo.Echo) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cases.csv")
	if err := os.WriteFile(path, []byte(handlerCSV), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	store := dataset.NewStore(path, zerolog.Nop())
	if err := store.Load(); err != nil {
		t.Fatalf("load store: %v", err)
	}
	h := NewHandler(NewService(store, DefaultTolerances))
	e := echo.New()
	return h, e
}

func postJSON(e *echo.Echo, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestHandler_MatchCohort(t *testing.T) {
	h, e := newTestHandler(t)

	c, rec := postJSON(e, "/api/v1/cohort/match", `{"age":60,"bmi":24,"height":165,"asa":2}`)
	if err := h.MatchCohort(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp pagination.Response
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Total != 3 {
		t.Errorf("expected 3 matches, got %d", resp.Total)
	}
}

func TestHandler_MatchCohort_InvalidProfile(t *testing.T) {
	h, e := newTestHandler(t)

	c, _ := postJSON(e, "/api/v1/cohort/match", `{"age":-1,"bmi":24,"height":165,"asa":2}`)
	if err := h.MatchCohort(c); err == nil {
		t.Error("expected error for negative age")
	}

	c, _ = postJSON(e, "/api/v1/cohort/match", `{"age":60,"bmi":24,"height":165,"asa":9}`)
	if err := h.MatchCohort(c); err == nil {
		t.Error("expected error for ASA out of range")
	}
}

func TestHandler_Estimate(t *testing.T) {
	h, e := newTestHandler(t)

	c, rec := postJSON(e, "/api/v1/cohort/estimate", `{"age":60,"bmi":24,"height":165,"asa":2}`)
	if err := h.Estimate(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var out AggregateOutcome
	json.Unmarshal(rec.Body.Bytes(), &out)
	if out.CohortSize != 3 {
		t.Errorf("cohort_size = %d, want 3", out.CohortSize)
	}
	// cases 1-3: icu [1,2,4] mean 7/3, one death of three
	if out.MortalityRate < 0.33 || out.MortalityRate > 0.34 {
		t.Errorf("mortality = %v, want 1/3", out.MortalityRate)
	}
}

func TestHandler_Estimate_EmptyCohort(t *testing.T) {
	h, e := newTestHandler(t)

	c, rec := postJSON(e, "/api/v1/cohort/estimate", `{"age":20,"bmi":24,"height":165,"asa":2}`)
	if err := h.Estimate(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var out AggregateOutcome
	json.Unmarshal(rec.Body.Bytes(), &out)
	if out.CohortSize != 0 {
		t.Errorf("cohort_size = %d, want 0", out.CohortSize)
	}
	if out.AvgICUStay != 0 || out.MortalityRate != 0 || out.AvgBloodLoss != 0 {
		t.Errorf("expected zeroed outcome for empty cohort, got %+v", out)
	}
}

func TestHandler_ScoreGuesses(t *testing.T) {
	h, e := newTestHandler(t)

	body := `{"profile":{"age":60,"bmi":24,"height":165,"asa":2},"guesses":{"icu_stay":2,"mortality":0.33,"blood_loss":300}}`
	c, rec := postJSON(e, "/api/v1/cohort/score", body)
	if err := h.ScoreGuesses(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var result ScoreResult
	json.Unmarshal(rec.Body.Bytes(), &result)
	if result.Composite <= 0 || result.Composite > 1 {
		t.Errorf("composite = %v, want in (0,1]", result.Composite)
	}
	if result.Actual.CohortSize != 3 {
		t.Errorf("actual cohort_size = %d, want 3", result.Actual.CohortSize)
	}
}

func TestHandler_GetTolerances(t *testing.T) {
	h, e := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cohort/tolerances", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := h.GetTolerances(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var tol Tolerances
	json.Unmarshal(rec.Body.Bytes(), &tol)
	if tol != DefaultTolerances {
		t.Errorf("tolerances = %+v, want defaults", tol)
	}
}
