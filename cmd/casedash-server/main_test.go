package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/casedash/casedash/internal/config"
	"github.com/casedash/casedash/internal/dataset"
	"github.com/casedash/casedash/internal/domain/cases"
)

const serverCSV = `caseid,age,sex,height,weight,bmi,asa,emop,department,icu_days,death_inhosp,intraop_ebl
1,60,M,165,65,24,2,0,General surgery,2,0,300
2,62,F,167,68,25,2,0,General surgery,4,0,500
`

func newTestServer(t *testing.T, authSecret string) *httptest.Server {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cases.csv")
	if err := os.WriteFile(path, []byte(serverCSV), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	store := dataset.NewStore(path, zerolog.Nop())
	if err := store.Load(); err != nil {
		t.Fatalf("load store: %v", err)
	}
	cfg := &config.Config{
		Env:             "development",
		CORSOrigins:     []string{"http://localhost:3000"},
		AuthSecret:      authSecret,
		AgeTolerance:    10,
		BMITolerance:    8,
		HeightTolerance: 4,
		ASATolerance:    3,
	}
	e := buildServer(cfg, zerolog.Nop(), store, cases.NewMemRepo(store))
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return srv
}

func TestServer_Health(t *testing.T) {
	srv := newTestServer(t, "")

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var body map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&body)
	if body["status"] != "ok" || body["cases"].(float64) != 2 {
		t.Errorf("unexpected health body: %v", body)
	}
}

func TestServer_EndToEndEstimate(t *testing.T) {
	srv := newTestServer(t, "")

	resp, err := http.Post(srv.URL+"/api/v1/cohort/estimate", "application/json",
		strings.NewReader(`{"age":60,"bmi":24,"height":165,"asa":2}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var out map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&out)
	if out["cohort_size"].(float64) != 2 {
		t.Errorf("cohort_size = %v, want 2", out["cohort_size"])
	}
}

func TestServer_ReloadRequiresAuth(t *testing.T) {
	srv := newTestServer(t, "s3cret")

	resp, err := http.Post(srv.URL+"/api/v1/dataset/reload", "application/json", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", resp.StatusCode)
	}

	// Read endpoints stay open.
	resp, err = http.Get(srv.URL + "/api/v1/cases")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200 for unauthenticated read, got %d", resp.StatusCode)
	}
}

func TestServer_RequestIDHeader(t *testing.T) {
	srv := newTestServer(t, "")

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp.Body.Close()
	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID response header")
	}
}
