package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"voxelforge.ai/internal/persistence/indexdb"
)

func TestRunsHandler(t *testing.T) {
	idx, err := indexdb.Open(filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer idx.Close()
	if _, err := idx.RecordRun(context.Background(), indexdb.Run{
		Name:  "a",
		Biome: "plains",
		Plan:  json.RawMessage(`{"name":"a"}`),
	}); err != nil {
		t.Fatalf("record: %v", err)
	}

	h := runsHandler(idx)
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/v1/runs?limit=5", nil))
	if rec.Code != 200 {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Runs []indexdb.Run `json:"runs"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Runs) != 1 || resp.Runs[0].Name != "a" {
		t.Fatalf("runs=%+v", resp.Runs)
	}
	if len(resp.Runs[0].Plan) != 0 {
		t.Fatalf("plan should be omitted by default")
	}

	rec = httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodPost, "/v1/runs", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("POST status=%d", rec.Code)
	}
}

func TestRunsHandlerDisabled(t *testing.T) {
	rec := httptest.NewRecorder()
	runsHandler(nil)(rec, httptest.NewRequest(http.MethodGet, "/v1/runs", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status=%d", rec.Code)
	}
}
