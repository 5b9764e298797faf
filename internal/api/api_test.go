package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/yunchaoli/cablerig/pkg/pipeline"
	"github.com/yunchaoli/cablerig/pkg/scene"
	"github.com/yunchaoli/cablerig/pkg/store"
)

func testServer(t *testing.T) (*Server, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	logger := log.NewWithOptions(io.Discard, log.Options{})
	runner := pipeline.NewRunner(nil, nil, logger)
	return NewServer(runner, st, logger), st
}

func postBatch(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/batches", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	s, _ := testServer(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	s.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestCreateAndGetBatch(t *testing.T) {
	s, _ := testServer(t)
	h := s.Routes()

	rec := postBatch(t, h, `{
		"config": {"num_assemblies": 2, "assembly_length": 0.5, "payload_mass": 5},
		"formats": ["json", "dot"]
	}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}

	var created struct {
		ID    string `json:"id"`
		Stats struct {
			NumAssemblies int `json:"NumAssemblies"`
		} `json:"stats"`
		Artifacts map[string][]byte `json:"artifacts"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if created.ID == "" {
		t.Fatal("response has no batch ID")
	}
	if created.Stats.NumAssemblies != 2 {
		t.Errorf("NumAssemblies = %d, want 2", created.Stats.NumAssemblies)
	}
	if len(created.Artifacts["dot"]) == 0 {
		t.Error("missing dot artifact")
	}

	// Fetch it back.
	req := httptest.NewRequest(http.MethodGet, "/v1/batches/"+created.ID, nil)
	getRec := httptest.NewRecorder()
	h.ServeHTTP(getRec, req)
	if getRec.Code != http.StatusOK {
		t.Fatalf("GET status = %d, want 200", getRec.Code)
	}

	b, err := scene.ReadJSON(bytes.NewReader(getRec.Body.Bytes()))
	if err != nil {
		t.Fatalf("decode batch: %v", err)
	}
	if b.ID != created.ID {
		t.Errorf("batch ID = %q, want %q", b.ID, created.ID)
	}
}

func TestCreateBatchRejectsInvalidConfig(t *testing.T) {
	s, _ := testServer(t)
	rec := postBatch(t, s.Routes(), `{"config": {"num_assemblies": 0}}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "num_assemblies") {
		t.Errorf("error should name the offending parameter: %s", rec.Body.String())
	}
}

func TestCreateBatchRejectsMalformedJSON(t *testing.T) {
	s, _ := testServer(t)
	rec := postBatch(t, s.Routes(), `{nope`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestGetBatchNotFound(t *testing.T) {
	s, _ := testServer(t)
	req := httptest.NewRequest(http.MethodGet, "/v1/batches/nope", nil)
	rec := httptest.NewRecorder()
	s.Routes().ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestListBatches(t *testing.T) {
	s, _ := testServer(t)
	h := s.Routes()

	// Empty list is an array, not null.
	req := httptest.NewRequest(http.MethodGet, "/v1/batches", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Errorf("empty list body = %s, want []", rec.Body.String())
	}

	postBatch(t, h, `{"config": {"num_assemblies": 1, "assembly_length": 0.5, "payload_mass": 5}}`)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/batches?limit=10", nil))
	var summaries []store.Summary
	if err := json.NewDecoder(rec.Body).Decode(&summaries); err != nil {
		t.Fatalf("decode summaries: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("len = %d, want 1", len(summaries))
	}
	if summaries[0].Layout != "vertical" {
		t.Errorf("layout = %q, want vertical", summaries[0].Layout)
	}

	// Bad limit is a 400.
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/batches?limit=x", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestDeleteBatch(t *testing.T) {
	s, st := testServer(t)
	h := s.Routes()

	rec := postBatch(t, h, `{"config": {"num_assemblies": 1, "assembly_length": 0.5, "payload_mass": 5}}`)
	var created struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}

	req := httptest.NewRequest(http.MethodDelete, "/v1/batches/"+created.ID, nil)
	delRec := httptest.NewRecorder()
	h.ServeHTTP(delRec, req)
	if delRec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", delRec.Code)
	}

	if _, err := st.Get(req.Context(), created.ID); err == nil {
		t.Error("batch should be gone from the store")
	}
}

func TestTopologyEndpoint(t *testing.T) {
	s, _ := testServer(t)
	h := s.Routes()

	rec := postBatch(t, h, `{"config": {"num_assemblies": 2, "assembly_length": 0.3, "payload_mass": 5}}`)
	var created struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}

	topoRec := httptest.NewRecorder()
	h.ServeHTTP(topoRec, httptest.NewRequest(http.MethodGet, "/v1/batches/"+created.ID+"/topology", nil))
	if topoRec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", topoRec.Code, topoRec.Body.String())
	}
	if ct := topoRec.Header().Get("Content-Type"); ct != "text/vnd.graphviz" {
		t.Errorf("Content-Type = %q", ct)
	}
	if !strings.HasPrefix(topoRec.Body.String(), "digraph rig {") {
		t.Error("topology body is not DOT")
	}

	// Unknown format is a 400.
	badRec := httptest.NewRecorder()
	h.ServeHTTP(badRec, httptest.NewRequest(http.MethodGet, "/v1/batches/"+created.ID+"/topology?format=png", nil))
	if badRec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", badRec.Code)
	}
}
