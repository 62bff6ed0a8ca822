package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/lvonguyen/incidentscope/internal/config"
	"github.com/lvonguyen/incidentscope/internal/dataset"
)

func newTestServer(t *testing.T) (*Server, http.Handler) {
	t.Helper()
	s := NewServer(dataset.NewStore(), config.DefaultConfig(), zap.NewNop(), nil)
	return s, s.Router(nil)
}

func multipartFile(t *testing.T, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	part.Write([]byte(content))
	w.Close()
	return body, w.FormDataContentType()
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

// =============================================================================
// Upload Tests
// =============================================================================

// TestUpload_MessyCSV verifies the end-to-end scenario: a CSV with no
// canonical column names is normalized and ingested.
func TestUpload_MessyCSV(t *testing.T) {
	_, h := newTestServer(t)

	csv := "Time,Attack Type,Attack Severity,Blocked\n" +
		"2024-01-08 10:00:00,DDoS,High,yes\n" +
		"2024-01-09 11:00:00,XSS,low,no\n"
	body, contentType := multipartFile(t, "incidents.csv", csv)

	req := httptest.NewRequest(http.MethodPost, "/api/incidents/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	resp := decodeBody(t, rec)
	if resp["records"].(float64) != 2 {
		t.Errorf("records = %v, want 2", resp["records"])
	}
	cols := resp["columns"].([]any)
	joined := ""
	for _, c := range cols {
		joined += c.(string) + ","
	}
	for _, want := range []string{"timestamp", "attack_type", "severity", "blocked", "hour", "day_name"} {
		if !strings.Contains(joined, want) {
			t.Errorf("columns missing %q: %v", want, cols)
		}
	}
	dr := resp["date_range"].(map[string]any)
	if dr["start"] != "2024-01-08 10:00:00" || dr["end"] != "2024-01-09 11:00:00" {
		t.Errorf("date_range = %v", dr)
	}
}

// TestUpload_JSONFile verifies JSON uploads take the same pipeline.
func TestUpload_JSONFile(t *testing.T) {
	_, h := newTestServer(t)

	payload := `[{"timestamp":"2024-01-08 10:00:00","attack_type":"DDoS","blocked":true}]`
	body, contentType := multipartFile(t, "incidents.json", payload)

	req := httptest.NewRequest(http.MethodPost, "/api/incidents/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

// TestUpload_NoFile verifies the 400 when the multipart field is missing.
func TestUpload_NoFile(t *testing.T) {
	_, h := newTestServer(t)

	rec := doJSON(t, h, http.MethodPost, "/api/incidents/upload", "{}")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

// TestUpload_UnsupportedExtension verifies only .csv and .json are accepted.
func TestUpload_UnsupportedExtension(t *testing.T) {
	_, h := newTestServer(t)

	body, contentType := multipartFile(t, "incidents.xlsx", "whatever")
	req := httptest.NewRequest(http.MethodPost, "/api/incidents/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

// TestUpload_FailureKeepsPreviousDataset verifies replace-on-success: an
// upload whose rows all fail to parse leaves the earlier dataset intact.
func TestUpload_FailureKeepsPreviousDataset(t *testing.T) {
	s, h := newTestServer(t)

	good := "timestamp\n2024-01-08 10:00:00\n2024-01-09 11:00:00\n"
	body, contentType := multipartFile(t, "good.csv", good)
	req := httptest.NewRequest(http.MethodPost, "/api/incidents/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("good upload failed: %d", rec.Code)
	}

	bad := "timestamp\nnot-a-date\nalso-bad\n"
	body, contentType = multipartFile(t, "bad.csv", bad)
	req = httptest.NewRequest(http.MethodPost, "/api/incidents/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("bad upload status = %d, want 500", rec.Code)
	}

	ds, err := s.store.Snapshot()
	if err != nil {
		t.Fatalf("previous dataset lost: %v", err)
	}
	if ds.Len() != 2 {
		t.Errorf("previous dataset corrupted: %d records", ds.Len())
	}
}

// =============================================================================
// Generate Tests
// =============================================================================

// TestGenerate_DefaultAndExplicitCounts verifies the default and the
// requested record counts.
func TestGenerate_DefaultAndExplicitCounts(t *testing.T) {
	_, h := newTestServer(t)

	rec := doJSON(t, h, http.MethodPost, "/api/incidents/generate", `{"records":100}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	resp := decodeBody(t, rec)
	if resp["records"].(float64) != 100 {
		t.Errorf("records = %v, want 100", resp["records"])
	}

	rec = doJSON(t, h, http.MethodPost, "/api/incidents/generate", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("default generate status = %d", rec.Code)
	}
	resp = decodeBody(t, rec)
	if resp["records"].(float64) != 1000 {
		t.Errorf("default records = %v, want 1000", resp["records"])
	}
}

// TestGenerate_RecordsOutOfRange verifies parameter validation.
func TestGenerate_RecordsOutOfRange(t *testing.T) {
	_, h := newTestServer(t)

	for _, body := range []string{`{"records":0}`, `{"records":-5}`, `{"records":100000000}`} {
		rec := doJSON(t, h, http.MethodPost, "/api/incidents/generate", body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %s: status = %d, want 400", body, rec.Code)
		}
	}
}

// =============================================================================
// Analysis Endpoint Tests
// =============================================================================

// TestAnalysis_NoDataset verifies every analysis endpoint rejects requests
// before a dataset is loaded.
func TestAnalysis_NoDataset(t *testing.T) {
	_, h := newTestServer(t)

	for _, path := range []string{
		"/api/analysis/temporal",
		"/api/analysis/predictions",
		"/api/clustering/analyze",
	} {
		rec := doJSON(t, h, http.MethodPost, path, "")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", path, rec.Code)
		}
		resp := decodeBody(t, rec)
		if resp["error"] == "" {
			t.Errorf("%s: missing error message", path)
		}
	}
}

// TestClustering_GenerateThenAnalyze is the concrete scenario: 100 generated
// records, n_clusters=4, exactly 4 cluster stats summing to 100.
func TestClustering_GenerateThenAnalyze(t *testing.T) {
	_, h := newTestServer(t)

	rec := doJSON(t, h, http.MethodPost, "/api/incidents/generate", `{"records":100}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("generate failed: %d", rec.Code)
	}

	rec = doJSON(t, h, http.MethodPost, "/api/clustering/analyze", `{"n_clusters":4}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("clustering status = %d, body = %s", rec.Code, rec.Body.String())
	}
	resp := decodeBody(t, rec)

	stats := resp["cluster_stats"].([]any)
	if len(stats) != 4 {
		t.Fatalf("got %d cluster stats, want 4", len(stats))
	}
	total := 0.0
	for _, s := range stats {
		total += s.(map[string]any)["size"].(float64)
	}
	if total != 100 {
		t.Errorf("cluster sizes sum to %f, want 100", total)
	}
	silhouette := resp["silhouette_score"].(float64)
	if silhouette < -1 || silhouette > 1 {
		t.Errorf("silhouette = %f", silhouette)
	}
}

// TestClustering_InvalidK verifies n_clusters validation surfaces as 400.
func TestClustering_InvalidK(t *testing.T) {
	_, h := newTestServer(t)

	doJSON(t, h, http.MethodPost, "/api/incidents/generate", `{"records":50}`)

	rec := doJSON(t, h, http.MethodPost, "/api/clustering/analyze", `{"n_clusters":0}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("k=0 status = %d, want 400", rec.Code)
	}
}

// TestTemporal_AfterGenerate verifies the temporal report over a loaded
// dataset and that its numbers are well formed.
func TestTemporal_AfterGenerate(t *testing.T) {
	_, h := newTestServer(t)

	doJSON(t, h, http.MethodPost, "/api/incidents/generate", `{"records":200}`)

	rec := doJSON(t, h, http.MethodPost, "/api/analysis/temporal", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	resp := decodeBody(t, rec)
	if resp["total_incidents"].(float64) != 200 {
		t.Errorf("total_incidents = %v, want 200", resp["total_incidents"])
	}
	if _, ok := resp["hourly_distribution"].(map[string]any); !ok {
		t.Error("hourly_distribution missing")
	}
	if _, ok := resp["high_risk_days"].([]any); !ok {
		t.Error("high_risk_days missing")
	}
}

// TestPredictions_AfterGenerate verifies the forecast endpoint shape.
func TestPredictions_AfterGenerate(t *testing.T) {
	_, h := newTestServer(t)

	doJSON(t, h, http.MethodPost, "/api/incidents/generate", `{"records":200}`)

	rec := doJSON(t, h, http.MethodPost, "/api/analysis/predictions", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	resp := decodeBody(t, rec)
	preds := resp["next_week_predictions"].([]any)
	if len(preds) != 7 {
		t.Fatalf("got %d predictions, want 7", len(preds))
	}
	first := preds[0].(map[string]any)
	for _, key := range []string{"date", "day", "predicted_incidents", "high_risk"} {
		if _, ok := first[key]; !ok {
			t.Errorf("prediction missing %q: %v", key, first)
		}
	}
	if len(resp["recommendations"].([]any)) != 4 {
		t.Errorf("recommendations = %v", resp["recommendations"])
	}
}

// TestHealthEndpoints verifies the liveness and readiness probes.
func TestHealthEndpoints(t *testing.T) {
	_, h := newTestServer(t)

	for _, path := range []string{"/health", "/ready"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("%s: status = %d", path, rec.Code)
		}
	}
}
