//nolint:revive // "api" package name is intentionally concise for this layer.
package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kardelen-edu/insight/internal/analysis"
	"github.com/kardelen-edu/insight/internal/domain"
	"github.com/kardelen-edu/insight/internal/llm"
	"github.com/kardelen-edu/insight/internal/store"
)

func boolPtr(v bool) *bool { return &v }
func intPtr(v int) *int    { return &v }

func newTestRouter(mock *llm.MockProvider) chi.Router {
	mem := store.NewMemory()

	birthdate := time.Date(2019, time.June, 15, 0, 0, 0, 0, time.UTC)
	mem.PutSession(&domain.Session{
		ID:         "sess-1",
		LessonID:   "lesson-1",
		ChildID:    "child-1",
		Status:     "completed",
		TotalScore: intPtr(85),
		StepResults: []domain.StepResult{
			{StepID: 1, StepType: domain.StepTypeQuiz, IsSuccessful: boolPtr(true), DurationSeconds: intPtr(100)},
		},
	})
	mem.PutChild(&domain.Child{ID: "child-1", Name: "Elif", Birthdate: &birthdate})
	mem.PutLesson(&domain.Lesson{ID: "lesson-1", Name: "Renkler"})

	workflow := analysis.NewWorkflow(mem, mem, analysis.NewAnalyzer(mock), false)

	r := chi.NewRouter()
	NewAnalysisHandler(workflow).RegisterRoutes(r)
	NewHealthHandler(mem).RegisterHealth(r)
	return r
}

func doJSON(t *testing.T, r chi.Router, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	var decoded map[string]any
	if rr.Body.Len() > 0 {
		if err := json.Unmarshal(rr.Body.Bytes(), &decoded); err != nil {
			t.Fatalf("decode response %q: %v", rr.Body.String(), err)
		}
	}
	return rr, decoded
}

func initializeSession(t *testing.T, r chi.Router) {
	t.Helper()
	rr, _ := doJSON(t, r, http.MethodPost, "/analysis/session/initialize", `{"session_id":"sess-1"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("initialize failed with status %d: %s", rr.Code, rr.Body.String())
	}
}

func TestInitializeEndpoint(t *testing.T) {
	r := newTestRouter(llm.NewMockProvider())

	rr, body := doJSON(t, r, http.MethodPost, "/analysis/session/initialize", `{"session_id":"sess-1"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if body["status"] != "success" {
		t.Errorf("status = %v", body["status"])
	}
	if body["message"] != "Session analysis initialized" {
		t.Errorf("message = %v", body["message"])
	}
	if id, _ := body["report_id"].(string); id == "" {
		t.Error("expected a report_id")
	}

	info, ok := body["session_info"].(map[string]any)
	if !ok {
		t.Fatalf("missing session_info in %v", body)
	}
	if info["child_name"] != "Elif" {
		t.Errorf("child_name = %v, want Elif", info["child_name"])
	}
	if info["lesson_name"] != "Renkler" {
		t.Errorf("lesson_name = %v, want Renkler", info["lesson_name"])
	}
}

func TestInitializeEndpointSessionMissing(t *testing.T) {
	r := newTestRouter(llm.NewMockProvider())

	rr, body := doJSON(t, r, http.MethodPost, "/analysis/session/initialize", `{"session_id":"ghost"}`)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rr.Code)
	}
	if body["error"] != "Session not found" {
		t.Errorf("error = %v", body["error"])
	}
}

func TestInitializeEndpointConflict(t *testing.T) {
	r := newTestRouter(llm.NewMockProvider())
	initializeSession(t, r)

	rr, body := doJSON(t, r, http.MethodPost, "/analysis/session/initialize", `{"session_id":"sess-1"}`)
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", rr.Code)
	}
	if body["error"] != "Session analysis already initialized" {
		t.Errorf("error = %v", body["error"])
	}
}

func TestInitializeEndpointValidation(t *testing.T) {
	r := newTestRouter(llm.NewMockProvider())

	rr, body := doJSON(t, r, http.MethodPost, "/analysis/session/initialize", `{}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
	if body["error"] != "session_id is required" {
		t.Errorf("error = %v", body["error"])
	}

	rr, body = doJSON(t, r, http.MethodPost, "/analysis/session/initialize", `{broken`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for malformed JSON, got %d", rr.Code)
	}
	if body["error"] != "invalid request body" {
		t.Errorf("error = %v", body["error"])
	}
}

func TestAnalyzeStepEndpoint(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Text: "Quiz çok iyi geçti."})
	r := newTestRouter(mock)
	initializeSession(t, r)

	reqBody := `{"session_id":"sess-1","step_result":{"step_id":3,"step_type":"AI_QUIZ","is_successful":true,"duration_seconds":30}}`
	rr, body := doJSON(t, r, http.MethodPost, "/analysis/session/analyze-step", reqBody)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if body["message"] != "Step 3 analysis completed" {
		t.Errorf("message = %v", body["message"])
	}

	result, ok := body["analysis"].(map[string]any)
	if !ok {
		t.Fatalf("missing analysis in %v", body)
	}
	if result["analysis"] != "Quiz çok iyi geçti." {
		t.Errorf("analysis text = %v", result["analysis"])
	}
	if score, _ := result["performance_score"].(float64); score != 80 {
		t.Errorf("performance_score = %v, want 80", result["performance_score"])
	}
	if result["step_type"] != "AI_QUIZ" {
		t.Errorf("step_type = %v", result["step_type"])
	}
}

func TestAnalyzeStepEndpointDegradedStill200(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrProviderUnavailable{}})
	r := newTestRouter(mock)
	initializeSession(t, r)

	reqBody := `{"session_id":"sess-1","step_result":{"step_id":1,"step_type":"AI_QUIZ","is_successful":true}}`
	rr, body := doJSON(t, r, http.MethodPost, "/analysis/session/analyze-step", reqBody)
	if rr.Code != http.StatusOK {
		t.Fatalf("LLM failure should still answer 200, got %d: %s", rr.Code, rr.Body.String())
	}

	result := body["analysis"].(map[string]any)
	text, _ := result["analysis"].(string)
	if !strings.HasPrefix(text, "Analiz hatası: ") {
		t.Errorf("analysis text = %q, want degraded prefix", text)
	}
	if score, _ := result["performance_score"].(float64); score != 0 {
		t.Errorf("performance_score = %v, want 0", result["performance_score"])
	}
}

func TestAnalyzeStepEndpointValidation(t *testing.T) {
	r := newTestRouter(llm.NewMockProvider())
	initializeSession(t, r)

	rr, body := doJSON(t, r, http.MethodPost, "/analysis/session/analyze-step", `{"step_result":{"step_id":1,"step_type":"AI_QUIZ"}}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
	if body["error"] != "session_id is required" {
		t.Errorf("error = %v", body["error"])
	}

	rr, body = doJSON(t, r, http.MethodPost, "/analysis/session/analyze-step", `{"session_id":"sess-1","step_result":{"step_id":1}}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
	if body["error"] != "step_result.step_type is required" {
		t.Errorf("error = %v", body["error"])
	}
}

func TestAnalyzeStepEndpointWithoutReport(t *testing.T) {
	r := newTestRouter(llm.NewMockProvider())

	reqBody := `{"session_id":"sess-1","step_result":{"step_id":1,"step_type":"AI_QUIZ"}}`
	rr, body := doJSON(t, r, http.MethodPost, "/analysis/session/analyze-step", reqBody)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rr.Code)
	}
	if body["error"] != "LLM report not found" {
		t.Errorf("error = %v", body["error"])
	}
}

func TestGetReportEndpoint(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Text: "Adım analizi."})
	r := newTestRouter(mock)
	initializeSession(t, r)

	reqBody := `{"session_id":"sess-1","step_result":{"step_id":2,"step_type":"AI_CV_GAME","is_successful":true,"duration_seconds":90}}`
	if rr, _ := doJSON(t, r, http.MethodPost, "/analysis/session/analyze-step", reqBody); rr.Code != http.StatusOK {
		t.Fatalf("analyze-step failed: %d", rr.Code)
	}

	rr, body := doJSON(t, r, http.MethodGet, "/analysis/session/sess-1/report", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	report, ok := body["report"].(map[string]any)
	if !ok {
		t.Fatalf("missing report in %v", body)
	}
	if report["session_id"] != "sess-1" {
		t.Errorf("session_id = %v", report["session_id"])
	}
	if id, _ := report["_id"].(string); id == "" {
		t.Error("expected a string report id")
	}

	stepReports := report["step_reports"].(map[string]any)
	gameReports := stepReports["game_reports"].(map[string]any)
	if _, ok := gameReports["step_2"]; !ok {
		t.Errorf("expected game_reports/step_2, got %v", stepReports)
	}
}

func TestGetReportEndpointMissing(t *testing.T) {
	r := newTestRouter(llm.NewMockProvider())

	rr, body := doJSON(t, r, http.MethodGet, "/analysis/session/sess-1/report", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rr.Code)
	}
	if body["error"] != "Report not found" {
		t.Errorf("error = %v", body["error"])
	}
}

func TestFinalizeEndpoint(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResponse{Text: "Genel değerlendirme.\nÖneri: sesli okuma çalışması yaptırın."},
	)
	r := newTestRouter(mock)
	initializeSession(t, r)

	rr, body := doJSON(t, r, http.MethodPost, "/analysis/session/sess-1/finalize", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if body["message"] != "Session analysis finalized" {
		t.Errorf("message = %v", body["message"])
	}

	final, ok := body["final_analysis"].(map[string]any)
	if !ok {
		t.Fatalf("missing final_analysis in %v", body)
	}
	if score, _ := final["overall_score"].(float64); score != 85 {
		t.Errorf("overall_score = %v, want 85", final["overall_score"])
	}
	suggestions, _ := final["suggestions"].([]any)
	if len(suggestions) != 1 {
		t.Errorf("suggestions = %v, want 1 entry", final["suggestions"])
	}
}

func TestFinalizeEndpointWithoutReport(t *testing.T) {
	r := newTestRouter(llm.NewMockProvider())

	rr, body := doJSON(t, r, http.MethodPost, "/analysis/session/sess-1/finalize", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rr.Code)
	}
	if body["error"] != "LLM report not found" {
		t.Errorf("error = %v", body["error"])
	}
}

func TestSummarizeEndpoint(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Text: "Ders güzel geçti."})
	r := newTestRouter(mock)

	rr, body := doJSON(t, r, http.MethodGet, "/analyze/sess-1", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if body["session_id"] != "sess-1" {
		t.Errorf("session_id = %v", body["session_id"])
	}
	if body["summary"] != "Ders güzel geçti." {
		t.Errorf("summary = %v", body["summary"])
	}

	metrics, ok := body["metrics"].(map[string]any)
	if !ok {
		t.Fatalf("missing metrics in %v", body)
	}
	if total, _ := metrics["total_steps"].(float64); total != 1 {
		t.Errorf("total_steps = %v, want 1", metrics["total_steps"])
	}
	if completed, _ := metrics["completed_steps"].(float64); completed != 1 {
		t.Errorf("completed_steps = %v, want 1", metrics["completed_steps"])
	}
}

func TestSummarizeEndpointSessionMissing(t *testing.T) {
	r := newTestRouter(llm.NewMockProvider())

	rr, body := doJSON(t, r, http.MethodGet, "/analyze/ghost", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rr.Code)
	}
	if body["error"] != "Session not found" {
		t.Errorf("error = %v", body["error"])
	}
}

func TestHealthEndpoint(t *testing.T) {
	r := newTestRouter(llm.NewMockProvider())

	rr, body := doJSON(t, r, http.MethodGet, "/health", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if body["status"] != "healthy" {
		t.Errorf("status = %v", body["status"])
	}
	checks := body["checks"].(map[string]any)
	if checks["store"] != "ok" {
		t.Errorf("store check = %v", checks["store"])
	}
}
