package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kardelen-edu/insight/internal/analysis"
	"github.com/kardelen-edu/insight/internal/domain"
)

// AnalysisHandler handles session analysis endpoints.
type AnalysisHandler struct {
	workflow *analysis.Workflow
}

// NewAnalysisHandler creates a new analysis handler.
func NewAnalysisHandler(workflow *analysis.Workflow) *AnalysisHandler {
	return &AnalysisHandler{workflow: workflow}
}

// RegisterRoutes registers analysis routes.
func (h *AnalysisHandler) RegisterRoutes(r chi.Router) {
	r.Route("/analysis/session", func(r chi.Router) {
		r.Post("/initialize", h.Initialize)
		r.Post("/analyze-step", h.AnalyzeStep)
		r.Get("/{session_id}/report", h.GetReport)
		r.Post("/{session_id}/finalize", h.Finalize)
	})
	r.Get("/analyze/{session_id}", h.Summarize)
}

type initializeRequest struct {
	SessionID string `json:"session_id"`
}

type analyzeStepRequest struct {
	SessionID  string            `json:"session_id"`
	StepResult domain.StepResult `json:"step_result"`
}

// Initialize creates the analysis report when a session starts.
func (h *AnalysisHandler) Initialize(w http.ResponseWriter, r *http.Request) {
	var req initializeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.SessionID == "" {
		Error(w, http.StatusBadRequest, "session_id is required")
		return
	}

	res, err := h.workflow.Initialize(r.Context(), req.SessionID)
	if err != nil {
		writeWorkflowError(w, err)
		return
	}

	JSON(w, http.StatusOK, map[string]interface{}{
		"status":    "success",
		"message":   "Session analysis initialized",
		"report_id": res.ReportID,
		"session_info": map[string]string{
			"child_name":  res.ChildName,
			"lesson_name": res.LessonName,
		},
	})
}

// AnalyzeStep records a completed step and returns its analysis. An LLM
// failure still answers 200 with a degraded analysis.
func (h *AnalysisHandler) AnalyzeStep(w http.ResponseWriter, r *http.Request) {
	var req analyzeStepRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.SessionID == "" {
		Error(w, http.StatusBadRequest, "session_id is required")
		return
	}
	if req.StepResult.StepType == "" {
		Error(w, http.StatusBadRequest, "step_result.step_type is required")
		return
	}

	stepAnalysis, err := h.workflow.RecordStep(r.Context(), req.SessionID, req.StepResult)
	if err != nil {
		writeWorkflowError(w, err)
		return
	}

	JSON(w, http.StatusOK, map[string]interface{}{
		"status":   "success",
		"message":  fmt.Sprintf("Step %d analysis completed", req.StepResult.StepID),
		"analysis": stepAnalysis,
	})
}

// GetReport returns the current analysis report for a session.
func (h *AnalysisHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "session_id")

	report, err := h.workflow.Report(r.Context(), sessionID)
	if errors.Is(err, analysis.ErrReportNotFound) {
		Error(w, http.StatusNotFound, "Report not found")
		return
	}
	if err != nil {
		slog.Error("Failed to load report", "session_id", sessionID, "error", err)
		Error(w, http.StatusInternalServerError, err.Error())
		return
	}

	JSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"report": report,
	})
}

// Finalize generates the whole-session assessment when a session ends.
func (h *AnalysisHandler) Finalize(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "session_id")

	final, err := h.workflow.Finalize(r.Context(), sessionID)
	if err != nil {
		writeWorkflowError(w, err)
		return
	}

	JSON(w, http.StatusOK, map[string]interface{}{
		"status":         "success",
		"message":        "Session analysis finalized",
		"final_analysis": final,
	})
}

// Summarize returns the lightweight session summary used by dashboards.
func (h *AnalysisHandler) Summarize(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "session_id")

	summary, err := h.workflow.Summarize(r.Context(), sessionID)
	if err != nil {
		writeWorkflowError(w, err)
		return
	}

	JSON(w, http.StatusOK, summary)
}

// decodeBody decodes a JSON request body, answering 400 on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, defaultMaxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// writeWorkflowError maps workflow condition errors onto HTTP statuses.
// Unmapped errors surface as 500 with the error text.
func writeWorkflowError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, analysis.ErrSessionNotFound):
		Error(w, http.StatusNotFound, "Session not found")
	case errors.Is(err, analysis.ErrReportNotFound):
		Error(w, http.StatusNotFound, "LLM report not found")
	case errors.Is(err, analysis.ErrReportExists):
		Error(w, http.StatusConflict, "Session analysis already initialized")
	case errors.Is(err, analysis.ErrUnknownStepType):
		Error(w, http.StatusBadRequest, err.Error())
	default:
		slog.Error("Analysis request failed", "error", err)
		Error(w, http.StatusInternalServerError, err.Error())
	}
}
