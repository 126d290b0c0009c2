package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/kardelen-edu/insight/internal/domain"
	"github.com/kardelen-edu/insight/internal/store"
)

// Workflow condition errors, mapped to HTTP statuses by the API layer.
var (
	// ErrSessionNotFound indicates the session runner has no such session.
	ErrSessionNotFound = errors.New("session not found")

	// ErrReportNotFound indicates analysis was never initialized for the
	// session.
	ErrReportNotFound = errors.New("analysis report not found")

	// ErrReportExists indicates analysis was already initialized for the
	// session.
	ErrReportExists = errors.New("analysis report already exists")

	// ErrUnknownStepType is returned in strict mode for step types the
	// session runner does not emit.
	ErrUnknownStepType = errors.New("unknown step type")
)

// Workflow drives the lifecycle of a session's analysis report:
// initialize, record steps, finalize, read. A report moves only forward
// through that lifecycle; finalize may run repeatedly and overwrites.
type Workflow struct {
	sessions        store.SessionStore
	reports         store.ReportStore
	analyzer        *Analyzer
	strictStepTypes bool
}

// NewWorkflow creates a Workflow over the given stores and analyzer. With
// strictStepTypes set, unknown step types are rejected instead of being
// recorded as degraded analyses.
func NewWorkflow(sessions store.SessionStore, reports store.ReportStore, analyzer *Analyzer, strictStepTypes bool) *Workflow {
	return &Workflow{
		sessions:        sessions,
		reports:         reports,
		analyzer:        analyzer,
		strictStepTypes: strictStepTypes,
	}
}

// InitResult is the outcome of starting a session analysis.
type InitResult struct {
	ReportID   string
	ChildName  string
	LessonName string
}

// Initialize creates the empty analysis report for a session. The session
// must exist; a session with a report already cannot be initialized again.
func (w *Workflow) Initialize(ctx context.Context, sessionID string) (*InitResult, error) {
	session, err := w.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	child, lesson := w.lookupContext(ctx, session)

	now := time.Now().UTC()
	report := &domain.AnalysisReport{
		SessionID:   sessionID,
		ChildID:     session.ChildID,
		StepReports: domain.NewStepReports(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := w.reports.InsertReport(ctx, report); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, ErrReportExists
		}
		return nil, fmt.Errorf("insert report: %w", err)
	}

	slog.Info("Session analysis initialized", "session_id", sessionID, "report_id", report.ID)

	pc := buildPromptContext(child, lesson)
	return &InitResult{
		ReportID:   report.ID,
		ChildName:  pc.ChildName,
		LessonName: pc.LessonName,
	}, nil
}

// RecordStep analyzes one completed step and folds the result into the
// session's report. The analysis itself never fails; an LLM error produces
// a degraded record. A repeated step ID overwrites the earlier entry.
func (w *Workflow) RecordStep(ctx context.Context, sessionID string, result domain.StepResult) (*domain.StepAnalysis, error) {
	session, err := w.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	report, err := w.loadReport(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if w.strictStepTypes && !domain.KnownStepType(result.StepType) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStepType, result.StepType)
	}

	child, lesson := w.lookupContext(ctx, session)
	stepAnalysis := w.analyzer.AnalyzeStep(ctx, buildPromptContext(child, lesson), result)

	if bucket := report.StepReports.Bucket(result.StepType); bucket != nil {
		bucket[domain.StepKey(result.StepID)] = stepAnalysis
	} else {
		slog.Warn("Step type has no report bucket, analysis not stored",
			"session_id", sessionID, "step_type", result.StepType)
	}

	report.UpdatedAt = time.Now().UTC()
	if err := w.updateReport(ctx, report); err != nil {
		return nil, err
	}

	slog.Info("Step analysis recorded",
		"session_id", sessionID,
		"step_id", result.StepID,
		"step_type", result.StepType,
		"score", stepAnalysis.PerformanceScore)

	return &stepAnalysis, nil
}

// Finalize generates the whole-session assessment over everything recorded
// so far and stamps the report finalized. Running it again overwrites the
// previous final report and suggestions.
func (w *Workflow) Finalize(ctx context.Context, sessionID string) (*domain.FinalAnalysis, error) {
	session, err := w.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	report, err := w.loadReport(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	child, lesson := w.lookupContext(ctx, session)
	final := w.analyzer.AnalyzeSession(ctx, buildPromptContext(child, lesson), session, report.StepReports)

	now := time.Now().UTC()
	report.StepReports.FinalReport = final.FinalReport
	report.StepReports.Suggestions = final.Suggestions
	report.FinalizedAt = &now
	report.UpdatedAt = now
	if err := w.updateReport(ctx, report); err != nil {
		return nil, err
	}

	slog.Info("Session analysis finalized",
		"session_id", sessionID,
		"overall_score", final.OverallScore,
		"suggestions", len(final.Suggestions))

	return &final, nil
}

// Report returns the current analysis report for a session.
func (w *Workflow) Report(ctx context.Context, sessionID string) (*domain.AnalysisReport, error) {
	return w.loadReport(ctx, sessionID)
}

// Summarize produces the lightweight session summary. It needs only the
// session itself, not an analysis report.
func (w *Workflow) Summarize(ctx context.Context, sessionID string) (*domain.SessionSummary, error) {
	session, err := w.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	summary := w.analyzer.SummarizeSession(ctx, session)
	return &summary, nil
}

func (w *Workflow) loadSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	session, err := w.sessions.GetSession(ctx, sessionID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return session, nil
}

func (w *Workflow) loadReport(ctx context.Context, sessionID string) (*domain.AnalysisReport, error) {
	report, err := w.reports.GetReportBySession(ctx, sessionID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrReportNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load report: %w", err)
	}
	return report, nil
}

func (w *Workflow) updateReport(ctx context.Context, report *domain.AnalysisReport) error {
	err := w.reports.UpdateReport(ctx, report)
	if errors.Is(err, store.ErrNotFound) {
		return ErrReportNotFound
	}
	if err != nil {
		return fmt.Errorf("update report: %w", err)
	}
	return nil
}

// lookupContext fetches the child and lesson referenced by a session.
// Missing documents are expected (the fixture backend has none); lookup
// failures degrade to missing rather than failing the operation.
func (w *Workflow) lookupContext(ctx context.Context, session *domain.Session) (*domain.Child, *domain.Lesson) {
	child, err := w.sessions.GetChild(ctx, session.ChildID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		slog.Warn("Child lookup failed", "child_id", session.ChildID, "error", err)
	}

	lesson, err := w.sessions.GetLesson(ctx, session.LessonID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		slog.Warn("Lesson lookup failed", "lesson_id", session.LessonID, "error", err)
	}

	return child, lesson
}

func buildPromptContext(child *domain.Child, lesson *domain.Lesson) promptContext {
	pc := promptContext{ChildName: "Unknown", ChildAge: "Unknown", LessonName: "Unknown"}
	if child != nil {
		if child.Name != "" {
			pc.ChildName = child.Name
		}
		if age, ok := child.AgeAt(time.Now()); ok {
			pc.ChildAge = strconv.Itoa(age)
		}
	}
	if lesson != nil && lesson.Name != "" {
		pc.LessonName = lesson.Name
	}
	return pc
}
