// Package domain contains core domain types for the insight service.
package domain

import (
	"time"
)

// Step types emitted by the session runner.
const (
	StepTypeConversation = "AI_CONVERSATION"
	StepTypeCVGame       = "AI_CV_GAME"
	StepTypeQuiz         = "AI_QUIZ"
)

// KnownStepType reports whether t is one of the step types the session
// runner emits.
func KnownStepType(t string) bool {
	switch t {
	case StepTypeConversation, StepTypeCVGame, StepTypeQuiz:
		return true
	}
	return false
}

// StepResult is one completed lesson step as reported by the session runner.
// Results are immutable once received; a repeated step arrives as a new
// StepResult with the same step ID.
type StepResult struct {
	StepID          int            `bson:"step_id" json:"step_id"`
	StepType        string         `bson:"step_type" json:"step_type"`
	IsSuccessful    *bool          `bson:"is_successful,omitempty" json:"is_successful,omitempty"`
	DurationSeconds *int           `bson:"duration_seconds,omitempty" json:"duration_seconds,omitempty"`
	Details         map[string]any `bson:"details,omitempty" json:"details,omitempty"`
}

// Session is a lesson session owned by the session runner. This service
// only ever reads sessions; all writes happen upstream.
type Session struct {
	ID                string       `json:"id"`
	LessonID          string       `json:"lesson_id"`
	ChildID           string       `json:"child_id"`
	StartedAt         time.Time    `json:"started_at"`
	CompletedAt       *time.Time   `json:"completed_at,omitempty"`
	Status            string       `json:"status"`
	TotalScore        *int         `json:"total_score,omitempty"`
	StepResults       []StepResult `json:"step_results"`
	LLMAnalysisStatus string       `json:"llm_analysis_status,omitempty"`
	LLMAnalysisReport string       `json:"llm_analysis_report,omitempty"`
}

// SessionMetrics summarizes step activity for one session.
type SessionMetrics struct {
	TotalSteps          int     `json:"total_steps"`
	CompletedSteps      int     `json:"completed_steps"`
	AverageStepDuration float64 `json:"average_step_duration"`
}

// SessionSummary is the lightweight dashboard view of a session.
type SessionSummary struct {
	SessionID string         `json:"session_id"`
	Summary   string         `json:"summary"`
	Metrics   SessionMetrics `json:"metrics"`
}
