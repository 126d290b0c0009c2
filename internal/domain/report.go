package domain

import (
	"fmt"
	"time"
)

// AnalysisReport accumulates LLM feedback for one session. Exactly one
// report exists per session; it is created empty when analysis starts and
// grows as steps complete.
type AnalysisReport struct {
	ID          string      `json:"_id"`
	SessionID   string      `json:"session_id"`
	ChildID     string      `json:"child_id"`
	StepReports StepReports `json:"step_reports"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
	FinalizedAt *time.Time  `json:"finalized_at,omitempty"`
}

// StepReports groups step analyses by step category, plus the final
// whole-session report and its extracted suggestions.
type StepReports struct {
	Voice       map[string]StepAnalysis `bson:"voice_reports" json:"voice_reports"`
	Game        map[string]StepAnalysis `bson:"game_reports" json:"game_reports"`
	Test        map[string]StepAnalysis `bson:"test_reports" json:"test_reports"`
	FinalReport string                  `bson:"final_report" json:"final_report"`
	Suggestions []string                `bson:"suggestion" json:"suggestion"`
}

// NewStepReports returns an empty report set with allocated buckets.
func NewStepReports() StepReports {
	return StepReports{
		Voice: make(map[string]StepAnalysis),
		Game:  make(map[string]StepAnalysis),
		Test:  make(map[string]StepAnalysis),
	}
}

// Bucket returns the category map for the given step type, or nil when the
// step type has no bucket.
func (r *StepReports) Bucket(stepType string) map[string]StepAnalysis {
	switch stepType {
	case StepTypeConversation:
		if r.Voice == nil {
			r.Voice = make(map[string]StepAnalysis)
		}
		return r.Voice
	case StepTypeCVGame:
		if r.Game == nil {
			r.Game = make(map[string]StepAnalysis)
		}
		return r.Game
	case StepTypeQuiz:
		if r.Test == nil {
			r.Test = make(map[string]StepAnalysis)
		}
		return r.Test
	}
	return nil
}

// StepKey returns the bucket key for a step ID. A key is stable across
// repeated attempts of the same step, so the latest attempt wins.
func StepKey(stepID int) string {
	return fmt.Sprintf("step_%d", stepID)
}

// StepAnalysis is the LLM feedback for a single step.
type StepAnalysis struct {
	StepID           int       `bson:"step_id" json:"step_id"`
	StepType         string    `bson:"step_type" json:"step_type"`
	Analysis         string    `bson:"analysis" json:"analysis"`
	PerformanceScore int       `bson:"performance_score" json:"performance_score"`
	GeneratedAt      time.Time `bson:"generated_at" json:"generated_at"`
}

// FinalAnalysis is the whole-session assessment produced at finalize time.
// Only FinalReport and Suggestions are folded into the stored report; the
// rest is returned to the caller.
type FinalAnalysis struct {
	FinalReport  string    `json:"final_report"`
	Suggestions  []string  `json:"suggestions"`
	OverallScore int       `json:"overall_score"`
	GeneratedAt  time.Time `json:"generated_at"`
}
