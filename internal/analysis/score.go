// Package analysis turns session-runner events into pedagogical feedback:
// deterministic scores plus LLM-generated Turkish report text.
package analysis

import (
	"github.com/kardelen-edu/insight/internal/domain"
)

// StepScore rates a single step result on a 0-100 scale without consulting
// the LLM, so a score is available even when generation fails.
//
// An unknown outcome scores 0. Success starts at 100, failure at 30. A
// known duration under a minute discounts the base to 80%, one over five
// minutes to 90%; an unknown duration is not penalized.
func StepScore(result domain.StepResult) int {
	if result.IsSuccessful == nil {
		return 0
	}

	score := 30.0
	if *result.IsSuccessful {
		score = 100.0
	}

	if result.DurationSeconds != nil {
		switch d := *result.DurationSeconds; {
		case d < 60:
			score *= 0.8
		case d > 300:
			score *= 0.9
		}
	}

	n := int(score)
	if n > 100 {
		n = 100
	}
	if n < 0 {
		n = 0
	}
	return n
}

// OverallScore rates the whole session. The session runner's accumulated
// total is authoritative; a session without one scores 0.
func OverallScore(session *domain.Session) int {
	if session == nil || session.TotalScore == nil {
		return 0
	}
	return *session.TotalScore
}

// MetricsFor summarizes step activity for a session. Completed counts only
// steps whose outcome is known to be successful; unknown durations count
// as zero toward the average.
func MetricsFor(session *domain.Session) domain.SessionMetrics {
	m := domain.SessionMetrics{TotalSteps: len(session.StepResults)}

	var totalDuration int
	for _, step := range session.StepResults {
		if step.IsSuccessful != nil && *step.IsSuccessful {
			m.CompletedSteps++
		}
		if step.DurationSeconds != nil {
			totalDuration += *step.DurationSeconds
		}
	}

	if m.TotalSteps > 0 {
		m.AverageStepDuration = float64(totalDuration) / float64(m.TotalSteps)
	}
	return m
}
