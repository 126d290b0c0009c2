package analysis

import (
	"testing"

	"github.com/kardelen-edu/insight/internal/domain"
)

func boolPtr(v bool) *bool { return &v }
func intPtr(v int) *int    { return &v }

func TestStepScore(t *testing.T) {
	tests := []struct {
		name     string
		success  *bool
		duration *int
		want     int
	}{
		{"success normal pace", boolPtr(true), intPtr(120), 100},
		{"failure normal pace", boolPtr(false), intPtr(120), 30},
		{"success rushed", boolPtr(true), intPtr(30), 80},
		{"success slow", boolPtr(true), intPtr(400), 90},
		{"failure rushed", boolPtr(false), intPtr(30), 24},
		{"failure slow", boolPtr(false), intPtr(400), 27},
		{"success unknown duration", boolPtr(true), nil, 100},
		{"failure unknown duration", boolPtr(false), nil, 30},
		{"unknown outcome", nil, intPtr(120), 0},
		{"zero duration counts as rushed", boolPtr(true), intPtr(0), 80},
		{"exactly one minute", boolPtr(true), intPtr(60), 100},
		{"exactly five minutes", boolPtr(true), intPtr(300), 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := domain.StepResult{
				StepID:          1,
				StepType:        domain.StepTypeQuiz,
				IsSuccessful:    tt.success,
				DurationSeconds: tt.duration,
			}
			if got := StepScore(result); got != tt.want {
				t.Errorf("StepScore() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestOverallScore(t *testing.T) {
	if got := OverallScore(&domain.Session{TotalScore: intPtr(85)}); got != 85 {
		t.Errorf("OverallScore = %d, want 85", got)
	}
	if got := OverallScore(&domain.Session{}); got != 0 {
		t.Errorf("OverallScore without total = %d, want 0", got)
	}
	if got := OverallScore(nil); got != 0 {
		t.Errorf("OverallScore(nil) = %d, want 0", got)
	}
}

func TestMetricsFor(t *testing.T) {
	session := &domain.Session{
		StepResults: []domain.StepResult{
			{StepID: 1, IsSuccessful: boolPtr(true), DurationSeconds: intPtr(90)},
			{StepID: 2, IsSuccessful: boolPtr(false), DurationSeconds: intPtr(60)},
			{StepID: 3, IsSuccessful: boolPtr(true)}, // duration unknown
			{StepID: 4},                              // outcome unknown
		},
	}

	m := MetricsFor(session)
	if m.TotalSteps != 4 {
		t.Errorf("TotalSteps = %d, want 4", m.TotalSteps)
	}
	if m.CompletedSteps != 2 {
		t.Errorf("CompletedSteps = %d, want 2", m.CompletedSteps)
	}
	if m.AverageStepDuration != 37.5 {
		t.Errorf("AverageStepDuration = %v, want 37.5", m.AverageStepDuration)
	}
}

func TestMetricsForEmptySession(t *testing.T) {
	m := MetricsFor(&domain.Session{})
	if m.TotalSteps != 0 || m.CompletedSteps != 0 || m.AverageStepDuration != 0 {
		t.Errorf("expected zero metrics, got %+v", m)
	}
}
