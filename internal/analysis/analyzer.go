package analysis

import (
	"context"
	"log/slog"
	"time"

	"github.com/kardelen-edu/insight/internal/domain"
	"github.com/kardelen-edu/insight/internal/llm"
)

// Token budgets per generation purpose.
const (
	stepMaxTokens    = 400
	finalMaxTokens   = 600
	summaryMaxTokens = 300

	analysisTemperature = 0.7
)

// Degraded content stands in when generation fails. The report stays
// usable and the failed call is visible in it.
const degradedSuggestion = "Teknik hata nedeniyle öneri üretilemedi"

// Analyzer generates pedagogical feedback through the LLM. Generation
// failures degrade to placeholder content; they never surface as errors.
type Analyzer struct {
	provider llm.Provider
}

// NewAnalyzer creates an Analyzer on top of the given provider.
func NewAnalyzer(provider llm.Provider) *Analyzer {
	return &Analyzer{provider: provider}
}

// AnalyzeStep generates feedback for one completed step. On failure the
// analysis text carries the error and the score is zero.
func (a *Analyzer) AnalyzeStep(ctx context.Context, pc promptContext, result domain.StepResult) domain.StepAnalysis {
	analysis := domain.StepAnalysis{
		StepID:      result.StepID,
		StepType:    result.StepType,
		GeneratedAt: time.Now().UTC(),
	}

	text, err := a.generateStepText(ctx, pc, result)
	if err != nil {
		slog.Warn("Step analysis degraded", "step_id", result.StepID, "step_type", result.StepType, "error", err)
		analysis.Analysis = "Analiz hatası: " + err.Error()
		analysis.PerformanceScore = 0
		return analysis
	}

	analysis.Analysis = text
	analysis.PerformanceScore = StepScore(result)
	return analysis
}

func (a *Analyzer) generateStepText(ctx context.Context, pc promptContext, result domain.StepResult) (string, error) {
	prompt, err := buildStepPrompt(pc, result)
	if err != nil {
		return "", err
	}

	resp, err := a.provider.Generate(llm.WithPurpose(ctx, "step-analysis"), llm.Request{
		System:      stepSystemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: prompt}},
		MaxTokens:   stepMaxTokens,
		Temperature: analysisTemperature,
	})
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

// AnalyzeSession generates the whole-session assessment over the
// accumulated step reports. On failure the final report carries the error,
// the suggestion list holds a single placeholder and the score is zero.
func (a *Analyzer) AnalyzeSession(ctx context.Context, pc promptContext, session *domain.Session, reports domain.StepReports) domain.FinalAnalysis {
	final := domain.FinalAnalysis{GeneratedAt: time.Now().UTC()}

	text, err := a.generateFinalText(ctx, pc, session, reports)
	if err != nil {
		slog.Warn("Final analysis degraded", "session_id", session.ID, "error", err)
		final.FinalReport = "Final analiz hatası: " + err.Error()
		final.Suggestions = []string{degradedSuggestion}
		final.OverallScore = 0
		return final
	}

	final.FinalReport = text
	final.Suggestions = ExtractSuggestions(text)
	final.OverallScore = OverallScore(session)
	return final
}

func (a *Analyzer) generateFinalText(ctx context.Context, pc promptContext, session *domain.Session, reports domain.StepReports) (string, error) {
	prompt, err := buildFinalPrompt(pc, session, reports)
	if err != nil {
		return "", err
	}

	resp, err := a.provider.Generate(llm.WithPurpose(ctx, "final-analysis"), llm.Request{
		System:      finalSystemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: prompt}},
		MaxTokens:   finalMaxTokens,
		Temperature: analysisTemperature,
	})
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

// SummarizeSession produces the lightweight dashboard summary: metrics
// computed locally plus one LLM paragraph. On failure the summary falls
// back to the runner's own report text when it has one.
func (a *Analyzer) SummarizeSession(ctx context.Context, session *domain.Session) domain.SessionSummary {
	return domain.SessionSummary{
		SessionID: session.ID,
		Summary:   a.generateSummaryText(ctx, session),
		Metrics:   MetricsFor(session),
	}
}

func (a *Analyzer) generateSummaryText(ctx context.Context, session *domain.Session) string {
	prompt, err := buildSummaryPrompt(session)
	if err == nil {
		var resp *llm.Response
		resp, err = a.provider.Generate(llm.WithPurpose(ctx, "session-summary"), llm.Request{
			System:      summarySystemPrompt,
			Messages:    []llm.Message{{Role: llm.RoleUser, Content: prompt}},
			MaxTokens:   summaryMaxTokens,
			Temperature: analysisTemperature,
		})
		if err == nil {
			return resp.Text
		}
	}

	slog.Warn("Session summary degraded", "session_id", session.ID, "error", err)
	if session.LLMAnalysisReport != "" {
		return session.LLMAnalysisReport
	}
	return "LLM analysis failed. Using original summary."
}
