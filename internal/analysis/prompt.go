package analysis

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/kardelen-edu/insight/internal/domain"
)

// Report text is generated in Turkish; it is shown to parents and teachers
// as-is. The summary endpoint keeps its English framing with Turkish output.
const (
	stepSystemPrompt    = "Sen eğitim uzmanısın. Çocukların öğrenme performansını analiz ediyorsun."
	finalSystemPrompt   = "Sen çocuk eğitimi uzmanısın. Kapsamlı öğrenme değerlendirmeleri yapıyorsun."
	summarySystemPrompt = "You are an educational assessment expert. Analyze session data and provide insights in Turkish."
)

// promptContext carries the denormalized names rendered into prompts.
// Missing context renders as "Unknown" rather than failing the analysis.
type promptContext struct {
	ChildName  string
	ChildAge   string
	LessonName string
}

// stepRubrics gives each step type its headline and evaluation points.
var stepRubrics = map[string]struct {
	Headline string
	Points   []string
}{
	domain.StepTypeConversation: {
		Headline: "Çocuğun ses etkileşimi performansını analiz et:",
		Points: []string{
			"Çocuğun katılım düzeyi",
			"İletişim becerileri",
			"Öğrenme göstergeleri",
			"Öneriler",
		},
	},
	domain.StepTypeCVGame: {
		Headline: "Çocuğun görsel oyun performansını analiz et:",
		Points: []string{
			"Görsel algı becerileri",
			"El-göz koordinasyonu",
			"Problem çözme yaklaşımı",
			"Öneriler",
		},
	},
	domain.StepTypeQuiz: {
		Headline: "Çocuğun quiz performansını analiz et:",
		Points: []string{
			"Anlama düzeyi",
			"Doğru cevap oranı",
			"Kavram öğrenme durumu",
			"Öneriler",
		},
	},
}

// buildStepPrompt renders the per-step analysis request. The step type
// picks both the headline and the evaluation rubric.
func buildStepPrompt(pc promptContext, result domain.StepResult) (string, error) {
	rubric, ok := stepRubrics[result.StepType]
	if !ok {
		return "", fmt.Errorf("unknown step type: %q", result.StepType)
	}

	var b strings.Builder
	b.WriteString(rubric.Headline)
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("Çocuk: %s (Yaş: %s)\n", pc.ChildName, pc.ChildAge))
	b.WriteString(fmt.Sprintf("Ders: %s\n", pc.LessonName))
	b.WriteString(fmt.Sprintf("Adım: %d - %s\n", result.StepID, result.StepType))
	b.WriteString(fmt.Sprintf("Başarılı: %s\n", formatBool(result.IsSuccessful)))
	b.WriteString(fmt.Sprintf("Süre: %s saniye\n", formatInt(result.DurationSeconds)))
	b.WriteString(fmt.Sprintf("Detaylar: %s\n", formatDetails(result.Details)))

	b.WriteString("\nLütfen şunları değerlendir:\n")
	for i, point := range rubric.Points {
		b.WriteString(fmt.Sprintf("%d. %s\n", i+1, point))
	}

	return b.String(), nil
}

// buildFinalPrompt renders the whole-session assessment request over the
// accumulated step reports.
func buildFinalPrompt(pc promptContext, session *domain.Session, reports domain.StepReports) (string, error) {
	reportsJSON, err := json.Marshal(reports)
	if err != nil {
		return "", fmt.Errorf("marshal step reports: %w", err)
	}

	var b strings.Builder
	b.WriteString("Çocuğun genel öğrenme performansını analiz et:\n\n")
	b.WriteString(fmt.Sprintf("Çocuk: %s\n", pc.ChildName))
	b.WriteString(fmt.Sprintf("Ders: %s\n", pc.LessonName))
	b.WriteString(fmt.Sprintf("Genel Skor: %s\n", formatInt(session.TotalScore)))
	b.WriteString(fmt.Sprintf("Durum: %s\n", session.Status))
	b.WriteString(fmt.Sprintf("\nAdım Raporları: %s\n", reportsJSON))

	b.WriteString(`
Lütfen kapsamlı bir değerlendirme yap:
1. Genel performans özeti
2. Güçlü yönler
3. Gelişim alanları
4. Gelecek dersler için öneriler
5. Ebeveyn tavsiyeleri
`)

	return b.String(), nil
}

// buildSummaryPrompt renders the lightweight session summary request.
func buildSummaryPrompt(session *domain.Session) (string, error) {
	info := struct {
		SessionID   string              `json:"session_id"`
		LessonID    string              `json:"lesson_id"`
		ChildID     string              `json:"child_id"`
		Status      string              `json:"status"`
		TotalScore  *int                `json:"total_score"`
		StepResults []domain.StepResult `json:"step_results"`
	}{
		SessionID:   session.ID,
		LessonID:    session.LessonID,
		ChildID:     session.ChildID,
		Status:      session.Status,
		TotalScore:  session.TotalScore,
		StepResults: session.StepResults,
	}

	infoJSON, err := json.Marshal(info)
	if err != nil {
		return "", fmt.Errorf("marshal session info: %w", err)
	}

	var b strings.Builder
	b.WriteString("Analyze this educational session data and provide insights in Turkish:\n\n")
	b.WriteString(fmt.Sprintf("Session Data: %s\n", infoJSON))
	b.WriteString(`
Please provide:
1. Overall performance assessment
2. Areas of strength and weakness
3. Recommendations for improvement
4. Learning progress insights

Keep the response concise and educational-focused.`)

	return b.String(), nil
}

func formatBool(v *bool) string {
	if v == nil {
		return "unknown"
	}
	return strconv.FormatBool(*v)
}

func formatInt(v *int) string {
	if v == nil {
		return "unknown"
	}
	return strconv.Itoa(*v)
}

func formatDetails(details map[string]any) string {
	if len(details) == 0 {
		return "{}"
	}
	data, err := json.Marshal(details)
	if err != nil {
		return "{}"
	}
	return string(data)
}
