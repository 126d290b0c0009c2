package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/kardelen-edu/insight/internal/domain"
)

// FixtureSessions implements SessionStore over a JSON fixture file holding
// an array of session documents with string IDs. The file is re-read on
// every lookup, so edits are visible without a restart. Child and lesson
// lookups always miss; reports rendered against this backend carry
// "Unknown" names.
type FixtureSessions struct {
	path string
}

// NewFixtureSessions creates a fixture-backed session store reading from
// the given file path.
func NewFixtureSessions(path string) *FixtureSessions {
	return &FixtureSessions{path: path}
}

// fixtureSession mirrors the runner's export format, where timestamps are
// RFC 3339 strings.
type fixtureSession struct {
	ID                string              `json:"_id"`
	LessonID          string              `json:"lesson_id"`
	ChildID           string              `json:"child_id"`
	StartedAt         string              `json:"started_at"`
	CompletedAt       *string             `json:"completed_at"`
	Status            string              `json:"status"`
	TotalScore        *int                `json:"total_score"`
	StepResults       []domain.StepResult `json:"step_results"`
	LLMAnalysisStatus string              `json:"llm_analysis_status"`
	LLMAnalysisReport string              `json:"llm_analysis_report"`
}

func (d *fixtureSession) toDomain() *domain.Session {
	s := &domain.Session{
		ID:                d.ID,
		LessonID:          d.LessonID,
		ChildID:           d.ChildID,
		Status:            d.Status,
		TotalScore:        d.TotalScore,
		StepResults:       d.StepResults,
		LLMAnalysisStatus: d.LLMAnalysisStatus,
		LLMAnalysisReport: d.LLMAnalysisReport,
	}
	if t, err := time.Parse(time.RFC3339, d.StartedAt); err == nil {
		s.StartedAt = t
	}
	if d.CompletedAt != nil {
		if t, err := time.Parse(time.RFC3339, *d.CompletedAt); err == nil {
			s.CompletedAt = &t
		}
	}
	return s
}

// GetSession retrieves a session by its ID.
func (f *FixtureSessions) GetSession(_ context.Context, sessionID string) (*domain.Session, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read fixture file: %w", err)
	}

	var docs []fixtureSession
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("parse fixture file: %w", err)
	}

	for i := range docs {
		if docs[i].ID == sessionID {
			return docs[i].toDomain(), nil
		}
	}

	return nil, ErrNotFound
}

// GetChild always returns ErrNotFound; the fixture file carries sessions only.
func (f *FixtureSessions) GetChild(_ context.Context, _ string) (*domain.Child, error) {
	return nil, ErrNotFound
}

// GetLesson always returns ErrNotFound; the fixture file carries sessions only.
func (f *FixtureSessions) GetLesson(_ context.Context, _ string) (*domain.Lesson, error) {
	return nil, ErrNotFound
}

// Ping reports healthy. A missing fixture file is valid: it simply holds
// no sessions.
func (f *FixtureSessions) Ping(_ context.Context) error {
	return nil
}

// Close is a no-op; the file is opened per lookup.
func (f *FixtureSessions) Close() error {
	return nil
}
