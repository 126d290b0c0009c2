package store

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/kardelen-edu/insight/internal/domain"
)

// Memory implements SessionStore and ReportStore with in-process maps.
// It backs report persistence when the fixture session backend is selected,
// and serves as the store in tests.
type Memory struct {
	mu       sync.RWMutex
	sessions map[string]*domain.Session
	children map[string]*domain.Child
	lessons  map[string]*domain.Lesson
	reports  map[string]*domain.AnalysisReport // keyed by report ID
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		sessions: make(map[string]*domain.Session),
		children: make(map[string]*domain.Child),
		lessons:  make(map[string]*domain.Lesson),
		reports:  make(map[string]*domain.AnalysisReport),
	}
}

// PutSession seeds a session document.
func (m *Memory) PutSession(session *domain.Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session.ID] = session
}

// PutChild seeds a child document.
func (m *Memory) PutChild(child *domain.Child) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.children[child.ID] = child
}

// PutLesson seeds a lesson document.
func (m *Memory) PutLesson(lesson *domain.Lesson) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lessons[lesson.ID] = lesson
}

// GetSession retrieves a session by its ID.
func (m *Memory) GetSession(_ context.Context, sessionID string) (*domain.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	session, ok := m.sessions[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *session
	return &copied, nil
}

// GetChild retrieves a child profile by its ID.
func (m *Memory) GetChild(_ context.Context, childID string) (*domain.Child, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	child, ok := m.children[childID]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *child
	return &copied, nil
}

// GetLesson retrieves a lesson by its ID.
func (m *Memory) GetLesson(_ context.Context, lessonID string) (*domain.Lesson, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	lesson, ok := m.lessons[lessonID]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *lesson
	return &copied, nil
}

// InsertReport stores a new report and assigns it a UUID.
func (m *Memory) InsertReport(_ context.Context, report *domain.AnalysisReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.reports {
		if existing.SessionID == report.SessionID {
			return ErrConflict
		}
	}

	report.ID = uuid.NewString()
	m.reports[report.ID] = cloneReport(report)
	return nil
}

// GetReportBySession retrieves the report for a session.
func (m *Memory) GetReportBySession(_ context.Context, sessionID string) (*domain.AnalysisReport, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, report := range m.reports {
		if report.SessionID == sessionID {
			return cloneReport(report), nil
		}
	}
	return nil, ErrNotFound
}

// UpdateReport replaces the mutable fields of an existing report.
func (m *Memory) UpdateReport(_ context.Context, report *domain.AnalysisReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.reports[report.ID]
	if !ok {
		return ErrNotFound
	}

	stored.StepReports = cloneStepReports(report.StepReports)
	stored.UpdatedAt = report.UpdatedAt
	if report.FinalizedAt != nil {
		t := *report.FinalizedAt
		stored.FinalizedAt = &t
	}
	return nil
}

// Ping reports healthy.
func (m *Memory) Ping(_ context.Context) error {
	return nil
}

// Close is a no-op.
func (m *Memory) Close() error {
	return nil
}

// cloneReport deep-copies a report so callers never share bucket maps with
// the stored document.
func cloneReport(r *domain.AnalysisReport) *domain.AnalysisReport {
	copied := *r
	copied.StepReports = cloneStepReports(r.StepReports)
	if r.FinalizedAt != nil {
		t := *r.FinalizedAt
		copied.FinalizedAt = &t
	}
	return &copied
}

func cloneStepReports(r domain.StepReports) domain.StepReports {
	copied := r
	copied.Voice = cloneBucket(r.Voice)
	copied.Game = cloneBucket(r.Game)
	copied.Test = cloneBucket(r.Test)
	if r.Suggestions != nil {
		copied.Suggestions = append([]string(nil), r.Suggestions...)
	}
	return copied
}

func cloneBucket(b map[string]domain.StepAnalysis) map[string]domain.StepAnalysis {
	if b == nil {
		return nil
	}
	copied := make(map[string]domain.StepAnalysis, len(b))
	for k, v := range b {
		copied[k] = v
	}
	return copied
}
