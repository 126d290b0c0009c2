// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"errors"

	"github.com/kardelen-edu/insight/internal/domain"
)

var (
	// ErrNotFound is returned when a requested document does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when an insert collides with an existing
	// document.
	ErrConflict = errors.New("already exists")
)

// SessionStore reads session-runner data. Sessions, children and lessons
// are owned by other services and are never written here.
type SessionStore interface {
	// GetSession retrieves a session by its ID.
	GetSession(ctx context.Context, sessionID string) (*domain.Session, error)

	// GetChild retrieves a child profile by its ID.
	GetChild(ctx context.Context, childID string) (*domain.Child, error)

	// GetLesson retrieves a lesson by its ID.
	GetLesson(ctx context.Context, lessonID string) (*domain.Lesson, error)

	// Ping verifies backend connectivity and returns an error if the
	// backend is unreachable.
	Ping(ctx context.Context) error

	// Close closes the backend connection.
	Close() error
}

// ReportStore persists session analysis reports. At most one report exists
// per session.
type ReportStore interface {
	// InsertReport stores a new report and assigns its ID.
	// Returns ErrConflict when a report for the session already exists.
	InsertReport(ctx context.Context, report *domain.AnalysisReport) error

	// GetReportBySession retrieves the report for a session.
	GetReportBySession(ctx context.Context, sessionID string) (*domain.AnalysisReport, error)

	// UpdateReport replaces the mutable fields of an existing report:
	// step reports, updated_at and finalized_at. Last writer wins.
	UpdateReport(ctx context.Context, report *domain.AnalysisReport) error

	// Close closes the backend connection.
	Close() error
}
