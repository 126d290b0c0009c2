// Package eventlog records an audit trail of LLM requests.
package eventlog

import (
	"context"
)

// Entry captures a single LLM API call.
type Entry struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
}

// Recorder appends audit events. Recording is best-effort; callers must
// not fail their own work when a Recorder errors.
type Recorder interface {
	// Append records a single LLM request event.
	Append(ctx context.Context, e Entry) error

	// Close closes the underlying storage.
	Close() error
}
