package llm

import (
	"context"
	"log/slog"
	"time"

	"github.com/kardelen-edu/insight/internal/eventlog"
)

// AuditProvider is a decorator that records every LLM request as an event.
type AuditProvider struct {
	inner    Provider
	provider string
	rec      eventlog.Recorder
}

// WithEventLog wraps a Provider with audit recording. A nil recorder
// returns the provider unwrapped.
func WithEventLog(p Provider, providerName string, rec eventlog.Recorder) Provider {
	if rec == nil {
		return p
	}
	return &AuditProvider{inner: p, provider: providerName, rec: rec}
}

func (a *AuditProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	purpose := PurposeFrom(ctx)

	resp, err := a.inner.Generate(ctx, req)

	entry := eventlog.Entry{
		Provider:  a.provider,
		Model:     a.inner.ModelID(),
		Purpose:   purpose,
		LatencyMs: time.Since(start).Milliseconds(),
		Success:   err == nil,
	}

	if resp != nil {
		entry.Model = resp.Model
		entry.InputTokens = resp.Usage.InputTokens
		entry.OutputTokens = resp.Usage.OutputTokens
	}

	if err != nil {
		entry.ErrorMessage = err.Error()
	}

	// Record the event but never fail the request over it.
	if logErr := a.rec.Append(ctx, entry); logErr != nil {
		slog.Warn("Failed to record LLM request event", "error", logErr)
	}

	return resp, err
}

func (a *AuditProvider) ModelID() string {
	return a.inner.ModelID()
}
