package llm

import (
	"fmt"

	"github.com/kardelen-edu/insight/internal/eventlog"
)

// Config selects and configures the LLM backend.
type Config struct {
	// Provider selects which backend to use. Values: "openai", "mock".
	Provider string

	OpenAI OpenAIConfig
}

// New creates a Provider from configuration, wrapped with audit recording
// when a recorder is supplied.
func New(cfg Config, rec eventlog.Recorder) (Provider, error) {
	var base Provider
	var err error

	switch cfg.Provider {
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case "mock":
		base = NewMockProvider()
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	return WithEventLog(base, cfg.Provider, rec), nil
}
