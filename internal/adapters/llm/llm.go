// Package llm provides language model adapters implementing ports.LLM.
package llm

import (
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/agriassist/agriassist/internal/domain/ports"
)

// Config selects and configures the language model client.
type Config struct {
	Provider string // "ollama" or "openai"
	BaseURL  string
	Model    string
	APIKey   string // openai only
	Timeout  time.Duration
}

// New creates the language model client for the configured provider.
func New(cfg Config) (ports.LLM, error) {
	switch cfg.Provider {
	case "", "ollama":
		return NewOllamaClient(cfg.BaseURL, cfg.Model, cfg.Timeout), nil
	case "openai":
		return NewOpenAIClient(cfg)
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", cfg.Provider)
	}
}

// generateRetryOptions bounds retries on transient model failures. A
// query whose call exhausts these fails only that query.
func generateRetryOptions() []retry.Option {
	return []retry.Option{
		retry.Attempts(3),
		retry.Delay(500 * time.Millisecond),
		retry.MaxDelay(5 * time.Second),
		retry.LastErrorOnly(true),
	}
}
