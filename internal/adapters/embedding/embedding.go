// Package embedding provides embedding adapters implementing
// ports.Embedder. The provider is fixed at startup; ingestion and query
// must share one client so distances stay meaningful.
package embedding

import (
	"fmt"
	"time"

	"github.com/agriassist/agriassist/internal/domain/ports"
)

// Config selects and configures the embedding client.
type Config struct {
	Provider string // "ollama" or "openai"
	BaseURL  string
	Model    string
	APIKey   string // openai only
	Timeout  time.Duration
}

// New creates the embedding client for the configured provider.
func New(cfg Config) (ports.Embedder, error) {
	switch cfg.Provider {
	case "", "ollama":
		return NewOllamaClient(cfg.BaseURL, cfg.Model, cfg.Timeout), nil
	case "openai":
		return NewOpenAIClient(cfg)
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Provider)
	}
}
