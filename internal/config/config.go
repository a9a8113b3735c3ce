// Package config loads application configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	// Server configuration
	ServerAddr string `env:"SERVER_ADDR" envDefault:":8080"`

	// Corpus and store locations
	DataDir string `env:"DATA_DIR" envDefault:"./data"`
	DBPath  string `env:"DB_PATH" envDefault:"./db"`

	// Chunking and retrieval parameters
	ChunkSize      int `env:"CHUNK_SIZE" envDefault:"400"`
	ChunkOverlap   int `env:"CHUNK_OVERLAP" envDefault:"60"`
	TopK           int `env:"TOP_K" envDefault:"4"`
	MaxPromptChars int `env:"MAX_PROMPT_CHARS" envDefault:"6000"`

	// Watch the corpus directory and re-ingest on changes
	WatchCorpus bool `env:"WATCH_CORPUS" envDefault:"false"`

	// Model providers
	EmbeddingCfg ProviderConfig `envPrefix:"EMBEDDING_"`
	LLMCfg       ProviderConfig `envPrefix:"LLM_"`

	// Weather service
	WeatherCfg WeatherConfig `envPrefix:"WEATHER_"`

	// Logging configuration
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// ProviderConfig configures a model provider (embedding or LLM).
type ProviderConfig struct {
	Provider string        `env:"PROVIDER" envDefault:"ollama"`
	BaseURL  string        `env:"BASE_URL"`
	Model    string        `env:"MODEL"`
	APIKey   string        `env:"API_KEY"`
	Timeout  time.Duration `env:"TIMEOUT"`
}

// WeatherConfig configures the weather service endpoints. The defaults
// point at Open-Meteo, which requires no credentials.
type WeatherConfig struct {
	GeocodeURL  string        `env:"GEOCODE_URL" envDefault:"https://geocoding-api.open-meteo.com"`
	ForecastURL string        `env:"FORECAST_URL" envDefault:"https://api.open-meteo.com"`
	Timeout     time.Duration `env:"TIMEOUT" envDefault:"5s"`
}

// LoadConfig reads configuration from the environment, optionally
// seeded from an env file. A missing env file is not an error: in
// containerized environments variables are usually set externally.
func LoadConfig(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			fmt.Printf("Warning: could not load %s (this is ok if env vars are set externally): %v\n", envFile, err)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func validateConfig(cfg *Config) error {
	if cfg.ChunkSize < 1 {
		return fmt.Errorf("CHUNK_SIZE must be positive, got %d", cfg.ChunkSize)
	}
	if cfg.ChunkOverlap < 0 || cfg.ChunkOverlap >= cfg.ChunkSize {
		return fmt.Errorf("CHUNK_OVERLAP must be in [0, CHUNK_SIZE), got %d", cfg.ChunkOverlap)
	}
	if cfg.TopK < 1 {
		return fmt.Errorf("TOP_K must be positive, got %d", cfg.TopK)
	}
	if cfg.MaxPromptChars < 1 {
		return fmt.Errorf("MAX_PROMPT_CHARS must be positive, got %d", cfg.MaxPromptChars)
	}
	return nil
}
