// Package builder wires configuration, adapters, and usecases into a
// runnable application.
package builder

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/agriassist/agriassist/internal/adapters/embedding"
	"github.com/agriassist/agriassist/internal/adapters/filewatcher"
	"github.com/agriassist/agriassist/internal/adapters/llm"
	"github.com/agriassist/agriassist/internal/adapters/pdfreader"
	"github.com/agriassist/agriassist/internal/adapters/vectordb"
	"github.com/agriassist/agriassist/internal/adapters/weather"
	"github.com/agriassist/agriassist/internal/config"
	"github.com/agriassist/agriassist/internal/domain/usecases"
	apphttp "github.com/agriassist/agriassist/internal/infrastructure/http"
)

// Build loads configuration and assembles the application.
func Build(envFile string) (*App, error) {
	cfg, err := config.LoadConfig(envFile)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	logger, err := setupLogger(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	logger.Info("building application",
		zap.String("server_addr", cfg.ServerAddr),
		zap.String("data_dir", cfg.DataDir),
	)

	store, err := vectordb.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open vector store: %w", err)
	}

	embedder, err := embedding.New(embedding.Config{
		Provider: cfg.EmbeddingCfg.Provider,
		BaseURL:  cfg.EmbeddingCfg.BaseURL,
		Model:    cfg.EmbeddingCfg.Model,
		APIKey:   cfg.EmbeddingCfg.APIKey,
		Timeout:  cfg.EmbeddingCfg.Timeout,
	})
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("create embedder: %w", err)
	}

	model, err := llm.New(llm.Config{
		Provider: cfg.LLMCfg.Provider,
		BaseURL:  cfg.LLMCfg.BaseURL,
		Model:    cfg.LLMCfg.Model,
		APIKey:   cfg.LLMCfg.APIKey,
		Timeout:  cfg.LLMCfg.Timeout,
	})
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("create llm client: %w", err)
	}

	weatherClient := weather.NewOpenMeteoClient(
		cfg.WeatherCfg.GeocodeURL,
		cfg.WeatherCfg.ForecastURL,
		cfg.WeatherCfg.Timeout,
		logger,
	)

	reader := pdfreader.NewReader(logger)

	ingestor := usecases.NewIngestor(reader, embedder, store, cfg.ChunkSize, cfg.ChunkOverlap, logger)
	answerer := usecases.NewAnswerer(embedder, store, model, weatherClient, cfg.TopK, cfg.MaxPromptChars, logger)

	server := apphttp.NewServer(answerer, store, cfg.ServerAddr, logger)

	var watcher *filewatcher.FSNotifyWatcher
	if cfg.WatchCorpus {
		watcher, err = filewatcher.NewFSNotifyWatcher(reader.SupportedExtensions(), logger)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("create file watcher: %w", err)
		}
	}

	logger.Info("application built successfully")

	return &App{
		cfg:      cfg,
		server:   server,
		store:    store,
		ingestor: ingestor,
		watcher:  watcher,
		logger:   logger,
	}, nil
}
