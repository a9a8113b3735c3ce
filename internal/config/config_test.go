package config

import "testing"

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.ServerAddr != ":8080" {
		t.Errorf("ServerAddr = %q", cfg.ServerAddr)
	}
	if cfg.ChunkSize != 400 || cfg.ChunkOverlap != 60 {
		t.Errorf("chunking defaults = %d/%d", cfg.ChunkSize, cfg.ChunkOverlap)
	}
	if cfg.TopK != 4 || cfg.MaxPromptChars != 6000 {
		t.Errorf("retrieval defaults = %d/%d", cfg.TopK, cfg.MaxPromptChars)
	}
	if cfg.EmbeddingCfg.Provider != "ollama" || cfg.LLMCfg.Provider != "ollama" {
		t.Errorf("provider defaults = %q/%q", cfg.EmbeddingCfg.Provider, cfg.LLMCfg.Provider)
	}
	if cfg.WeatherCfg.GeocodeURL == "" || cfg.WeatherCfg.ForecastURL == "" {
		t.Error("weather endpoints must default to Open-Meteo")
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("TOP_K", "7")
	t.Setenv("EMBEDDING_MODEL", "nomic-embed-text")
	t.Setenv("LLM_PROVIDER", "openai")
	t.Setenv("LLM_API_KEY", "k")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.TopK != 7 {
		t.Errorf("TopK = %d", cfg.TopK)
	}
	if cfg.EmbeddingCfg.Model != "nomic-embed-text" {
		t.Errorf("embedding model = %q", cfg.EmbeddingCfg.Model)
	}
	if cfg.LLMCfg.Provider != "openai" || cfg.LLMCfg.APIKey != "k" {
		t.Errorf("llm config = %+v", cfg.LLMCfg)
	}
}

func TestLoadConfig_InvalidOverlap(t *testing.T) {
	t.Setenv("CHUNK_SIZE", "100")
	t.Setenv("CHUNK_OVERLAP", "100")
	if _, err := LoadConfig(""); err == nil {
		t.Error("overlap >= size must fail validation")
	}
}

func TestLoadConfig_InvalidTopK(t *testing.T) {
	t.Setenv("TOP_K", "0")
	if _, err := LoadConfig(""); err == nil {
		t.Error("zero TOP_K must fail validation")
	}
}
