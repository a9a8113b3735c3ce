// Command ingest populates the vector store from a directory of PDF
// documents, without starting the server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"

	"github.com/agriassist/agriassist/internal/adapters/embedding"
	"github.com/agriassist/agriassist/internal/adapters/pdfreader"
	"github.com/agriassist/agriassist/internal/adapters/vectordb"
	"github.com/agriassist/agriassist/internal/config"
	"github.com/agriassist/agriassist/internal/domain/entities"
	"github.com/agriassist/agriassist/internal/domain/usecases"
)

func main() {
	dir := flag.String("dir", "", "corpus directory (defaults to DATA_DIR)")
	clearStore := flag.Bool("clear", false, "clear the store before ingesting")
	envFile := flag.String("env", ".env", "path to env file (missing file is ignored)")
	flag.Parse()

	if err := run(*dir, *clearStore, *envFile); err != nil {
		log.Fatal(err)
	}
}

func run(dir string, clearStore bool, envFile string) error {
	cfg, err := config.LoadConfig(envFile)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	if dir == "" {
		dir = cfg.DataDir
	}

	store, err := vectordb.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open vector store: %w", err)
	}
	defer store.Close()

	embedder, err := embedding.New(embedding.Config{
		Provider: cfg.EmbeddingCfg.Provider,
		BaseURL:  cfg.EmbeddingCfg.BaseURL,
		Model:    cfg.EmbeddingCfg.Model,
		APIKey:   cfg.EmbeddingCfg.APIKey,
		Timeout:  cfg.EmbeddingCfg.Timeout,
	})
	if err != nil {
		return fmt.Errorf("create embedder: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if clearStore {
		if err := store.Clear(ctx); err != nil {
			return fmt.Errorf("clear store: %w", err)
		}
		fmt.Println("Store cleared.")
	}

	ingestor := usecases.NewIngestor(pdfreader.NewReader(nil), embedder, store, cfg.ChunkSize, cfg.ChunkOverlap, nil)

	paths, err := ingestor.ListDocuments(dir)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no supported documents found in %s", dir)
	}

	start := time.Now()
	report := &entities.IngestReport{RunID: uuid.NewString()}
	bar := progressbar.Default(int64(len(paths)), "ingesting")
	for _, path := range paths {
		pages, chunks, err := ingestor.IngestFile(ctx, path)
		if err != nil {
			report.Skip(path, err)
		} else {
			report.Documents++
			report.Pages += pages
			report.Chunks += chunks
		}
		bar.Add(1)
	}
	report.Duration = time.Since(start)

	fmt.Printf("Ingested %d documents (%d pages, %d chunks) in %s\n",
		report.Documents, report.Pages, report.Chunks, report.Duration.Round(time.Millisecond))
	for _, skipped := range report.Skipped {
		fmt.Printf("Skipped %s: %s\n", filepath.Base(skipped.Path), skipped.Reason)
	}
	if report.Documents == 0 {
		return fmt.Errorf("every document was skipped")
	}
	return nil
}
