package builder

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/agriassist/agriassist/internal/adapters/filewatcher"
	"github.com/agriassist/agriassist/internal/adapters/vectordb"
	"github.com/agriassist/agriassist/internal/config"
	"github.com/agriassist/agriassist/internal/domain/ports"
	"github.com/agriassist/agriassist/internal/domain/usecases"
	apphttp "github.com/agriassist/agriassist/internal/infrastructure/http"
)

// App holds the assembled application components.
type App struct {
	cfg      *config.Config
	server   *apphttp.Server
	store    *vectordb.SQLiteStore
	ingestor *usecases.Ingestor
	watcher  *filewatcher.FSNotifyWatcher
	logger   *zap.Logger
}

// Run ingests the corpus, starts the HTTP server and, when enabled,
// the corpus watcher. It blocks until an interrupt or a server error.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer a.store.Close()

	if _, err := os.Stat(a.cfg.DataDir); err == nil {
		report, err := a.ingestor.IngestDirectory(ctx, a.cfg.DataDir)
		if err != nil {
			a.logger.Error("initial ingestion failed", zap.Error(err))
		} else {
			a.logger.Info("initial ingestion complete",
				zap.Int("documents", report.Documents),
				zap.Int("chunks", report.Chunks),
			)
		}
	} else {
		a.logger.Warn("corpus directory not found, starting with existing store",
			zap.String("data_dir", a.cfg.DataDir),
		)
	}

	if a.watcher != nil {
		if err := a.watchCorpus(ctx); err != nil {
			a.logger.Error("corpus watcher failed to start", zap.Error(err))
		}
		defer a.watcher.Stop()
	}

	errChan := make(chan error, 1)
	go func() {
		if err := a.server.Start(ctx); err != nil {
			errChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		a.logger.Error("server error", zap.Error(err))
		return err
	case sig := <-sigChan:
		a.logger.Info("received shutdown signal", zap.String("signal", sig.String()))
	}

	cancel()
	a.logger.Info("application stopped gracefully")
	return nil
}

// watchCorpus re-ingests documents as they change on disk.
func (a *App) watchCorpus(ctx context.Context) error {
	events, err := a.watcher.Watch(ctx, a.cfg.DataDir)
	if err != nil {
		return err
	}

	go func() {
		for event := range events {
			switch event.Operation {
			case ports.FileCreated, ports.FileModified:
				if _, _, err := a.ingestor.IngestFile(ctx, event.Path); err != nil {
					a.logger.Warn("re-ingestion failed",
						zap.String("path", event.Path),
						zap.Error(err),
					)
				} else {
					a.logger.Info("document re-ingested", zap.String("path", event.Path))
				}
			case ports.FileDeleted:
				if err := a.ingestor.RemoveFile(ctx, event.Path); err != nil {
					a.logger.Warn("removal failed",
						zap.String("path", event.Path),
						zap.Error(err),
					)
				} else {
					a.logger.Info("document removed", zap.String("path", event.Path))
				}
			}
		}
	}()
	return nil
}
