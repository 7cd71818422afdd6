package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/markdave123-py/fileinput/internal/api/handlers"
	"github.com/markdave123-py/fileinput/internal/config"
	"github.com/markdave123-py/fileinput/internal/core"
	db "github.com/markdave123-py/fileinput/internal/core/database"
	"github.com/markdave123-py/fileinput/internal/core/ingestion_engine"
	"github.com/markdave123-py/fileinput/internal/core/input_engine"
	"github.com/markdave123-py/fileinput/internal/core/llm"
	objectclient "github.com/markdave123-py/fileinput/internal/core/object-client"
	"github.com/markdave123-py/fileinput/internal/services"
)

// App holds every collaborator the hosts need.
type App struct {
	Ledger   core.TaskLedger
	Input    *input_engine.FileInput
	Tasks    *services.TaskService
	Ingestor *ingestion_engine.TaskIngestor
	Server   *Server

	llm *llm.GeminiLLM
}

// NewApp connects the configured collaborators. Anything left unconfigured is
// skipped: no DATABASE_URL keeps the ledger in memory, no bucket disables the
// archive, no API key disables inference.
func NewApp(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*App, error) {
	appCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	a := &App{}

	if cfg.DatabaseURL != "" {
		dbClient, err := db.NewDatabaseClient(appCtx, cfg)
		if err != nil {
			return nil, err
		}
		a.Ledger = dbClient
		logger.Info().Msg("database initialized and ready")
	} else {
		a.Ledger = db.NewMemoryClient()
		logger.Info().Msg("no DATABASE_URL; task ledger kept in memory")
	}

	var storage core.ObjectClient
	if cfg.ArchiveEnabled() {
		s3Client, err := objectclient.NewS3Client(appCtx, cfg)
		if err != nil {
			a.Close()
			return nil, err
		}
		storage = s3Client
		logger.Info().Str("bucket", s3Client.Bucket()).Msg("object client initialized and ready")
	}

	var pipeline core.InferencePipeline
	if cfg.AIAPIKey != "" {
		gen, err := llm.NewGeminiLLM(appCtx, cfg.AIAPIKey, cfg.GenModel, cfg.InferPrompt)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("couldn't initialize the model, %w", err)
		}
		a.llm = gen
		pipeline = gen
		logger.Info().Str("model", cfg.GenModel).Msg("inference pipeline ready")
	}

	a.Tasks = services.NewTaskService(a.Ledger, storage, cfg.BucketName)
	a.Ingestor = ingestion_engine.NewTaskIngestor(a.Tasks, pipeline, &ingestion_engine.IngestConfig{Workers: cfg.IngestWorkers}, logger)
	a.Input = input_engine.NewFileInput(logger)

	predict := handlers.NewPredictHandler(a.Input, a.Ingestor, a.Tasks, cfg.MaxBodyBytes, logger)
	a.Server = NewServer(cfg, predict, logger)

	return a, nil
}

func (a *App) Close() {
	if a.llm != nil {
		_ = a.llm.Close()
	}
	if a.Ledger != nil {
		_ = a.Ledger.Close()
	}
}
