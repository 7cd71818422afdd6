package main

import (
	"encoding/json"
	"fmt"
	"io"
	"iter"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/markdave123-py/fileinput/internal/app"
	"github.com/markdave123-py/fileinput/internal/config"
	"github.com/markdave123-py/fileinput/internal/core"
	"github.com/markdave123-py/fileinput/internal/core/ingestion_engine"
	"github.com/markdave123-py/fileinput/internal/core/input_engine"
	"github.com/markdave123-py/fileinput/internal/models"
)

type taskSeq = iter.Seq[core.Task]

type outcomeLine struct {
	BatchID string `json:"batch_id"`
	ingestion_engine.Outcome
}

// ingestAndPrint runs one batch through the app and writes its outcomes as
// JSON lines. It fails when any task did not come out ready.
func ingestAndPrint(cmd *cobra.Command, cfg *config.Config, logger zerolog.Logger, tasks func(*input_engine.FileInput) taskSeq) error {
	ctx := cmd.Context()
	application, err := app.NewApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer application.Close()

	batch := ingestion_engine.Batch{ID: uuid.NewString()}
	outcomes, err := application.Ingestor.Ingest(ctx, batch, tasks(application.Input))
	if err != nil {
		return err
	}
	return writeOutcomes(cmd.OutOrStdout(), batch.ID, outcomes)
}

func writeOutcomes(w io.Writer, batchID string, outcomes []ingestion_engine.Outcome) error {
	enc := json.NewEncoder(w)
	notReady := 0
	for _, o := range outcomes {
		if o.Status != models.StatusReady {
			notReady++
		}
		if err := enc.Encode(outcomeLine{BatchID: batchID, Outcome: o}); err != nil {
			return fmt.Errorf("write outcome: %w", err)
		}
	}
	if notReady > 0 {
		return fmt.Errorf("%d of %d tasks not ready", notReady, len(outcomes))
	}
	return nil
}
