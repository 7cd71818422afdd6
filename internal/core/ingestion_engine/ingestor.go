package ingestion_engine

import (
	"context"
	"iter"

	"github.com/markdave123-py/fileinput/internal/core"
)

type Ingestor interface {
	Ingest(ctx context.Context, batch Batch, tasks iter.Seq[core.Task]) ([]Outcome, error)
}

var _ Ingestor = (*TaskIngestor)(nil)
