package ingestion_engine

import (
	"context"
	"fmt"
	"io"
	"iter"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/markdave123-py/fileinput/internal/core"
	"github.com/markdave123-py/fileinput/internal/models"
	"github.com/markdave123-py/fileinput/internal/services"
)

// NewTaskIngestor builds the ingestor. A nil pipeline records tasks without inference.
func NewTaskIngestor(tasks *services.TaskService, pipeline core.InferencePipeline, cfg *IngestConfig, logger zerolog.Logger) *TaskIngestor {
	if cfg == nil {
		cfg = &IngestConfig{}
	}
	return &TaskIngestor{
		tasks:    tasks,
		pipeline: pipeline,
		cfg:      cfg,
		log:      logger.With().Str("component", "ingestor").Logger(),
	}
}

func (i *TaskIngestor) workers() int {
	if i.cfg.Workers < 1 {
		return 1
	}
	return i.cfg.Workers
}

// Ingest drains tasks in order and processes at most Workers of them at once.
// Outcomes come back in task order. Collaborator failures are per task; the
// only error returned is the context's.
func (i *TaskIngestor) Ingest(ctx context.Context, batch Batch, tasks iter.Seq[core.Task]) ([]Outcome, error) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(i.workers())

	var outcomes []*Outcome
	for task := range tasks {
		if gctx.Err() != nil {
			break
		}

		out := &Outcome{TaskID: task.ID, Position: task.Position, Source: task.Source, Name: task.Name}
		outcomes = append(outcomes, out)

		var data []byte
		if !task.IsDiscarded() {
			var err error
			if data, err = io.ReadAll(task.Data); err != nil {
				_ = g.Wait()
				return nil, fmt.Errorf("read task %s: %w", task.ID, err)
			}
		}

		g.Go(func() error {
			return i.processOne(gctx, batch, task, data, out)
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := make([]Outcome, len(outcomes))
	for k, o := range outcomes {
		result[k] = *o
	}
	i.log.Info().Str("batch_id", batch.ID).Int("tasks", len(result)).Msg("batch ingested")
	return result, nil
}

// processOne archives, infers and records a single task.
func (i *TaskIngestor) processOne(ctx context.Context, batch Batch, task core.Task, data []byte, out *Outcome) error {
	if task.IsDiscarded() {
		out.Status = models.StatusDiscarded
		out.ErrorKind = string(task.Err.Kind)
		out.Error = task.Err.Error()
	} else {
		i.deliver(ctx, batch, task, data, out)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	rec := &models.TaskRecord{
		ID:          out.TaskID,
		BatchID:     batch.ID,
		Owner:       batch.Owner,
		Source:      out.Source,
		Position:    out.Position,
		FileName:    out.Name,
		ContentType: out.ContentType,
		Size:        int64(out.Size),
		StorageURL:  out.StorageURL,
		Status:      out.Status,
		ErrorKind:   out.ErrorKind,
		Error:       out.Error,
		Output:      out.Output,
	}
	if err := i.tasks.Record(ctx, rec); err != nil {
		i.log.Error().Err(err).Str("task_id", out.TaskID).Msg("record task outcome")
		// An archived payload without a ledger row cannot be found again.
		if out.StorageURL != "" {
			if err := i.tasks.Unarchive(ctx, out.StorageURL); err != nil {
				i.log.Error().Err(err).Str("task_id", out.TaskID).Msg("remove orphaned payload")
			}
			out.StorageURL = ""
		}
	}

	i.log.Debug().
		Str("batch_id", batch.ID).
		Str("task_id", out.TaskID).
		Int("position", out.Position).
		Str("status", out.Status).
		Msg("task ingested")
	return nil
}

func (i *TaskIngestor) deliver(ctx context.Context, batch Batch, task core.Task, data []byte, out *Outcome) {
	out.Size = len(data)
	out.ContentType = detectContentType(data)

	url, err := i.tasks.Archive(ctx, batch.ID, task.ID, task.Name, out.ContentType, data)
	if err != nil {
		i.fail(out, "archive", err)
		return
	}
	out.StorageURL = url

	if i.pipeline != nil {
		output, err := i.pipeline.Infer(ctx, out.ContentType, data)
		if err != nil {
			i.fail(out, "infer", err)
			return
		}
		out.Output = output
	}
	out.Status = models.StatusReady
}

func (i *TaskIngestor) fail(out *Outcome, stage string, err error) {
	out.Status = models.StatusFailed
	out.Error = fmt.Sprintf("%s: %v", stage, err)
	i.log.Warn().Err(err).Str("task_id", out.TaskID).Str("stage", stage).Msg("task failed")
}
