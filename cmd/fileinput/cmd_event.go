package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/markdave123-py/fileinput/internal/core/input_engine"
)

func eventCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "event --payload <file|->",
		Short: "Ingest a JSON list of invocation events",
		Long: `Reads a JSON array of events (or a single event object) shaped like
{"body": "<base64>", "isBase64Encoded": true} and prints one JSON line per task.`,
		Args: cobra.NoArgs,
		RunE: runEvent,
	}
	cmd.Flags().StringP("payload", "p", "-", "events file, or - for stdin")
	return cmd
}

func runEvent(cmd *cobra.Command, _ []string) error {
	payload, _ := cmd.Flags().GetString("payload")

	var r io.Reader = cmd.InOrStdin()
	if payload != "-" {
		f, err := os.Open(payload)
		if err != nil {
			return fmt.Errorf("open payload: %w", err)
		}
		defer f.Close()
		r = f
	}

	events, err := input_engine.DecodeEvents(r)
	if err != nil {
		return err
	}

	cfg, logger := setup(cmd, verboseFlag(cmd))
	return ingestAndPrint(cmd, cfg, logger, func(in *input_engine.FileInput) taskSeq {
		return in.FromEvents(events)
	})
}
