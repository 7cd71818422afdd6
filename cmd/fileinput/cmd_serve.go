package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/markdave123-py/fileinput/internal/app"
)

const shutdownTimeout = 15 * time.Second

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP host (POST /api/predict)",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg, logger := setup(cmd, verboseFlag(cmd))

	application, err := app.NewApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer application.Close()

	errCh := make(chan error, 1)
	go func() { errCh <- application.Server.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return application.Server.Shutdown(shutdownCtx)
}
