// fileinput normalizes input files from the CLI, event payloads or HTTP
// requests into tasks and hands them to the inference pipeline.
//
// Usage:
//
//	fileinput run --input-file <path> [<path>...]
//	fileinput event --payload <file|->
//	fileinput serve
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle SIGINT/SIGTERM for graceful shutdown
	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
		<-c
		cancel()
	}()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
