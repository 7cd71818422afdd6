package main

import (
	"errors"
	"slices"

	"github.com/spf13/cobra"

	"github.com/markdave123-py/fileinput/internal/core/input_engine"
)

var errNoInputFiles = errors.New("run: at least one --input-file is required")

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run --input-file <path> [<path>...]",
		Short: "Ingest local files",
		Long: `Reads every path given after --input-file (the flag may be repeated or
use the --input-file=<path> form) and prints one JSON line per task.
Unreadable paths are reported as discarded tasks; the others still run.`,
		// --input-file takes a variable number of values, which pflag cannot express.
		DisableFlagParsing: true,
		RunE:               runRun,
	}
}

func runRun(cmd *cobra.Command, args []string) error {
	if slices.Contains(args, "-h") || slices.Contains(args, "--help") {
		return cmd.Help()
	}
	args, verbose := stripVerbose(args)
	if len(input_engine.ParseInputFiles(args)) == 0 {
		return errNoInputFiles
	}

	cfg, logger := setup(cmd, verbose)
	return ingestAndPrint(cmd, cfg, logger, func(in *input_engine.FileInput) taskSeq {
		return in.FromCLI(args)
	})
}

// stripVerbose removes the persistent verbose flag, which cobra does not
// parse for commands that read their own arguments.
func stripVerbose(args []string) ([]string, bool) {
	out := make([]string, 0, len(args))
	verbose := false
	for _, a := range args {
		if a == "-v" || a == "--verbose" {
			verbose = true
			continue
		}
		out = append(out, a)
	}
	return out, verbose
}
