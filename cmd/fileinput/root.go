package main

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/markdave123-py/fileinput/internal/config"
	"github.com/markdave123-py/fileinput/internal/logging"
)

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "fileinput",
		Short:        "Turn CLI files, events and HTTP uploads into inference tasks",
		SilenceUsage: true,
	}
	root.PersistentFlags().BoolP("verbose", "v", false, "log at debug level")

	root.AddCommand(
		runCmd(),
		eventCmd(),
		serveCmd(),
	)

	return root
}

// setup loads the configuration and installs the logger on the command's stderr.
func setup(cmd *cobra.Command, verbose bool) (*config.Config, zerolog.Logger) {
	cfg := config.LoadConfig()
	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	return cfg, logging.Setup(level, cmd.ErrOrStderr())
}

func verboseFlag(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("verbose")
	return v
}
