package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/usestring/critpath/internal/config"
	"github.com/usestring/critpath/internal/logging"
)

// selfLogging marks commands that set up logging on their own.
const selfLogging = "self-logging"

// app carries state shared by every command of one invocation.
type app struct {
	cfg        *config.Config
	configFile string
	logLevel   string
	logCleanup func() error
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "critpath",
		Short: "Reconstruct per-trace critical paths and flag unstable service interactions",
		Long: `critpath reads distributed-trace call records, one CSV file per time interval,
reconstructs the latency-dominant chain of calls of every trace, aggregates
each interaction's response times across intervals and flags interactions
whose spread in some interval is far above their usual spread.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.logCleanup != nil {
				return a.logCleanup()
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&a.configFile, "config", "", "YAML config file (overrides CRITPATH_CONFIG)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides LOG_LEVEL)")

	root.AddCommand(
		newAnalyzeCmd(a),
		newCleanCmd(a),
		newQueryCmd(a),
		newSchemaCmd(a),
		newValidateCmd(a),
		newServeCmd(a),
	)
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if a.configFile != "" {
		if err := cfg.MergeFile(a.configFile); err != nil {
			return err
		}
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	a.cfg = cfg

	if cmd.Annotations[selfLogging] != "" {
		return nil
	}
	cleanup, err := logging.Setup(logging.FromConfig(cfg))
	if err != nil {
		return fmt.Errorf("setting up logging: %w", err)
	}
	a.logCleanup = cleanup
	return nil
}
