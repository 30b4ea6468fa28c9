package main

import (
	"context"
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/usestring/critpath/pkg/mcpsrv"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve [interval.csv...]",
		Short: "Serve analyses to MCP clients over stdio",
		Long: `Serve starts an MCP server on stdin/stdout. Clients run analyses with the
critpath_analyze tool; files given on the command line are analyzed before
serving. Logs go to stderr or LOG_FILE, never stdout.`,
		Annotations: map[string]string{selfLogging: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			server, err := mcpsrv.NewServer(
				mcpsrv.WithConfig(a.cfg),
				mcpsrv.WithInputs(args...),
			)
			if err != nil {
				return err
			}
			defer server.Close()

			slog.Info("starting critpath MCP server on stdio", slog.Int("inputs", len(args)))
			if err := server.Run(cmd.Context()); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			slog.Info("server stopped")
			return nil
		},
	}
}
