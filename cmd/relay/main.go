// Command slskd-relay receives slskd webhook notifications over HTTP and
// forwards them to a Discord channel webhook.
//
// Subcommands:
//
//	serve    run the relay (default when no subcommand is given)
//	render   print the Discord payload an event would produce, without sending it
//	version  print build metadata
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"slskdrelay/internal/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "slskd-relay",
		Short:        "Relay slskd notifications to a Discord webhook",
		Long:         "slskd-relay accepts slskd webhook events and posts them to Discord as rich embeds.",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE:         runServe,
	}

	root.AddCommand(newServeCmd())
	root.AddCommand(newRenderCmd())
	root.AddCommand(newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := config.NewBuildInfo()
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "slskd-relay %s (commit %s, built %s)\n",
				info.Version, info.Commit, info.BuildTime)
			return err
		},
	}
}

// newLogger creates a structured slog.Logger writing to w. format "text"
// selects the human-readable handler; anything else logs JSON.
func newLogger(w io.Writer, level, format string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: lvl}
	if strings.ToLower(format) == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}
