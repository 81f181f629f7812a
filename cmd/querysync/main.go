package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	qerrors "github.com/vango-dev/querysync/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		qerrors.PrintError(err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var verbose bool

	rootCmd := &cobra.Command{
		Use:   "querysync",
		Short: "Inspect and rewrite URL query strings the way a synced location does",
		Long: `querysync works with URL query strings using the same codec and sync
rules as the location component:

  • parse   decode a search string
  • encode  build a search string from key=value pairs
  • merge   merge pairs into a search string
  • sync    bind fields to a search string and show where both end up`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			slog.SetDefault(newLogger(cmd.ErrOrStderr(), verbose))
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log sync activity to stderr")

	rootCmd.AddCommand(
		parseCmd(),
		encodeCmd(),
		mergeCmd(),
		syncCmd(),
		versionCmd(),
	)

	return rootCmd
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
