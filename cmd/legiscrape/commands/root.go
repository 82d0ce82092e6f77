package commands

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"legiscrape/lib/telemetry"

	"github.com/spf13/cobra"
)

var (
	verbose    bool
	configPath string
	tel        telemetry.Telemetry
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug messages.")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "legiscrape.json5", "The config file, a .local variant next to it is merged over it.")
}

var rootCmd = &cobra.Command{
	Use:           "legiscrape",
	Short:         "legiscrape scrapes state legislature rosters into normalized person records.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		telemetry.InitSlog(verbose)

		t, err := telemetry.SetupFromEnv(cmd.Context(), "legiscrape")
		if errors.Is(err, os.ErrNotExist) {
			slog.Debug("no telemetry config found, continuing without exporters")
			return
		}
		if err != nil {
			slog.Warn("failed to setup telemetry, continuing without exporters", "err", err)
			return
		}
		tel = t
		telemetry.InstrumentPerfStats(cmd.Context())
	},
}

func flushTelemetry() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	err := tel.Shutdown(ctx)
	if err != nil {
		slog.Warn("failed to flush telemetry", "err", err)
	}
}

// ExecuteContext runs the command line. Commands return their errors
// instead of exiting, so their deferred closes run and telemetry is flushed
// before the exit code is set.
func ExecuteContext(ctx context.Context) {
	err := rootCmd.ExecuteContext(ctx)
	flushTelemetry()
	if err != nil {
		slog.Error("command failed", "err", err)
		os.Exit(1)
	}
}
