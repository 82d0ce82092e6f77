package commands

import (
	"fmt"
	"time"

	"legiscrape/cmd/legiscrape/utils"
	"legiscrape/lib/personstore"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var runsDb string

func init() {
	runsCmd.Flags().StringVar(&runsDb, "db", "", "The sqlite database to read from, instead of the configured store.")
	rootCmd.AddCommand(runsCmd)
}

var runsCmd = &cobra.Command{
	Use:   "runs [--db path]",
	Short: "Prints every scrape run, newest first.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, err := readConfig(configPath)
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}
		store, err := personstore.Open(ctx, cfg.storeConfig(runsDb))
		if err != nil {
			return fmt.Errorf("failed to open store: %w", err)
		}
		defer store.Close()

		runs, err := store.Runs(ctx)
		if err != nil {
			return fmt.Errorf("failed to list runs: %w", err)
		}

		t := utils.NewTable()
		t.AppendHeader(table.Row{"Run", "Jurisdiction", "Started", "Took", "Records", "Skipped", "Field warnings", "Error"})
		for _, run := range runs {
			took := "running"
			if run.Finished() {
				took = run.FinishedAt.Sub(run.StartedAt).String()
			}
			t.AppendRow(table.Row{
				run.ID,
				run.Jurisdiction,
				run.StartedAt.Format(time.DateTime),
				took,
				run.Records,
				run.Skipped,
				run.FieldWarnings,
				run.Error,
			})
		}
		t.Render()
		return nil
	},
}
