package commands

import (
	"fmt"
	"strings"

	"legiscrape/cmd/legiscrape/utils"
	"legiscrape/lib/person"
	"legiscrape/lib/personstore"
	"legiscrape/lib/scrapers"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	listRun string
	listDb  string
)

func init() {
	listCmd.Flags().StringVar(&listRun, "run", "", "The run to list, the latest run of the jurisdiction by default.")
	listCmd.Flags().StringVar(&listDb, "db", "", "The sqlite database to read from, instead of the configured store.")
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:   "list <code> [--run id] [--db path]",
	Short: "Prints the records of a jurisdiction's scrape run.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		j, err := scrapers.Lookup(args[0])
		if err != nil {
			return err
		}
		cfg, err := readConfig(configPath)
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}
		store, err := personstore.Open(ctx, cfg.storeConfig(listDb))
		if err != nil {
			return fmt.Errorf("failed to open store: %w", err)
		}
		defer store.Close()

		var run personstore.RunInfo
		if listRun != "" {
			run, err = store.Run(ctx, listRun)
		} else {
			run, err = store.LatestRun(ctx, j.Code)
		}
		if err != nil {
			return fmt.Errorf("failed to find run: %w", err)
		}

		records, err := store.Records(ctx, run.ID)
		if err != nil {
			return fmt.Errorf("failed to read records: %w", err)
		}

		t := utils.NewTable()
		t.SetTitle("%s run %s", j.Name, run.ID)
		t.AppendHeader(table.Row{"Chamber", "District", "Name", "Party", "Phone", "Email"})
		for _, rec := range records {
			t.AppendRow(table.Row{
				rec.Chamber,
				rec.District,
				rec.Name,
				rec.Party,
				contacts(rec, person.Voice),
				contacts(rec, person.Email),
			})
		}
		t.AppendFooter(table.Row{"", "", len(records), "", "", ""})
		t.Render()
		return nil
	},
}

func contacts(rec *person.Record, kind person.ContactKind) string {
	var values []string
	for _, c := range rec.ContactDetails {
		if c.Kind == kind {
			values = append(values, c.Value)
		}
	}
	return strings.Join(values, "\n")
}
