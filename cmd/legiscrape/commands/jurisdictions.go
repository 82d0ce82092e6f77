package commands

import (
	"strings"

	"legiscrape/cmd/legiscrape/utils"
	"legiscrape/lib/scrapers"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(jurisdictionsCmd)
}

var jurisdictionsCmd = &cobra.Command{
	Use:   "jurisdictions",
	Short: "Prints the jurisdictions that can be scraped.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		t := utils.NewTable()
		t.AppendHeader(table.Row{"Code", "Name", "Chambers", "Session"})
		for _, code := range scrapers.Codes() {
			j := scrapers.Registry[code]
			cfg := j.Defaults()

			var chambers []string
			for _, chamber := range cfg.ChamberList() {
				chambers = append(chambers, string(chamber)+" ("+cfg.Label(chamber)+")")
			}
			t.AppendRow(table.Row{j.Code, j.Name, strings.Join(chambers, ", "), cfg.Session})
		}
		t.Render()
	},
}
