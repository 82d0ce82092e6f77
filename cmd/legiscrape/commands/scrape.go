package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"legiscrape/cmd/legiscrape/utils"
	"legiscrape/lib/fetch"
	"legiscrape/lib/person"
	"legiscrape/lib/personstore"
	"legiscrape/lib/restyutil"
	"legiscrape/lib/scraper"
	"legiscrape/lib/scrapers"
	"legiscrape/lib/telemetry"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	scrapeChamber  string
	scrapeDb       string
	scrapeJsonl    string
	scrapeHttpDump string
)

func init() {
	scrapeCmd.Flags().StringVar(&scrapeChamber, "chamber", "", "Only scrape this chamber (upper or lower).")
	scrapeCmd.Flags().StringVar(&scrapeDb, "db", "", "The sqlite database to write records to, instead of the configured store.")
	scrapeCmd.Flags().StringVar(&scrapeJsonl, "jsonl", "", "Also write records as JSON lines to this file, - for stdout.")
	scrapeCmd.Flags().StringVar(&scrapeHttpDump, "http-dump", "", "Write every request and response to this directory.")
	rootCmd.AddCommand(scrapeCmd)
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape <code>... [--chamber upper|lower] [--db path] [--jsonl path|-] [--http-dump dir]",
	Short: "Scrapes the legislators of one or more jurisdictions.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, err := readConfig(configPath)
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		var jurisdictions []scrapers.Jurisdiction
		for _, code := range args {
			j, err := scrapers.Lookup(code)
			if err != nil {
				return err
			}
			jurisdictions = append(jurisdictions, j)
		}

		var chambers []person.Chamber
		if scrapeChamber != "" {
			chamber, err := person.ParseChamber(scrapeChamber)
			if err != nil {
				return fmt.Errorf("invalid --chamber: %w", err)
			}
			chambers = append(chambers, chamber)
		}

		var dump restyutil.InstrumentOutput
		if scrapeHttpDump != "" {
			out, err := restyutil.NewFilesystemOutput(scrapeHttpDump)
			if err != nil {
				return fmt.Errorf("failed to create http dump directory: %w", err)
			}
			dump = out
		}
		client, err := fetch.NewClient(cfg.Fetch, dump)
		if err != nil {
			return fmt.Errorf("failed to create http client: %w", err)
		}

		store, err := personstore.Open(ctx, cfg.storeConfig(scrapeDb))
		if err != nil {
			return fmt.Errorf("failed to open store: %w", err)
		}
		defer store.Close()

		var summaryOut io.Writer = os.Stdout
		var jsonl scraper.Sink
		switch scrapeJsonl {
		case "":
		case "-":
			jsonl = scraper.NewJSONLines(os.Stdout)
			summaryOut = os.Stderr
		default:
			f, err := os.Create(scrapeJsonl)
			if err != nil {
				return fmt.Errorf("failed to create jsonl output: %w", err)
			}
			defer f.Close()
			jsonl = scraper.NewJSONLines(f)
		}

		scrape := scrapeJob{
			config:   cfg,
			client:   client,
			store:    store,
			jsonl:    jsonl,
			counters: telemetry.NewScrapeCounters(),
			chambers: chambers,
		}

		t := utils.NewTableTo(summaryOut)
		t.AppendHeader(table.Row{"Jurisdiction", "Run", "Records", "Skipped", "Field warnings", "Error"})

		var failed []string
		for _, j := range jurisdictions {
			if ctx.Err() != nil {
				break
			}
			runId, summary, err := scrape.run(ctx, j)
			errText := ""
			if err != nil {
				slog.Error("scrape failed", "jurisdiction", j.Code, "err", err)
				failed = append(failed, j.Code)
				errText = err.Error()
			}
			t.AppendRow(table.Row{j.Code, runId, summary.Records, summary.Skipped, summary.FieldWarnings, errText})
		}
		t.Render()

		return scrapeOutcome(ctx, failed, len(jurisdictions))
	},
}

// scrapeOutcome is the command's result once every jurisdiction has been
// tried, so the store and outputs are closed before the process exits.
func scrapeOutcome(ctx context.Context, failed []string, total int) error {
	if len(failed) > 0 {
		return fmt.Errorf("%d of %d jurisdictions failed: %s", len(failed), total, strings.Join(failed, ", "))
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("scrape interrupted: %w", err)
	}
	return nil
}

type scrapeJob struct {
	config   Config
	client   *fetch.Client
	store    personstore.Store
	jsonl    scraper.Sink
	counters telemetry.ScrapeCounters
	chambers []person.Chamber
}

// run scrapes one jurisdiction into a new store run. The run is finished
// with the driver's outcome even when the driver stopped on an error.
func (s scrapeJob) run(ctx context.Context, j scrapers.Jurisdiction) (string, scraper.Summary, error) {
	summary := scraper.Summary{Jurisdiction: j.Code}

	cfg, err := s.config.jurisdictionConfig(j)
	if err != nil {
		return "", summary, err
	}

	run, err := s.store.BeginRun(ctx, j.Code)
	if err != nil {
		return "", summary, fmt.Errorf("begin run: %w", err)
	}

	var sink scraper.Sink = run
	if s.jsonl != nil {
		sink = scraper.Tee(run, s.jsonl)
	}

	summary, runErr := scraper.Driver{
		Jurisdiction: j.Code,
		Extractor:    j.New(s.client, cfg),
		Config:       cfg,
		Sink:         sink,
		Counters:     s.counters,
	}.Run(ctx, s.chambers...)

	err = run.Finish(context.WithoutCancel(ctx), summary, runErr)
	if err != nil {
		err = fmt.Errorf("finish run: %w", err)
	}
	return run.ID, summary, errors.Join(runErr, err)
}
