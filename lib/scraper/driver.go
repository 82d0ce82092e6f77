package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"legiscrape/lib/fetch"
	"legiscrape/lib/person"
	"legiscrape/lib/telemetry"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("legiscrape.lib.scraper")

type Summary struct {
	Jurisdiction  string `json:"jurisdiction"`
	Records       int    `json:"records"`
	Skipped       int    `json:"skipped"`
	FieldWarnings int    `json:"field_warnings"`
}

// Driver runs one jurisdiction: every listing entry of every chamber is
// fetched, built and emitted in listing order, one at a time.
type Driver struct {
	Jurisdiction string
	Extractor    Extractor
	Config       Config
	Sink         Sink
	Counters     telemetry.ScrapeCounters
}

// Run scrapes chambers, all of the configured chambers when none are
// given. It stops at the first fatal error, the summary still counts what
// was emitted before it.
func (d Driver) Run(ctx context.Context, chambers ...person.Chamber) (Summary, error) {
	ctx, span := tracer.Start(ctx, "driver:Run", trace.WithAttributes(
		attribute.String("jurisdiction", d.Jurisdiction),
	))
	defer span.End()

	summary := Summary{Jurisdiction: d.Jurisdiction}
	if len(chambers) == 0 {
		chambers = d.Config.ChamberList()
	}

	for _, chamber := range chambers {
		err := d.runChamber(ctx, chamber, &summary)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "run failed")
			return summary, fmt.Errorf("%s: %w", d.Jurisdiction, err)
		}
	}

	slog.InfoContext(
		ctx, "run finished",
		"jurisdiction", d.Jurisdiction,
		"records", summary.Records,
		"skipped", summary.Skipped,
		"field_warnings", summary.FieldWarnings,
	)
	return summary, nil
}

func (d Driver) runChamber(ctx context.Context, chamber person.Chamber, summary *Summary) error {
	if _, ok := d.Config.Chambers[chamber]; !ok {
		return fmt.Errorf("no %s chamber", chamber)
	}

	entries, err := d.Extractor.Listing(ctx, chamber)
	if err != nil {
		return fmt.Errorf("%s listing: %w", chamber, err)
	}
	slog.DebugContext(ctx, "listing fetched", "jurisdiction", d.Jurisdiction, "chamber", chamber, "entries", len(entries))

	seen := map[string]struct{}{}
	for _, entry := range entries {
		if entry.Chamber == "" {
			entry.Chamber = chamber
		}

		rec, warnings, err := d.process(ctx, entry)
		if errors.Is(err, ErrSkip) {
			d.skip(ctx, summary, entry, err.Error())
			continue
		}
		if err != nil {
			return fmt.Errorf("%s seat %s: %w", chamber, entry.ID, err)
		}

		for _, w := range warnings {
			summary.FieldWarnings++
			d.Counters.FieldWarning(ctx, d.Jurisdiction, string(chamber))
			slog.WarnContext(
				ctx, "field dropped",
				"jurisdiction", d.Jurisdiction,
				"chamber", chamber,
				"seat", entry.ID,
				"reason", w.String(),
			)
		}

		if _, duplicate := seen[rec.Key()]; duplicate {
			d.skip(ctx, summary, entry, fmt.Sprintf("duplicate of %s", rec.Key()))
			continue
		}
		seen[rec.Key()] = struct{}{}

		err = d.Sink.Put(ctx, rec)
		if err != nil {
			return fmt.Errorf("emit %s: %w", rec.Name, err)
		}
		summary.Records++
		d.Counters.Record(ctx, d.Jurisdiction, string(chamber))
	}
	return nil
}

// process returns an error wrapping ErrSkip for entries that should not
// produce a record.
func (d Driver) process(ctx context.Context, entry Entry) (*person.Record, []FieldWarning, error) {
	if person.IsVacantOrRetired(entry.Notice) {
		return nil, nil, Skip("vacant or retired: %s", entry.Notice)
	}

	raw, err := d.Extractor.Detail(ctx, entry)
	if err != nil {
		if errors.Is(err, ErrSkip) {
			return nil, nil, err
		}
		if fetch.IsUnavailable(err) {
			return nil, nil, Skip("detail unavailable: %s", err)
		}
		return nil, nil, err
	}
	if person.IsVacantOrRetired(raw.Name) {
		return nil, nil, Skip("vacant or retired: %s", raw.Name)
	}
	if len(raw.Sources) == 0 && entry.URL != "" {
		raw.Sources = []string{entry.URL}
	}

	return Build(raw, entry.Chamber, d.Config)
}

func (d Driver) skip(ctx context.Context, summary *Summary, entry Entry, reason string) {
	summary.Skipped++
	d.Counters.Skip(ctx, d.Jurisdiction, string(entry.Chamber), skipKind(reason))
	slog.WarnContext(
		ctx, "entry skipped",
		"jurisdiction", d.Jurisdiction,
		"chamber", entry.Chamber,
		"seat", entry.ID,
		"reason", reason,
	)
}

func skipKind(reason string) string {
	reason = strings.ToLower(reason)
	for _, kind := range []string{"vacant", "duplicate", "unavailable"} {
		if strings.Contains(reason, kind) {
			return kind
		}
	}
	return "other"
}
