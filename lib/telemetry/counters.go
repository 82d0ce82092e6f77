package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ScrapeCounters counts the outcome of every listing entry of a run.
type ScrapeCounters struct {
	records       metric.Int64Counter
	skipped       metric.Int64Counter
	fieldWarnings metric.Int64Counter
}

// NewScrapeCounters binds the counters to the current global meter
// provider, call it after Setup.
func NewScrapeCounters() ScrapeCounters {
	meter := otel.Meter("legiscrape.scrape")
	records, _ := meter.Int64Counter("scrape.records")
	skipped, _ := meter.Int64Counter("scrape.skipped")
	fieldWarnings, _ := meter.Int64Counter("scrape.field_warnings")
	return ScrapeCounters{
		records:       records,
		skipped:       skipped,
		fieldWarnings: fieldWarnings,
	}
}

func runAttrs(jurisdiction, chamber string) metric.MeasurementOption {
	return metric.WithAttributes(
		attribute.String("jurisdiction", jurisdiction),
		attribute.String("chamber", chamber),
	)
}

func (c ScrapeCounters) Record(ctx context.Context, jurisdiction, chamber string) {
	if c.records != nil {
		c.records.Add(ctx, 1, runAttrs(jurisdiction, chamber))
	}
}

func (c ScrapeCounters) Skip(ctx context.Context, jurisdiction, chamber, reason string) {
	if c.skipped != nil {
		c.skipped.Add(ctx, 1, metric.WithAttributes(
			attribute.String("jurisdiction", jurisdiction),
			attribute.String("chamber", chamber),
			attribute.String("reason", reason),
		))
	}
}

func (c ScrapeCounters) FieldWarning(ctx context.Context, jurisdiction, chamber string) {
	if c.fieldWarnings != nil {
		c.fieldWarnings.Add(ctx, 1, runAttrs(jurisdiction, chamber))
	}
}
