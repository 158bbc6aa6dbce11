package metrics

import (
	"log"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the application's metric instruments.
type AppMetrics struct {
	AttractionsIngestedTotal   metric.Int64Counter
	AttractionsPersistedTotal  metric.Int64Counter
	AttractionUpsertErrorTotal metric.Int64Counter
	EnrichmentStageSeconds     metric.Float64Histogram
	ExternalCallSeconds        metric.Float64Histogram
	ExternalCallErrorsTotal    metric.Int64Counter
	ItinerariesBuiltTotal      metric.Int64Counter
	DbQueryDurationSeconds     metric.Float64Histogram
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics initializes the global metrics instruments once, using the
// globally configured MeterProvider. Call it after the provider is installed;
// before that the instruments are bound to the no-op provider.
func InitAppMetrics() {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("go-walking-tours")
		m := &AppMetrics{}

		m.AttractionsIngestedTotal = int64Counter(meter, "attractions_ingested_total",
			"Attractions produced by the normalizer per ingestion run", "{attraction}")
		m.AttractionsPersistedTotal = int64Counter(meter, "attractions_persisted_total",
			"Attractions written by the upsert stage", "{attraction}")
		m.AttractionUpsertErrorTotal = int64Counter(meter, "attraction_upsert_errors_total",
			"Attractions skipped because the upsert failed", "{error}")
		m.EnrichmentStageSeconds = float64Histogram(meter, "enrichment_stage_duration_seconds",
			"Duration of one enrichment stage over a batch")
		m.ExternalCallSeconds = float64Histogram(meter, "external_call_duration_seconds",
			"Duration of outbound provider calls")
		m.ExternalCallErrorsTotal = int64Counter(meter, "external_call_errors_total",
			"Outbound provider calls that failed", "{error}")
		m.ItinerariesBuiltTotal = int64Counter(meter, "itineraries_built_total",
			"Itineraries produced by the builder", "{itinerary}")
		m.DbQueryDurationSeconds = float64Histogram(meter, "db_query_duration_seconds",
			"Duration of database queries in seconds")

		appMetrics = m
	})
}

// Get returns the global AppMetrics, initialising it on first use.
func Get() *AppMetrics {
	InitAppMetrics()
	return appMetrics
}

func int64Counter(meter metric.Meter, name, desc, unit string) metric.Int64Counter {
	c, err := meter.Int64Counter(name, metric.WithDescription(desc), metric.WithUnit(unit))
	if err != nil {
		log.Fatalf("Metrics: Failed to create %s: %v", name, err)
	}
	return c
}

func float64Histogram(meter metric.Meter, name, desc string) metric.Float64Histogram {
	h, err := meter.Float64Histogram(name, metric.WithDescription(desc), metric.WithUnit("s"))
	if err != nil {
		log.Fatalf("Metrics: Failed to create %s: %v", name, err)
	}
	return h
}
