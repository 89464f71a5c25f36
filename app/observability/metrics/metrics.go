package metrics

import (
	"log"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the application's metric instruments.
type AppMetrics struct {
	RecommendationsTotal          metric.Int64Counter
	RecommendationDurationSeconds metric.Float64Histogram
	RetrievalErrorsTotal          metric.Int64Counter
	DialogueTurnsTotal            metric.Int64Counter
	ItineraryGenerationsTotal     metric.Int64Counter
	EmbeddingCacheHitsTotal       metric.Int64Counter
	DbQueryDurationSeconds        metric.Float64Histogram
	DbQueryErrorsTotal            metric.Int64Counter
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics creates the instruments once from the global MeterProvider.
// Call it after the provider is installed; later calls are no-ops.
func InitAppMetrics() {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("ai-travel-assistant")
		m := &AppMetrics{}

		m.RecommendationsTotal = counter(meter, "recommendations_total", "Total number of ranking runs", "{run}")
		m.RecommendationDurationSeconds = histogram(meter, "recommendation_duration_seconds", "Duration of ranking runs in seconds")
		m.RetrievalErrorsTotal = counter(meter, "retrieval_errors_total", "Vector store or embedding failures", "{error}")
		m.DialogueTurnsTotal = counter(meter, "dialogue_turns_total", "Conversation turns processed", "{turn}")
		m.ItineraryGenerationsTotal = counter(meter, "itinerary_generations_total", "Itineraries produced, labelled by fallback use", "{itinerary}")
		m.EmbeddingCacheHitsTotal = counter(meter, "embedding_cache_hits_total", "Embeddings served from the in-process cache", "{hit}")
		m.DbQueryDurationSeconds = histogram(meter, "db_query_duration_seconds", "Duration of database queries in seconds")
		m.DbQueryErrorsTotal = counter(meter, "db_query_errors_total", "Total number of database query errors", "{error}")

		appMetrics = m
	})
}

// Get returns the instruments, initialising them on first use.
func Get() *AppMetrics {
	InitAppMetrics()
	return appMetrics
}

func counter(meter metric.Meter, name, desc, unit string) metric.Int64Counter {
	c, err := meter.Int64Counter(name, metric.WithDescription(desc), metric.WithUnit(unit))
	if err != nil {
		log.Fatalf("Metrics: Failed to create %s: %v", name, err)
	}
	return c
}

func histogram(meter metric.Meter, name, desc string) metric.Float64Histogram {
	h, err := meter.Float64Histogram(name, metric.WithDescription(desc), metric.WithUnit("s"))
	if err != nil {
		log.Fatalf("Metrics: Failed to create %s: %v", name, err)
	}
	return h
}
