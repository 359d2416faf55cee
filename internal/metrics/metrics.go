package metrics

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/attribute"

	"github.com/prohmpiriya/explore-events/pkg/telemetry"
)

var (
	// Event lifecycle counters
	EventsCreated   *telemetry.Counter
	EventsPublished *telemetry.Counter
	EventsRejected  *telemetry.Counter

	// Participation counters
	RequestsCreated   *telemetry.Counter
	RequestsConfirmed *telemetry.Counter
	RequestsRejected  *telemetry.Counter
	RequestsCancelled *telemetry.Counter

	// Rating counters
	VotesAdded   *telemetry.Counter
	VotesRemoved *telemetry.Counter

	// Stats gateway
	StatsErrors        *telemetry.Counter
	StatsQueryDuration *telemetry.Histogram

	initOnce sync.Once
	initErr  error
)

// Init initializes all service metrics
func Init() error {
	initOnce.Do(func() {
		initErr = initMetrics()
	})
	return initErr
}

func counter(name, description string, dst **telemetry.Counter) error {
	c, err := telemetry.NewCounter(telemetry.MetricOpts{
		Name:        name,
		Description: description,
		Unit:        "1",
	})
	if err != nil {
		return err
	}
	*dst = c
	return nil
}

func initMetrics() error {
	counters := []struct {
		name, description string
		dst               **telemetry.Counter
	}{
		{"events_created_total", "Total number of events created", &EventsCreated},
		{"events_published_total", "Total number of events published by an administrator", &EventsPublished},
		{"events_rejected_total", "Total number of events rejected by an administrator", &EventsRejected},
		{"participation_requests_created_total", "Total number of participation requests created", &RequestsCreated},
		{"participation_requests_confirmed_total", "Total number of participation requests confirmed", &RequestsConfirmed},
		{"participation_requests_rejected_total", "Total number of participation requests rejected", &RequestsRejected},
		{"participation_requests_cancelled_total", "Total number of participation requests cancelled", &RequestsCancelled},
		{"event_votes_added_total", "Total number of event votes added", &VotesAdded},
		{"event_votes_removed_total", "Total number of event votes removed", &VotesRemoved},
		{"stats_gateway_errors_total", "Total number of failed calls to the statistics collector", &StatsErrors},
	}

	for _, c := range counters {
		if err := counter(c.name, c.description, c.dst); err != nil {
			return err
		}
	}

	var err error
	StatsQueryDuration, err = telemetry.NewHistogramWithBuckets(telemetry.MetricOpts{
		Name:        "stats_gateway_query_duration_seconds",
		Description: "Duration of view-count queries to the statistics collector",
		Unit:        "s",
	}, []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5})
	return err
}

// RecordEventCreated records an event creation
func RecordEventCreated(ctx context.Context, categoryID int64) {
	if EventsCreated != nil {
		EventsCreated.Inc(ctx, attribute.Int64("category_id", categoryID))
	}
}

// RecordEventModerated records an administrator publish or reject
func RecordEventModerated(ctx context.Context, published bool) {
	if published {
		if EventsPublished != nil {
			EventsPublished.Inc(ctx)
		}
		return
	}
	if EventsRejected != nil {
		EventsRejected.Inc(ctx)
	}
}

// RecordRequestCreated records a new participation request with its initial status
func RecordRequestCreated(ctx context.Context, status string) {
	if RequestsCreated != nil {
		RequestsCreated.Inc(ctx, attribute.String("status", status))
	}
}

// RecordRequestsDecided records the outcome of a bulk status update
func RecordRequestsDecided(ctx context.Context, confirmed, rejected int) {
	if RequestsConfirmed != nil && confirmed > 0 {
		RequestsConfirmed.Add(ctx, int64(confirmed))
	}
	if RequestsRejected != nil && rejected > 0 {
		RequestsRejected.Add(ctx, int64(rejected))
	}
}

// RecordRequestCancelled records a cancellation
func RecordRequestCancelled(ctx context.Context) {
	if RequestsCancelled != nil {
		RequestsCancelled.Inc(ctx)
	}
}

// RecordVote records a vote being added or removed
func RecordVote(ctx context.Context, added bool, value int) {
	attr := attribute.Int("value", value)
	if added {
		if VotesAdded != nil {
			VotesAdded.Inc(ctx, attr)
		}
		return
	}
	if VotesRemoved != nil {
		VotesRemoved.Inc(ctx, attr)
	}
}

// RecordStatsError records a failed call to the statistics collector
func RecordStatsError(ctx context.Context, operation string) {
	if StatsErrors != nil {
		StatsErrors.Inc(ctx, attribute.String("operation", operation))
	}
}

// RecordStatsQuery records the duration of a view-count query
func RecordStatsQuery(ctx context.Context, seconds float64) {
	if StatsQueryDuration != nil {
		StatsQueryDuration.Record(ctx, seconds)
	}
}
