package service

import (
	"context"
	"fmt"
	"time"

	"github.com/prohmpiriya/explore-events/internal/domain"
	"github.com/prohmpiriya/explore-events/internal/metrics"
	"github.com/prohmpiriya/explore-events/internal/repository"
	"github.com/prohmpiriya/explore-events/internal/stats"
)

// statsWindowMargin widens the view-count window on both ends
const statsWindowMargin = time.Minute

// eventDecorator fills the Views and Rating decorations of events
type eventDecorator struct {
	ratingRepo repository.RatingRepository
	views      stats.ViewCounter
	now        func() time.Time
}

func newEventDecorator(ratingRepo repository.RatingRepository, views stats.ViewCounter, now func() time.Time) *eventDecorator {
	return &eventDecorator{ratingRepo: ratingRepo, views: views, now: now}
}

// decorate sets Rating and Views on every event. Events absent from either
// source get 0. A failed view-count query fails the call.
func (d *eventDecorator) decorate(ctx context.Context, events ...*domain.Event) error {
	if len(events) == 0 {
		return nil
	}

	ids := make([]int64, len(events))
	uris := make([]string, len(events))
	start := events[0].CreatedOn
	for i, e := range events {
		ids[i] = e.ID
		uris[i] = stats.EventURI(e.ID)
		if e.CreatedOn.Before(start) {
			start = e.CreatedOn
		}
	}

	ratings, err := d.ratingRepo.SumForEvents(ctx, ids)
	if err != nil {
		return err
	}

	began := time.Now()
	viewStats, err := d.views.Views(ctx, start.Add(-statsWindowMargin), d.now().Add(statsWindowMargin), uris, true)
	if err != nil {
		metrics.RecordStatsError(ctx, "views")
		return fmt.Errorf("failed to query view stats: %w", err)
	}
	metrics.RecordStatsQuery(ctx, time.Since(began).Seconds())

	views := stats.ViewsByEventID(viewStats)
	for _, e := range events {
		e.Rating = ratings[e.ID]
		e.Views = views[e.ID]
	}
	return nil
}
