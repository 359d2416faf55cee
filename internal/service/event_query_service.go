package service

import (
	"context"
	"slices"
	"time"

	"github.com/prohmpiriya/explore-events/internal/domain"
	"github.com/prohmpiriya/explore-events/internal/metrics"
	"github.com/prohmpiriya/explore-events/internal/repository"
	"github.com/prohmpiriya/explore-events/internal/stats"
	"github.com/prohmpiriya/explore-events/pkg/logger"
	"github.com/prohmpiriya/explore-events/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// eventQueryService implements EventQueryService
type eventQueryService struct {
	eventRepo repository.EventRepository
	userRepo  repository.UserRepository
	hits      stats.HitRecorder
	decorator *eventDecorator
	appName   string
	now       func() time.Time
}

// NewEventQueryService creates a new event query service
func NewEventQueryService(
	eventRepo repository.EventRepository,
	userRepo repository.UserRepository,
	ratingRepo repository.RatingRepository,
	gateway stats.Gateway,
	cfg *Config,
) EventQueryService {
	now := cfg.clock()
	return &eventQueryService{
		eventRepo: eventRepo,
		userRepo:  userRepo,
		hits:      gateway.HitRecorder,
		decorator: newEventDecorator(ratingRepo, gateway.ViewCounter, now),
		appName:   cfg.appName(),
		now:       now,
	}
}

// GetUserEvents lists the events initiated by userID
func (s *eventQueryService) GetUserEvents(ctx context.Context, userID int64, page domain.Page) ([]*domain.Event, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.list_by_user")
	defer span.End()

	span.SetAttributes(attribute.Int64("user_id", userID))

	if err := page.Validate(); err != nil {
		return nil, fail(span, err)
	}
	if _, err := requireUser(ctx, s.userRepo, userID); err != nil {
		return nil, fail(span, err)
	}

	events, err := s.eventRepo.ListByInitiator(ctx, userID, page)
	if err != nil {
		return nil, fail(span, err)
	}
	if err := s.decorator.decorate(ctx, events...); err != nil {
		return nil, fail(span, err)
	}
	return events, nil
}

// GetUserEvent returns one event initiated by userID
func (s *eventQueryService) GetUserEvent(ctx context.Context, userID, eventID int64) (*domain.Event, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.get_by_user")
	defer span.End()

	if _, err := requireUser(ctx, s.userRepo, userID); err != nil {
		return nil, fail(span, err)
	}
	event, err := s.eventRepo.GetByIDAndInitiator(ctx, eventID, userID)
	if err != nil {
		return nil, fail(span, err)
	}
	if err := s.decorator.decorate(ctx, event); err != nil {
		return nil, fail(span, err)
	}
	return event, nil
}

// SearchAdmin searches every event regardless of state
func (s *eventQueryService) SearchAdmin(ctx context.Context, filter domain.EventSearch, page domain.Page) ([]*domain.Event, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.search_admin")
	defer span.End()

	if err := page.Validate(); err != nil {
		return nil, fail(span, err)
	}
	if err := filter.CheckRange(); err != nil {
		return nil, fail(span, err)
	}

	events, err := s.search(ctx, filter, page)
	if err != nil {
		return nil, fail(span, err)
	}

	span.SetAttributes(attribute.Int("result_count", len(events)))
	span.SetStatus(codes.Ok, "")
	return events, nil
}

// SearchPublic searches published events. Without a date range only
// upcoming events are returned. The visit is recorded once per call.
func (s *eventQueryService) SearchPublic(ctx context.Context, filter domain.EventSearch, page domain.Page, visit Visit) ([]*domain.Event, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.search_public")
	defer span.End()

	span.SetAttributes(
		attribute.String("text", filter.Text),
		attribute.String("sort", string(filter.Sort)),
	)

	if err := page.Validate(); err != nil {
		return nil, fail(span, err)
	}

	now := s.now()
	filter.States = []domain.EventState{domain.EventStatePublished}
	if filter.RangeStart == nil && filter.RangeEnd == nil {
		filter.RangeStart = &now
	}
	if err := filter.CheckRange(); err != nil {
		return nil, fail(span, err)
	}

	s.recordVisit(ctx, visit, now)

	events, err := s.search(ctx, filter, page)
	if err != nil {
		return nil, fail(span, err)
	}

	span.SetAttributes(attribute.Int("result_count", len(events)))
	span.SetStatus(codes.Ok, "")
	return events, nil
}

// GetPublicEvent returns a published event. Unpublished events do not exist
// for the public.
func (s *eventQueryService) GetPublicEvent(ctx context.Context, eventID int64, visit Visit) (*domain.Event, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.get_public")
	defer span.End()

	span.SetAttributes(attribute.Int64("event_id", eventID))

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, fail(span, err)
	}
	if !event.IsPublished() {
		return nil, fail(span, domain.ErrEventNotFound)
	}

	s.recordVisit(ctx, visit, s.now())

	if err := s.decorator.decorate(ctx, event); err != nil {
		return nil, fail(span, err)
	}

	span.SetStatus(codes.Ok, "")
	return event, nil
}

// search runs the filter and decorates the page. Orders that depend on
// decorations are applied in memory over the full match set.
func (s *eventQueryService) search(ctx context.Context, filter domain.EventSearch, page domain.Page) ([]*domain.Event, error) {
	if !filter.Sort.IsComputed() {
		events, err := s.eventRepo.Search(ctx, filter, &page)
		if err != nil {
			return nil, err
		}
		if err := s.decorator.decorate(ctx, events...); err != nil {
			return nil, err
		}
		return events, nil
	}

	events, err := s.eventRepo.Search(ctx, filter, nil)
	if err != nil {
		return nil, err
	}
	if err := s.decorator.decorate(ctx, events...); err != nil {
		return nil, err
	}

	sortByDecoration(events, filter.Sort)
	start, end := page.Slice(len(events))
	return events[start:end], nil
}

// sortByDecoration orders events by descending views or rating, ties by id
func sortByDecoration(events []*domain.Event, sort domain.EventSort) {
	key := func(e *domain.Event) int64 { return e.Views }
	if sort == domain.SortRating {
		key = func(e *domain.Event) int64 { return e.Rating }
	}
	slices.SortStableFunc(events, func(a, b *domain.Event) int {
		ka, kb := key(a), key(b)
		switch {
		case ka > kb:
			return -1
		case ka < kb:
			return 1
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
}

// recordVisit submits a hit. Failures are logged and never fail the read.
func (s *eventQueryService) recordVisit(ctx context.Context, visit Visit, at time.Time) {
	hit := stats.Hit{
		App:       s.appName,
		URI:       visit.URI,
		IP:        visit.IP,
		Timestamp: at,
	}
	if err := s.hits.RecordHit(ctx, hit); err != nil {
		metrics.RecordStatsError(ctx, "hit")
		logger.Get().Warn("failed to record hit",
			zap.String("uri", visit.URI),
			zap.Error(err),
		)
	}
}
