package service

import (
	"context"
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

// eventService implements EventService
type eventService struct {
	eventRepo    repository.EventRepository
	categoryRepo repository.CategoryRepository
	userRepo     repository.UserRepository
	decorator    *eventDecorator
	now          func() time.Time
}

// NewEventService creates a new event service
func NewEventService(
	eventRepo repository.EventRepository,
	categoryRepo repository.CategoryRepository,
	userRepo repository.UserRepository,
	ratingRepo repository.RatingRepository,
	views stats.ViewCounter,
	cfg *Config,
) EventService {
	now := cfg.clock()
	return &eventService{
		eventRepo:    eventRepo,
		categoryRepo: categoryRepo,
		userRepo:     userRepo,
		decorator:    newEventDecorator(ratingRepo, views, now),
		now:          now,
	}
}

// CreateEvent creates a pending event initiated by userID
func (s *eventService) CreateEvent(ctx context.Context, userID int64, draft domain.EventDraft) (*domain.Event, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.create")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("user_id", userID),
		attribute.Int64("category_id", draft.CategoryID),
	)

	user, err := requireUser(ctx, s.userRepo, userID)
	if err != nil {
		return nil, fail(span, err)
	}
	category, err := resolveCategory(ctx, s.categoryRepo, draft.CategoryID)
	if err != nil {
		return nil, fail(span, err)
	}

	event, err := domain.NewEvent(*user, *category, draft, s.now())
	if err != nil {
		return nil, fail(span, err)
	}
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, fail(span, err)
	}

	metrics.RecordEventCreated(ctx, category.ID)
	logger.Get().Info("event created",
		zap.Int64("event_id", event.ID),
		zap.Int64("initiator_id", userID),
	)

	span.SetAttributes(attribute.Int64("event_id", event.ID))
	span.SetStatus(codes.Ok, "")
	return event, nil
}

// UpdateEventByUser applies an initiator's edit. Published events are frozen
// for their initiator and the resulting date must be at least
// UserEventLeadTime away.
func (s *eventService) UpdateEventByUser(ctx context.Context, userID, eventID int64, patch domain.EventPatch) (*domain.Event, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.update_by_user")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("user_id", userID),
		attribute.Int64("event_id", eventID),
	)

	if _, err := requireUser(ctx, s.userRepo, userID); err != nil {
		return nil, fail(span, err)
	}
	event, err := s.eventRepo.GetByIDAndInitiator(ctx, eventID, userID)
	if err != nil {
		return nil, fail(span, err)
	}
	if event.IsPublished() {
		return nil, fail(span, domain.ErrEventAlreadyPublished)
	}

	if err := s.applyPatch(ctx, event, patch); err != nil {
		return nil, fail(span, err)
	}
	if err := event.CheckEventDate(s.now(), domain.UserEventLeadTime); err != nil {
		return nil, fail(span, err)
	}
	if err := event.ApplyUserAction(patch.Action()); err != nil {
		return nil, fail(span, err)
	}

	if err := s.eventRepo.Update(ctx, event); err != nil {
		return nil, fail(span, err)
	}
	if err := s.decorator.decorate(ctx, event); err != nil {
		return nil, fail(span, err)
	}

	span.SetStatus(codes.Ok, "")
	return event, nil
}

// UpdateEventByAdmin applies an administrator's edit. The event date is
// checked against AdminEventLeadTime when it changes or when publishing.
func (s *eventService) UpdateEventByAdmin(ctx context.Context, eventID int64, patch domain.EventPatch) (*domain.Event, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.update_by_admin")
	defer span.End()

	action := patch.Action()
	span.SetAttributes(
		attribute.Int64("event_id", eventID),
		attribute.String("state_action", string(action)),
	)

	if action != "" && !action.IsAdminAction() {
		return nil, fail(span, domain.ErrInvalidStateAction)
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, fail(span, err)
	}

	if err := s.applyPatch(ctx, event, patch); err != nil {
		return nil, fail(span, err)
	}

	now := s.now()
	if patch.EventDate != nil || action == domain.ActionPublishEvent {
		if err := event.CheckEventDate(now, domain.AdminEventLeadTime); err != nil {
			return nil, fail(span, err)
		}
	}
	if err := event.ApplyAdminAction(action, now); err != nil {
		return nil, fail(span, err)
	}

	if err := s.eventRepo.Update(ctx, event); err != nil {
		return nil, fail(span, err)
	}

	if action != "" {
		metrics.RecordEventModerated(ctx, action == domain.ActionPublishEvent)
		logger.Get().Info("event moderated",
			zap.Int64("event_id", event.ID),
			zap.String("action", string(action)),
			zap.String("state", event.State.String()),
		)
	}

	if err := s.decorator.decorate(ctx, event); err != nil {
		return nil, fail(span, err)
	}

	span.SetStatus(codes.Ok, "")
	return event, nil
}

func (s *eventService) applyPatch(ctx context.Context, event *domain.Event, patch domain.EventPatch) error {
	var category *domain.Category
	if patch.CategoryID != nil {
		c, err := resolveCategory(ctx, s.categoryRepo, *patch.CategoryID)
		if err != nil {
			return err
		}
		category = c
	}
	patch.ApplyTo(event, category)
	if patch.ParticipantLimit != nil {
		return event.CheckParticipantLimit()
	}
	return nil
}
