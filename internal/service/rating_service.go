package service

import (
	"context"

	"github.com/prohmpiriya/explore-events/internal/domain"
	"github.com/prohmpiriya/explore-events/internal/metrics"
	"github.com/prohmpiriya/explore-events/internal/repository"
	"github.com/prohmpiriya/explore-events/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// ratingService implements RatingService
type ratingService struct {
	ratingRepo  repository.RatingRepository
	eventRepo   repository.EventRepository
	requestRepo repository.RequestRepository
	userRepo    repository.UserRepository
}

// NewRatingService creates a new rating service
func NewRatingService(
	ratingRepo repository.RatingRepository,
	eventRepo repository.EventRepository,
	requestRepo repository.RequestRepository,
	userRepo repository.UserRepository,
) RatingService {
	return &ratingService{
		ratingRepo:  ratingRepo,
		eventRepo:   eventRepo,
		requestRepo: requestRepo,
		userRepo:    userRepo,
	}
}

// AddRating stores a vote of a confirmed participant and returns the event's
// new rating
func (s *ratingService) AddRating(ctx context.Context, userID, eventID int64, value domain.VoteValue) (int64, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.rating.add")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("user_id", userID),
		attribute.Int64("event_id", eventID),
		attribute.Int("value", int(value)),
	)

	if !value.IsValid() {
		return 0, fail(span, domain.ErrInvalidVote)
	}
	if _, err := requireUser(ctx, s.userRepo, userID); err != nil {
		return 0, fail(span, err)
	}
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return 0, fail(span, err)
	}
	participant, err := s.requestRepo.ExistsWithStatus(ctx, userID, eventID, domain.RequestStatusConfirmed)
	if err != nil {
		return 0, fail(span, err)
	}
	if err := domain.CheckCanRate(userID, event, participant); err != nil {
		return 0, fail(span, err)
	}

	vote := domain.Vote{RaterID: userID, EventID: eventID, Value: value}
	if err := s.ratingRepo.Add(ctx, vote); err != nil {
		return 0, fail(span, err)
	}
	metrics.RecordVote(ctx, true, int(value))

	rating, err := s.ratingRepo.SumForEvent(ctx, eventID)
	if err != nil {
		return 0, fail(span, err)
	}

	span.SetAttributes(attribute.Int64("rating", rating))
	span.SetStatus(codes.Ok, "")
	return rating, nil
}

// DeleteRating removes the caller's vote with the given value
func (s *ratingService) DeleteRating(ctx context.Context, userID, eventID int64, value domain.VoteValue) error {
	ctx, span := telemetry.StartSpan(ctx, "service.rating.delete")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("user_id", userID),
		attribute.Int64("event_id", eventID),
	)

	if !value.IsValid() {
		return fail(span, domain.ErrInvalidVote)
	}
	if _, err := requireUser(ctx, s.userRepo, userID); err != nil {
		return fail(span, err)
	}
	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		return fail(span, err)
	}

	vote := domain.Vote{RaterID: userID, EventID: eventID, Value: value}
	if err := s.ratingRepo.Delete(ctx, vote); err != nil {
		return fail(span, err)
	}
	metrics.RecordVote(ctx, false, int(value))

	span.SetStatus(codes.Ok, "")
	return nil
}
