package service

import (
	"context"
	"fmt"
	"time"

	"github.com/prohmpiriya/explore-events/internal/domain"
	"github.com/prohmpiriya/explore-events/internal/metrics"
	"github.com/prohmpiriya/explore-events/internal/repository"
	"github.com/prohmpiriya/explore-events/pkg/logger"
	"github.com/prohmpiriya/explore-events/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// requestService implements RequestService
type requestService struct {
	requestRepo repository.RequestRepository
	eventRepo   repository.EventRepository
	userRepo    repository.UserRepository
	transactor  repository.Transactor
	now         func() time.Time
}

// NewRequestService creates a new participation request service
func NewRequestService(
	requestRepo repository.RequestRepository,
	eventRepo repository.EventRepository,
	userRepo repository.UserRepository,
	transactor repository.Transactor,
	cfg *Config,
) RequestService {
	return &requestService{
		requestRepo: requestRepo,
		eventRepo:   eventRepo,
		userRepo:    userRepo,
		transactor:  transactor,
		now:         cfg.clock(),
	}
}

// CreateRequest admits userID to eventID. The capacity check and the insert
// run under the event lock so concurrent admissions cannot overfill the event.
func (s *requestService) CreateRequest(ctx context.Context, userID, eventID int64) (*domain.ParticipationRequest, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.request.create")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("user_id", userID),
		attribute.Int64("event_id", eventID),
	)

	if _, err := requireUser(ctx, s.userRepo, userID); err != nil {
		return nil, fail(span, err)
	}

	var request *domain.ParticipationRequest
	err := s.transactor.WithinEventLock(ctx, eventID, func(ctx context.Context) error {
		event, err := s.eventRepo.GetByID(ctx, eventID)
		if err != nil {
			return err
		}
		request, err = domain.NewParticipationRequest(userID, event, s.now())
		if err != nil {
			return err
		}
		return s.requestRepo.Create(ctx, request)
	})
	if err != nil {
		return nil, fail(span, err)
	}

	metrics.RecordRequestCreated(ctx, request.Status.String())
	logger.Get().Info("participation request created",
		zap.Int64("request_id", request.ID),
		zap.Int64("event_id", eventID),
		zap.Int64("requester_id", userID),
		zap.String("status", request.Status.String()),
	)

	span.SetAttributes(
		attribute.Int64("request_id", request.ID),
		attribute.String("status", request.Status.String()),
	)
	span.SetStatus(codes.Ok, "")
	return request, nil
}

// CancelRequest cancels the caller's own request. Cancelling a canceled
// request returns it unchanged without a write.
func (s *requestService) CancelRequest(ctx context.Context, userID, requestID int64) (*domain.ParticipationRequest, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.request.cancel")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("user_id", userID),
		attribute.Int64("request_id", requestID),
	)

	if _, err := requireUser(ctx, s.userRepo, userID); err != nil {
		return nil, fail(span, err)
	}

	request, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, fail(span, err)
	}
	if request.RequesterID != userID {
		return nil, fail(span, fmt.Errorf("%w: request %d of user %d", domain.ErrRequestNotFound, requestID, userID))
	}

	changed, err := request.Cancel()
	if err != nil {
		return nil, fail(span, err)
	}
	if changed {
		if err := s.requestRepo.UpdateStatus(ctx, request.ID, request.Status); err != nil {
			return nil, fail(span, err)
		}
		metrics.RecordRequestCancelled(ctx)
	}

	span.SetStatus(codes.Ok, "")
	return request, nil
}

// GetUserRequests lists the requests made by userID
func (s *requestService) GetUserRequests(ctx context.Context, userID int64) ([]domain.ParticipationRequest, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.request.list_by_user")
	defer span.End()

	if _, err := requireUser(ctx, s.userRepo, userID); err != nil {
		return nil, fail(span, err)
	}
	requests, err := s.requestRepo.ListByRequester(ctx, userID)
	if err != nil {
		return nil, fail(span, err)
	}
	return requests, nil
}

// GetEventRequests lists the requests for an event initiated by userID
func (s *requestService) GetEventRequests(ctx context.Context, userID, eventID int64) ([]domain.ParticipationRequest, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.request.list_by_event")
	defer span.End()

	if _, err := s.eventRepo.GetByIDAndInitiator(ctx, eventID, userID); err != nil {
		return nil, fail(span, err)
	}
	requests, err := s.requestRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fail(span, err)
	}
	return requests, nil
}

// UpdateRequestStatuses confirms or rejects pending requests of an event.
// When confirming beyond the remaining capacity the first requests in the
// given order are confirmed and the rest rejected, all in one transaction.
func (s *requestService) UpdateRequestStatuses(ctx context.Context, userID, eventID int64, update domain.StatusUpdate) (*domain.StatusUpdateResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.request.update_statuses")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("user_id", userID),
		attribute.Int64("event_id", eventID),
		attribute.String("status", update.Status.String()),
		attribute.Int("request_count", len(update.RequestIDs)),
	)

	if err := update.Validate(); err != nil {
		return nil, fail(span, err)
	}

	result := &domain.StatusUpdateResult{
		Confirmed: []domain.ParticipationRequest{},
		Rejected:  []domain.ParticipationRequest{},
	}
	err := s.transactor.WithinEventLock(ctx, eventID, func(ctx context.Context) error {
		event, err := s.eventRepo.GetByIDAndInitiator(ctx, eventID, userID)
		if err != nil {
			return err
		}
		if len(update.RequestIDs) == 0 {
			return nil
		}

		byID, err := s.loadTargets(ctx, eventID, update.RequestIDs)
		if err != nil {
			return err
		}

		confirm, reject := []int64(nil), update.RequestIDs
		if update.Status == domain.RequestStatusConfirmed {
			confirm, reject = domain.SplitConfirmation(event, update.RequestIDs)
		}

		if err := s.setStatus(ctx, eventID, confirm, domain.RequestStatusConfirmed, byID, &result.Confirmed); err != nil {
			return err
		}
		return s.setStatus(ctx, eventID, reject, domain.RequestStatusRejected, byID, &result.Rejected)
	})
	if err != nil {
		return nil, fail(span, err)
	}

	metrics.RecordRequestsDecided(ctx, len(result.Confirmed), len(result.Rejected))
	logger.Get().Info("participation requests decided",
		zap.Int64("event_id", eventID),
		zap.Int("confirmed", len(result.Confirmed)),
		zap.Int("rejected", len(result.Rejected)),
	)

	span.AddEvent("requests_decided", trace.WithAttributes(
		attribute.Int("confirmed", len(result.Confirmed)),
		attribute.Int("rejected", len(result.Rejected)),
	))
	span.SetStatus(codes.Ok, "")
	return result, nil
}

// loadTargets fetches the requests of a bulk update and checks that every id
// belongs to the event and is pending
func (s *requestService) loadTargets(ctx context.Context, eventID int64, ids []int64) (map[int64]domain.ParticipationRequest, error) {
	requests, err := s.requestRepo.ListByEventAndIDs(ctx, eventID, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]domain.ParticipationRequest, len(requests))
	for _, r := range requests {
		byID[r.ID] = r
	}
	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			return nil, fmt.Errorf("%w: request %d of event %d", domain.ErrRequestNotFound, id, eventID)
		}
	}

	if err := domain.CheckBulkTargets(requests); err != nil {
		return nil, err
	}
	return byID, nil
}

func (s *requestService) setStatus(
	ctx context.Context,
	eventID int64,
	ids []int64,
	status domain.RequestStatus,
	byID map[int64]domain.ParticipationRequest,
	out *[]domain.ParticipationRequest,
) error {
	if len(ids) == 0 {
		return nil
	}
	if err := s.requestRepo.UpdateStatuses(ctx, eventID, ids, status); err != nil {
		return err
	}
	for _, id := range ids {
		r := byID[id]
		r.Status = status
		*out = append(*out, r)
	}
	return nil
}
