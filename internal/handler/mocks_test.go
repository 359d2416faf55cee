package handler

import (
	"context"

	"github.com/prohmpiriya/explore-events/internal/domain"
	"github.com/prohmpiriya/explore-events/internal/service"
	"github.com/stretchr/testify/mock"
)

// MockEventService is a mock implementation of EventService
type MockEventService struct {
	mock.Mock
}

func (m *MockEventService) CreateEvent(ctx context.Context, userID int64, draft domain.EventDraft) (*domain.Event, error) {
	args := m.Called(ctx, userID, draft)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Event), args.Error(1)
}

func (m *MockEventService) UpdateEventByUser(ctx context.Context, userID, eventID int64, patch domain.EventPatch) (*domain.Event, error) {
	args := m.Called(ctx, userID, eventID, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Event), args.Error(1)
}

func (m *MockEventService) UpdateEventByAdmin(ctx context.Context, eventID int64, patch domain.EventPatch) (*domain.Event, error) {
	args := m.Called(ctx, eventID, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Event), args.Error(1)
}

// MockEventQueryService is a mock implementation of EventQueryService
type MockEventQueryService struct {
	mock.Mock
}

func (m *MockEventQueryService) events(args mock.Arguments) ([]*domain.Event, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Event), args.Error(1)
}

func (m *MockEventQueryService) event(args mock.Arguments) (*domain.Event, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Event), args.Error(1)
}

func (m *MockEventQueryService) GetUserEvents(ctx context.Context, userID int64, page domain.Page) ([]*domain.Event, error) {
	return m.events(m.Called(ctx, userID, page))
}

func (m *MockEventQueryService) GetUserEvent(ctx context.Context, userID, eventID int64) (*domain.Event, error) {
	return m.event(m.Called(ctx, userID, eventID))
}

func (m *MockEventQueryService) SearchAdmin(ctx context.Context, filter domain.EventSearch, page domain.Page) ([]*domain.Event, error) {
	return m.events(m.Called(ctx, filter, page))
}

func (m *MockEventQueryService) SearchPublic(ctx context.Context, filter domain.EventSearch, page domain.Page, visit service.Visit) ([]*domain.Event, error) {
	return m.events(m.Called(ctx, filter, page, visit))
}

func (m *MockEventQueryService) GetPublicEvent(ctx context.Context, eventID int64, visit service.Visit) (*domain.Event, error) {
	return m.event(m.Called(ctx, eventID, visit))
}

// MockRequestService is a mock implementation of RequestService
type MockRequestService struct {
	mock.Mock
}

func (m *MockRequestService) request(args mock.Arguments) (*domain.ParticipationRequest, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ParticipationRequest), args.Error(1)
}

func (m *MockRequestService) requests(args mock.Arguments) ([]domain.ParticipationRequest, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ParticipationRequest), args.Error(1)
}

func (m *MockRequestService) CreateRequest(ctx context.Context, userID, eventID int64) (*domain.ParticipationRequest, error) {
	return m.request(m.Called(ctx, userID, eventID))
}

func (m *MockRequestService) CancelRequest(ctx context.Context, userID, requestID int64) (*domain.ParticipationRequest, error) {
	return m.request(m.Called(ctx, userID, requestID))
}

func (m *MockRequestService) GetUserRequests(ctx context.Context, userID int64) ([]domain.ParticipationRequest, error) {
	return m.requests(m.Called(ctx, userID))
}

func (m *MockRequestService) GetEventRequests(ctx context.Context, userID, eventID int64) ([]domain.ParticipationRequest, error) {
	return m.requests(m.Called(ctx, userID, eventID))
}

func (m *MockRequestService) UpdateRequestStatuses(ctx context.Context, userID, eventID int64, update domain.StatusUpdate) (*domain.StatusUpdateResult, error) {
	args := m.Called(ctx, userID, eventID, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StatusUpdateResult), args.Error(1)
}

// MockRatingService is a mock implementation of RatingService
type MockRatingService struct {
	mock.Mock
}

func (m *MockRatingService) AddRating(ctx context.Context, userID, eventID int64, value domain.VoteValue) (int64, error) {
	args := m.Called(ctx, userID, eventID, value)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRatingService) DeleteRating(ctx context.Context, userID, eventID int64, value domain.VoteValue) error {
	args := m.Called(ctx, userID, eventID, value)
	return args.Error(0)
}
