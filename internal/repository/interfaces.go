package repository

import (
	"context"

	"github.com/prohmpiriya/explore-events/internal/domain"
)

// EventRepository defines the interface for event data access.
// Returned events carry ConfirmedRequests computed from the request table.
type EventRepository interface {
	// Create inserts a new event and sets its ID
	Create(ctx context.Context, event *domain.Event) error
	// GetByID retrieves an event by ID
	GetByID(ctx context.Context, id int64) (*domain.Event, error)
	// GetByIDAndInitiator retrieves an event owned by initiatorID
	GetByIDAndInitiator(ctx context.Context, id, initiatorID int64) (*domain.Event, error)
	// Update persists the mutable fields of an event
	Update(ctx context.Context, event *domain.Event) error
	// ListByInitiator lists the events of one user ordered by id
	ListByInitiator(ctx context.Context, initiatorID int64, page domain.Page) ([]*domain.Event, error)
	// Search lists events matching the filter. A nil page returns every match.
	Search(ctx context.Context, filter domain.EventSearch, page *domain.Page) ([]*domain.Event, error)
}

// RequestRepository defines the interface for participation request data access
type RequestRepository interface {
	// Create inserts a request and sets its ID
	Create(ctx context.Context, request *domain.ParticipationRequest) error
	// GetByID retrieves a request by ID
	GetByID(ctx context.Context, id int64) (*domain.ParticipationRequest, error)
	// UpdateStatus sets the status of one request
	UpdateStatus(ctx context.Context, id int64, status domain.RequestStatus) error
	// UpdateStatuses sets the status of several requests of one event
	UpdateStatuses(ctx context.Context, eventID int64, ids []int64, status domain.RequestStatus) error
	// ListByRequester lists the requests made by a user
	ListByRequester(ctx context.Context, requesterID int64) ([]domain.ParticipationRequest, error)
	// ListByEvent lists the requests made for an event
	ListByEvent(ctx context.Context, eventID int64) ([]domain.ParticipationRequest, error)
	// ListByEventAndIDs lists the requests of an event among ids
	ListByEventAndIDs(ctx context.Context, eventID int64, ids []int64) ([]domain.ParticipationRequest, error)
	// ExistsWithStatus reports whether requesterID has a request for eventID in the given status
	ExistsWithStatus(ctx context.Context, requesterID, eventID int64, status domain.RequestStatus) (bool, error)
}

// RatingRepository is the append-only vote ledger
type RatingRepository interface {
	// Add stores a vote; a second vote of the same rater for the same event is a conflict
	Add(ctx context.Context, vote domain.Vote) error
	// Delete removes the exact (rater, event, value) vote
	Delete(ctx context.Context, vote domain.Vote) error
	// SumForEvent returns the vote sum of an event, 0 if none
	SumForEvent(ctx context.Context, eventID int64) (int64, error)
	// SumForEvents returns vote sums by event id; events without votes are omitted
	SumForEvents(ctx context.Context, eventIDs []int64) (map[int64]int64, error)
}

// CategoryRepository reads event categories
type CategoryRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Category, error)
}

// UserRepository reads users
type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.UserShort, error)
}

// Transactor runs work atomically
type Transactor interface {
	// WithinTransaction runs fn in one transaction carried by its context
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
	// WithinEventLock runs fn in one transaction holding a row lock on the event,
	// serializing admission decisions for that event
	WithinEventLock(ctx context.Context, eventID int64, fn func(ctx context.Context) error) error
}
