package service

import (
	"context"

	"github.com/prohmpiriya/explore-events/internal/domain"
)

// EventService manages the event lifecycle
type EventService interface {
	// CreateEvent creates a pending event initiated by userID
	CreateEvent(ctx context.Context, userID int64, draft domain.EventDraft) (*domain.Event, error)
	// UpdateEventByUser applies an initiator's edit
	UpdateEventByUser(ctx context.Context, userID, eventID int64, patch domain.EventPatch) (*domain.Event, error)
	// UpdateEventByAdmin applies an administrator's edit, including publish and reject
	UpdateEventByAdmin(ctx context.Context, eventID int64, patch domain.EventPatch) (*domain.Event, error)
}

// Visit identifies a public read for hit recording
type Visit struct {
	URI string
	IP  string
}

// EventQueryService reads events decorated with views and rating
type EventQueryService interface {
	// GetUserEvents lists the events initiated by userID
	GetUserEvents(ctx context.Context, userID int64, page domain.Page) ([]*domain.Event, error)
	// GetUserEvent returns one event initiated by userID
	GetUserEvent(ctx context.Context, userID, eventID int64) (*domain.Event, error)
	// SearchAdmin searches all events
	SearchAdmin(ctx context.Context, filter domain.EventSearch, page domain.Page) ([]*domain.Event, error)
	// SearchPublic searches published events and records the visit
	SearchPublic(ctx context.Context, filter domain.EventSearch, page domain.Page, visit Visit) ([]*domain.Event, error)
	// GetPublicEvent returns a published event and records the visit
	GetPublicEvent(ctx context.Context, eventID int64, visit Visit) (*domain.Event, error)
}

// RequestService manages participation requests
type RequestService interface {
	// CreateRequest admits userID to eventID
	CreateRequest(ctx context.Context, userID, eventID int64) (*domain.ParticipationRequest, error)
	// CancelRequest cancels the caller's own request
	CancelRequest(ctx context.Context, userID, requestID int64) (*domain.ParticipationRequest, error)
	// GetUserRequests lists the requests made by userID
	GetUserRequests(ctx context.Context, userID int64) ([]domain.ParticipationRequest, error)
	// GetEventRequests lists the requests for an event initiated by userID
	GetEventRequests(ctx context.Context, userID, eventID int64) ([]domain.ParticipationRequest, error)
	// UpdateRequestStatuses confirms or rejects requests of an event initiated by userID
	UpdateRequestStatuses(ctx context.Context, userID, eventID int64, update domain.StatusUpdate) (*domain.StatusUpdateResult, error)
}

// RatingService manages event votes
type RatingService interface {
	// AddRating stores a vote and returns the event's new rating
	AddRating(ctx context.Context, userID, eventID int64, value domain.VoteValue) (int64, error)
	// DeleteRating removes a vote
	DeleteRating(ctx context.Context, userID, eventID int64, value domain.VoteValue) error
}
