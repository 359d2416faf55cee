package dto

import (
	"github.com/prohmpiriya/explore-events/internal/domain"
)

// CategoryDTO is the category of an event
type CategoryDTO struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// UserShortDTO identifies an event initiator
type UserShortDTO struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// LocationDTO is the geographic point of an event
type LocationDTO struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// NewEventRequest represents request to create an event
type NewEventRequest struct {
	Annotation        string       `json:"annotation" binding:"required,min=20,max=2000"`
	Category          int64        `json:"category" binding:"required,gt=0"`
	Description       string       `json:"description" binding:"required,min=20,max=7000"`
	EventDate         *DateTime    `json:"eventDate" binding:"required"`
	Location          *LocationDTO `json:"location" binding:"required"`
	Paid              bool         `json:"paid"`
	ParticipantLimit  int          `json:"participantLimit" binding:"gte=0"`
	RequestModeration *bool        `json:"requestModeration"`
	Title             string       `json:"title" binding:"required,min=3,max=120"`
}

// ToDomain converts the request to an event draft. requestModeration defaults to true.
func (r *NewEventRequest) ToDomain() domain.EventDraft {
	moderation := true
	if r.RequestModeration != nil {
		moderation = *r.RequestModeration
	}
	return domain.EventDraft{
		Title:             r.Title,
		Annotation:        r.Annotation,
		Description:       r.Description,
		CategoryID:        r.Category,
		EventDate:         r.EventDate.Time,
		Location:          domain.Location{Lat: r.Location.Lat, Lon: r.Location.Lon},
		Paid:              r.Paid,
		ParticipantLimit:  r.ParticipantLimit,
		RequestModeration: moderation,
	}
}

// UpdateEventRequest represents a partial update of an event by its
// initiator or an administrator. Absent fields are left unchanged.
type UpdateEventRequest struct {
	Annotation        *string      `json:"annotation" binding:"omitempty,min=20,max=2000"`
	Category          *int64       `json:"category" binding:"omitempty,gt=0"`
	Description       *string      `json:"description" binding:"omitempty,min=20,max=7000"`
	EventDate         *DateTime    `json:"eventDate"`
	Location          *LocationDTO `json:"location"`
	Paid              *bool        `json:"paid"`
	ParticipantLimit  *int         `json:"participantLimit" binding:"omitempty,gte=0"`
	RequestModeration *bool        `json:"requestModeration"`
	StateAction       *string      `json:"stateAction"`
	Title             *string      `json:"title" binding:"omitempty,min=3,max=120"`
}

// ToPatch converts the request to an event patch
func (r *UpdateEventRequest) ToPatch() (domain.EventPatch, error) {
	patch := domain.EventPatch{
		Title:             r.Title,
		Annotation:        r.Annotation,
		Description:       r.Description,
		CategoryID:        r.Category,
		Paid:              r.Paid,
		ParticipantLimit:  r.ParticipantLimit,
		RequestModeration: r.RequestModeration,
	}
	if r.EventDate != nil {
		t := r.EventDate.Time
		patch.EventDate = &t
	}
	if r.Location != nil {
		patch.Location = &domain.Location{Lat: r.Location.Lat, Lon: r.Location.Lon}
	}
	if r.StateAction != nil {
		action, err := domain.ParseStateAction(*r.StateAction)
		if err != nil {
			return domain.EventPatch{}, err
		}
		patch.StateAction = &action
	}
	return patch, nil
}

// EventFullResponse represents an event with all its details
type EventFullResponse struct {
	ID                int64        `json:"id"`
	Annotation        string       `json:"annotation"`
	Category          CategoryDTO  `json:"category"`
	ConfirmedRequests int          `json:"confirmedRequests"`
	CreatedOn         DateTime     `json:"createdOn"`
	Description       string       `json:"description"`
	EventDate         DateTime     `json:"eventDate"`
	Initiator         UserShortDTO `json:"initiator"`
	Location          LocationDTO  `json:"location"`
	Paid              bool         `json:"paid"`
	ParticipantLimit  int          `json:"participantLimit"`
	PublishedOn       *DateTime    `json:"publishedOn"`
	RequestModeration bool         `json:"requestModeration"`
	State             string       `json:"state"`
	Title             string       `json:"title"`
	Views             int64        `json:"views"`
	Rating            int64        `json:"rating"`
}

// EventShortResponse represents an event in list results
type EventShortResponse struct {
	ID                int64        `json:"id"`
	Annotation        string       `json:"annotation"`
	Category          CategoryDTO  `json:"category"`
	ConfirmedRequests int          `json:"confirmedRequests"`
	EventDate         DateTime     `json:"eventDate"`
	Initiator         UserShortDTO `json:"initiator"`
	Paid              bool         `json:"paid"`
	Title             string       `json:"title"`
	Views             int64        `json:"views"`
	Rating            int64        `json:"rating"`
}

// ToEventFullResponse converts a domain event to its full representation
func ToEventFullResponse(e *domain.Event) EventFullResponse {
	return EventFullResponse{
		ID:                e.ID,
		Annotation:        e.Annotation,
		Category:          CategoryDTO{ID: e.Category.ID, Name: e.Category.Name},
		ConfirmedRequests: e.ConfirmedRequests,
		CreatedOn:         NewDateTime(e.CreatedOn),
		Description:       e.Description,
		EventDate:         NewDateTime(e.EventDate),
		Initiator:         UserShortDTO{ID: e.Initiator.ID, Name: e.Initiator.Name},
		Location:          LocationDTO{Lat: e.Location.Lat, Lon: e.Location.Lon},
		Paid:              e.Paid,
		ParticipantLimit:  e.ParticipantLimit,
		PublishedOn:       NewDateTimePtr(e.PublishedOn),
		RequestModeration: e.RequestModeration,
		State:             e.State.String(),
		Title:             e.Title,
		Views:             e.Views,
		Rating:            e.Rating,
	}
}

// ToEventShortResponse converts a domain event to its list representation
func ToEventShortResponse(e *domain.Event) EventShortResponse {
	return EventShortResponse{
		ID:                e.ID,
		Annotation:        e.Annotation,
		Category:          CategoryDTO{ID: e.Category.ID, Name: e.Category.Name},
		ConfirmedRequests: e.ConfirmedRequests,
		EventDate:         NewDateTime(e.EventDate),
		Initiator:         UserShortDTO{ID: e.Initiator.ID, Name: e.Initiator.Name},
		Paid:              e.Paid,
		Title:             e.Title,
		Views:             e.Views,
		Rating:            e.Rating,
	}
}

func ToEventFullResponses(events []*domain.Event) []EventFullResponse {
	out := make([]EventFullResponse, len(events))
	for i, e := range events {
		out[i] = ToEventFullResponse(e)
	}
	return out
}

func ToEventShortResponses(events []*domain.Event) []EventShortResponse {
	out := make([]EventShortResponse, len(events))
	for i, e := range events {
		out[i] = ToEventShortResponse(e)
	}
	return out
}

// RatingResponse is the rating of an event after a vote
type RatingResponse struct {
	EventID int64 `json:"eventId"`
	Rating  int64 `json:"rating"`
}
