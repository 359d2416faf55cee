package dto

import (
	"github.com/prohmpiriya/explore-events/internal/domain"
)

// ParticipationRequestResponse represents a participation request
type ParticipationRequestResponse struct {
	ID        int64    `json:"id"`
	Created   DateTime `json:"created"`
	Event     int64    `json:"event"`
	Requester int64    `json:"requester"`
	Status    string   `json:"status"`
}

// StatusUpdateRequest represents a bulk status change of participation requests
type StatusUpdateRequest struct {
	RequestIDs []int64 `json:"requestIds" binding:"required,min=1"`
	Status     string  `json:"status" binding:"required"`
}

// ToDomain converts the request to a status update
func (r *StatusUpdateRequest) ToDomain() (domain.StatusUpdate, error) {
	status, err := domain.ParseRequestStatus(r.Status)
	if err != nil {
		return domain.StatusUpdate{}, err
	}
	return domain.StatusUpdate{RequestIDs: r.RequestIDs, Status: status}, nil
}

// StatusUpdateResponse lists the requests confirmed and rejected by a bulk update
type StatusUpdateResponse struct {
	ConfirmedRequests []ParticipationRequestResponse `json:"confirmedRequests"`
	RejectedRequests  []ParticipationRequestResponse `json:"rejectedRequests"`
}

// ToRequestResponse converts a domain request to its representation
func ToRequestResponse(r *domain.ParticipationRequest) ParticipationRequestResponse {
	return ParticipationRequestResponse{
		ID:        r.ID,
		Created:   NewDateTime(r.Created),
		Event:     r.EventID,
		Requester: r.RequesterID,
		Status:    r.Status.String(),
	}
}

func ToRequestResponses(requests []domain.ParticipationRequest) []ParticipationRequestResponse {
	out := make([]ParticipationRequestResponse, len(requests))
	for i := range requests {
		out[i] = ToRequestResponse(&requests[i])
	}
	return out
}

// ToStatusUpdateResponse converts a bulk update result
func ToStatusUpdateResponse(r *domain.StatusUpdateResult) StatusUpdateResponse {
	return StatusUpdateResponse{
		ConfirmedRequests: ToRequestResponses(r.Confirmed),
		RejectedRequests:  ToRequestResponses(r.Rejected),
	}
}
