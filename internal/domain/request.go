package domain

import (
	"fmt"
	"strings"
	"time"
)

// RequestStatus represents the status of a participation request
type RequestStatus string

const (
	RequestStatusPending   RequestStatus = "PENDING"
	RequestStatusConfirmed RequestStatus = "CONFIRMED"
	RequestStatusRejected  RequestStatus = "REJECTED"
	RequestStatusCanceled  RequestStatus = "CANCELED"
)

// IsValid checks if the status is a valid RequestStatus
func (s RequestStatus) IsValid() bool {
	switch s {
	case RequestStatusPending, RequestStatusConfirmed, RequestStatusRejected, RequestStatusCanceled:
		return true
	}
	return false
}

// String returns the string representation of RequestStatus
func (s RequestStatus) String() string {
	return string(s)
}

// ParseRequestStatus parses a status name case-insensitively
func ParseRequestStatus(s string) (RequestStatus, error) {
	status := RequestStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !status.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidRequestStatus, s)
	}
	return status, nil
}

// ParticipationRequest represents a user's request to attend an event
type ParticipationRequest struct {
	ID          int64
	RequesterID int64
	EventID     int64
	Created     time.Time
	Status      RequestStatus
}

// NewParticipationRequest validates admission of requesterID to e and returns the
// request with its initial status. e must carry an up-to-date ConfirmedRequests.
func NewParticipationRequest(requesterID int64, e *Event, now time.Time) (*ParticipationRequest, error) {
	if e.Initiator.ID == requesterID {
		return nil, ErrSelfParticipation
	}
	if !e.IsPublished() {
		return nil, fmt.Errorf("%w: event %d", ErrEventNotPublished, e.ID)
	}
	if e.IsFull() {
		return nil, fmt.Errorf("%w: event %d has %d of %d", ErrParticipantLimitReached,
			e.ID, e.ConfirmedRequests, e.ParticipantLimit)
	}

	return &ParticipationRequest{
		RequesterID: requesterID,
		EventID:     e.ID,
		Created:     now,
		Status:      InitialStatus(e),
	}, nil
}

// InitialStatus is CONFIRMED for unlimited or unmoderated events, PENDING otherwise
func InitialStatus(e *Event) RequestStatus {
	if e.IsUnlimited() || !e.RequestModeration {
		return RequestStatusConfirmed
	}
	return RequestStatusPending
}

// Cancel moves the request to CANCELED. changed is false when it already was.
func (r *ParticipationRequest) Cancel() (changed bool, err error) {
	switch r.Status {
	case RequestStatusCanceled:
		return false, nil
	case RequestStatusPending, RequestStatusConfirmed:
		r.Status = RequestStatusCanceled
		return true, nil
	case RequestStatusRejected:
		return false, fmt.Errorf("%w: request %d", ErrRequestRejected, r.ID)
	default:
		return false, fmt.Errorf("%w: %s", ErrInvalidRequestStatus, r.Status)
	}
}

// CheckBulkTargets enforces that every target of a bulk status update is PENDING
func CheckBulkTargets(requests []ParticipationRequest) error {
	for _, r := range requests {
		if r.Status != RequestStatusPending {
			return fmt.Errorf("%w: request %d is %s", ErrRequestNotPending, r.ID, r.Status)
		}
	}
	return nil
}

// SplitConfirmation decides which of ids are confirmed and which are rejected when
// confirming against e's remaining capacity. The first remaining ids in caller
// order are confirmed and the tail is rejected. Unlimited events confirm all.
func SplitConfirmation(e *Event, ids []int64) (confirm, reject []int64) {
	remaining, limited := e.RemainingCapacity()
	if !limited || remaining >= len(ids) {
		return ids, nil
	}
	return ids[:remaining], ids[remaining:]
}

// StatusUpdate is a bulk status change requested by the event initiator
type StatusUpdate struct {
	RequestIDs []int64
	Status     RequestStatus
}

// Validate checks the target status and drops duplicate ids, keeping the first occurrence
func (u *StatusUpdate) Validate() error {
	if u.Status != RequestStatusConfirmed && u.Status != RequestStatusRejected {
		return fmt.Errorf("%w: status must be CONFIRMED or REJECTED, got %q", ErrInvalidRequestStatus, u.Status)
	}

	seen := make(map[int64]struct{}, len(u.RequestIDs))
	ids := make([]int64, 0, len(u.RequestIDs))
	for _, id := range u.RequestIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	u.RequestIDs = ids
	return nil
}

// StatusUpdateResult lists the requests confirmed and rejected by a bulk update
type StatusUpdateResult struct {
	Confirmed []ParticipationRequest
	Rejected  []ParticipationRequest
}
