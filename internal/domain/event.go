package domain

import (
	"fmt"
	"strings"
	"time"
)

// EventState represents the lifecycle state of an event
type EventState string

const (
	EventStatePending   EventState = "PENDING"
	EventStatePublished EventState = "PUBLISHED"
	EventStateCanceled  EventState = "CANCELED"
)

// IsValid checks if the state is a valid EventState
func (s EventState) IsValid() bool {
	switch s {
	case EventStatePending, EventStatePublished, EventStateCanceled:
		return true
	}
	return false
}

// String returns the string representation of EventState
func (s EventState) String() string {
	return string(s)
}

// ParseEventState parses a state name case-insensitively
func ParseEventState(s string) (EventState, error) {
	state := EventState(strings.ToUpper(strings.TrimSpace(s)))
	if !state.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidEventState, s)
	}
	return state, nil
}

// StateAction is a transition requested by an event edit
type StateAction string

const (
	// User actions
	ActionSendToReview StateAction = "SEND_TO_REVIEW"
	ActionCancelReview StateAction = "CANCEL_REVIEW"

	// Admin actions
	ActionPublishEvent StateAction = "PUBLISH_EVENT"
	ActionRejectEvent  StateAction = "REJECT_EVENT"
)

// IsUserAction reports whether the initiator may request this action
func (a StateAction) IsUserAction() bool {
	return a == ActionSendToReview || a == ActionCancelReview
}

// IsAdminAction reports whether an administrator may request this action
func (a StateAction) IsAdminAction() bool {
	return a == ActionPublishEvent || a == ActionRejectEvent
}

// ParseStateAction parses an action name case-insensitively
func ParseStateAction(s string) (StateAction, error) {
	a := StateAction(strings.ToUpper(strings.TrimSpace(s)))
	if !a.IsUserAction() && !a.IsAdminAction() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStateAction, s)
	}
	return a, nil
}

// Minimum time between now and the event date
const (
	UserEventLeadTime  = 2 * time.Hour
	AdminEventLeadTime = 1 * time.Hour
)

// Category is the category an event belongs to
type Category struct {
	ID   int64
	Name string
}

// UserShort identifies a user by id and display name
type UserShort struct {
	ID   int64
	Name string
}

// Location is the geographic point of an event
type Location struct {
	Lat float64
	Lon float64
}

// Event represents an event entity
type Event struct {
	ID                int64
	Title             string
	Annotation        string
	Description       string
	Category          Category
	Initiator         UserShort
	Location          Location
	Paid              bool
	ParticipantLimit  int // 0 means unlimited
	RequestModeration bool
	State             EventState
	CreatedOn         time.Time
	PublishedOn       *time.Time
	EventDate         time.Time

	// ConfirmedRequests is derived from the participation requests
	ConfirmedRequests int

	// Decorations, never persisted
	Views  int64
	Rating int64
}

// CheckEventDate fails unless the event date is later than now + lead
func (e *Event) CheckEventDate(now time.Time, lead time.Duration) error {
	if !e.EventDate.After(now.Add(lead)) {
		return fmt.Errorf("%w: event date %s must be at least %s after now",
			ErrEventDateTooSoon, e.EventDate.Format(time.DateTime), lead)
	}
	return nil
}

// IsUnlimited reports whether the event accepts any number of participants
func (e *Event) IsUnlimited() bool {
	return e.ParticipantLimit == 0
}

// RemainingCapacity returns how many more requests may be confirmed.
// The second result is false for unlimited events.
func (e *Event) RemainingCapacity() (int, bool) {
	if e.IsUnlimited() {
		return 0, false
	}
	remaining := e.ParticipantLimit - e.ConfirmedRequests
	if remaining < 0 {
		remaining = 0
	}
	return remaining, true
}

// CheckParticipantLimit fails when a positive limit is below the confirmed count
func (e *Event) CheckParticipantLimit() error {
	if e.ParticipantLimit > 0 && e.ConfirmedRequests > e.ParticipantLimit {
		return fmt.Errorf("%w: limit %d, confirmed %d",
			ErrLimitBelowConfirmed, e.ParticipantLimit, e.ConfirmedRequests)
	}
	return nil
}

// IsFull reports whether a limited event reached its participant limit
func (e *Event) IsFull() bool {
	remaining, limited := e.RemainingCapacity()
	return limited && remaining == 0
}

// ApplyUserAction applies an initiator-requested transition.
// Published events cannot be changed by their initiator.
func (e *Event) ApplyUserAction(action StateAction) error {
	if e.State == EventStatePublished {
		return ErrEventAlreadyPublished
	}

	switch action {
	case "":
		return nil
	case ActionSendToReview:
		e.State = EventStatePending
	case ActionCancelReview:
		e.State = EventStateCanceled
	default:
		return fmt.Errorf("%w: %s is not a user action", ErrInvalidStateAction, action)
	}
	return nil
}

// ApplyAdminAction applies an administrator-requested transition
func (e *Event) ApplyAdminAction(action StateAction, now time.Time) error {
	switch action {
	case "":
		return nil
	case ActionPublishEvent:
		return e.Publish(now)
	case ActionRejectEvent:
		return e.Reject()
	default:
		return fmt.Errorf("%w: %s is not an admin action", ErrInvalidStateAction, action)
	}
}

// Publish moves a pending event to PUBLISHED and stamps publishedOn
func (e *Event) Publish(now time.Time) error {
	if e.State != EventStatePending {
		return fmt.Errorf("%w: event %d is %s", ErrEventNotPending, e.ID, e.State)
	}
	e.State = EventStatePublished
	e.PublishedOn = &now
	return nil
}

// Reject cancels an event that has not been published
func (e *Event) Reject() error {
	if e.State == EventStatePublished {
		return fmt.Errorf("%w: event %d", ErrEventAlreadyPublished, e.ID)
	}
	e.State = EventStateCanceled
	return nil
}

// IsPublished reports whether the event is visible to the public
func (e *Event) IsPublished() bool {
	return e.State == EventStatePublished
}

// NewEvent builds a pending event. The event date must be at least UserEventLeadTime away.
func NewEvent(initiator UserShort, category Category, draft EventDraft, now time.Time) (*Event, error) {
	e := &Event{
		Title:             draft.Title,
		Annotation:        draft.Annotation,
		Description:       draft.Description,
		Category:          category,
		Initiator:         initiator,
		Location:          draft.Location,
		Paid:              draft.Paid,
		ParticipantLimit:  draft.ParticipantLimit,
		RequestModeration: draft.RequestModeration,
		State:             EventStatePending,
		CreatedOn:         now,
		EventDate:         draft.EventDate,
	}

	if err := e.CheckEventDate(now, UserEventLeadTime); err != nil {
		return nil, err
	}
	return e, nil
}

// EventDraft holds the fields of a new event
type EventDraft struct {
	Title             string
	Annotation        string
	Description       string
	CategoryID        int64
	EventDate         time.Time
	Location          Location
	Paid              bool
	ParticipantLimit  int
	RequestModeration bool
}

// EventPatch is a partial update of an event. Nil fields keep their current value.
type EventPatch struct {
	Title             *string
	Annotation        *string
	Description       *string
	CategoryID        *int64
	EventDate         *time.Time
	Location          *Location
	Paid              *bool
	ParticipantLimit  *int
	RequestModeration *bool
	StateAction       *StateAction
}

// Action returns the requested transition, or "" when none was given
func (p EventPatch) Action() StateAction {
	if p.StateAction == nil {
		return ""
	}
	return *p.StateAction
}

// ApplyTo merges the supplied fields into e. category is the resolved
// CategoryID and is required when CategoryID is set.
func (p EventPatch) ApplyTo(e *Event, category *Category) {
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.Annotation != nil {
		e.Annotation = *p.Annotation
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.CategoryID != nil && category != nil {
		e.Category = *category
	}
	if p.EventDate != nil {
		e.EventDate = *p.EventDate
	}
	if p.Location != nil {
		e.Location = *p.Location
	}
	if p.Paid != nil {
		e.Paid = *p.Paid
	}
	if p.ParticipantLimit != nil {
		e.ParticipantLimit = *p.ParticipantLimit
	}
	if p.RequestModeration != nil {
		e.RequestModeration = *p.RequestModeration
	}
}
