package domain

import "errors"

// Kind classifies domain errors for callers that translate them (HTTP status, logging)
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindInvalidParam
	KindForbidden
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "NOT_FOUND"
	case KindInvalidParam:
		return "INVALID_PARAM"
	case KindForbidden:
		return "FORBIDDEN"
	case KindConflict:
		return "CONFLICT"
	default:
		return "INTERNAL"
	}
}

// Error is a kind-tagged domain error
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func newError(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Domain errors
var (
	// Not found
	ErrEventNotFound    = newError(KindNotFound, "event not found")
	ErrUserNotFound     = newError(KindNotFound, "user not found")
	ErrRequestNotFound  = newError(KindNotFound, "participation request not found")
	ErrVoteNotFound     = newError(KindNotFound, "vote not found")
	ErrCategoryNotFound = newError(KindNotFound, "category not found")

	// Invalid parameters
	ErrInvalidParameter     = newError(KindInvalidParam, "invalid parameter")
	ErrUnknownCategory      = newError(KindInvalidParam, "category does not exist")
	ErrInvalidStateAction   = newError(KindInvalidParam, "invalid state action")
	ErrInvalidEventState    = newError(KindInvalidParam, "invalid event state")
	ErrInvalidRequestStatus = newError(KindInvalidParam, "invalid request status")
	ErrInvalidSort          = newError(KindInvalidParam, "invalid sort")
	ErrInvalidVote          = newError(KindInvalidParam, "invalid vote value")
	ErrInvalidDateRange     = newError(KindInvalidParam, "rangeStart must not be after rangeEnd")
	ErrInvalidPagination    = newError(KindInvalidParam, "from must be >= 0 and size > 0")

	// Business rule violations
	ErrEventDateTooSoon        = newError(KindForbidden, "event date is too close to now")
	ErrEventAlreadyPublished   = newError(KindForbidden, "published events cannot be changed")
	ErrEventNotPending         = newError(KindForbidden, "only pending events can be published")
	ErrEventNotPublished       = newError(KindForbidden, "event is not published")
	ErrSelfParticipation       = newError(KindForbidden, "initiator cannot request participation in own event")
	ErrParticipantLimitReached = newError(KindForbidden, "participant limit reached")
	ErrLimitBelowConfirmed     = newError(KindForbidden, "participant limit is below confirmed requests")
	ErrRequestRejected         = newError(KindForbidden, "rejected request cannot be changed")
	ErrRequestNotPending       = newError(KindForbidden, "only pending requests can be confirmed or rejected")
	ErrSelfRating              = newError(KindForbidden, "initiator cannot rate own event")
	ErrNotParticipant          = newError(KindForbidden, "only confirmed participants can rate an event")

	// Integrity conflicts
	ErrDuplicateRequest = newError(KindConflict, "participation request already exists")
	ErrDuplicateVote    = newError(KindConflict, "vote already exists")
)

// KindOf returns the kind of the first *Error in err's chain, KindInternal otherwise
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// IsNotFoundError checks if the error is a not found error
func IsNotFoundError(err error) bool {
	return KindOf(err) == KindNotFound
}

// IsInvalidParamError checks if the error is caused by an invalid parameter
func IsInvalidParamError(err error) bool {
	return KindOf(err) == KindInvalidParam
}

// IsForbiddenError checks if the error is a business rule violation
func IsForbiddenError(err error) bool {
	return KindOf(err) == KindForbidden
}

// IsConflictError checks if the error is an integrity conflict
func IsConflictError(err error) bool {
	return KindOf(err) == KindConflict
}
