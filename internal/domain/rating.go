package domain

import (
	"fmt"
	"strings"
)

// VoteValue is a signed unit vote
type VoteValue int

const (
	VoteDislike VoteValue = -1
	VoteLike    VoteValue = 1
)

// IsValid checks the vote is +1 or -1
func (v VoteValue) IsValid() bool {
	return v == VoteLike || v == VoteDislike
}

// ParseVote accepts like, dislike, 1 and -1
func ParseVote(s string) (VoteValue, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "like", "1", "+1":
		return VoteLike, nil
	case "dislike", "-1":
		return VoteDislike, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidVote, s)
}

// Vote is one user's rating of an event
type Vote struct {
	RaterID int64
	EventID int64
	Value   VoteValue
}

// CheckCanRate enforces who may rate e. hasConfirmedRequest tells whether the
// rater holds a CONFIRMED participation request for e.
func CheckCanRate(raterID int64, e *Event, hasConfirmedRequest bool) error {
	if e.Initiator.ID == raterID {
		return ErrSelfRating
	}
	if !e.IsPublished() {
		return fmt.Errorf("%w: event %d", ErrEventNotPublished, e.ID)
	}
	if !hasConfirmedRequest {
		return fmt.Errorf("%w: user %d, event %d", ErrNotParticipant, raterID, e.ID)
	}
	return nil
}
