package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseVote(t *testing.T) {
	tests := []struct {
		in      string
		want    VoteValue
		wantErr bool
	}{
		{"like", VoteLike, false},
		{"LIKE", VoteLike, false},
		{"1", VoteLike, false},
		{"dislike", VoteDislike, false},
		{"-1", VoteDislike, false},
		{"0", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			v, err := ParseVote(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidVote)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, v)
		})
	}
}

func TestCheckCanRate(t *testing.T) {
	e := publishedEvent(0, 0, false)

	assert.NoError(t, CheckCanRate(2, e, true))
	assert.ErrorIs(t, CheckCanRate(1, e, true), ErrSelfRating)
	assert.ErrorIs(t, CheckCanRate(2, e, false), ErrNotParticipant)
	assert.ErrorIs(t, CheckCanRate(2, &Event{ID: 3, Initiator: UserShort{ID: 1}, State: EventStateCanceled}, true), ErrEventNotPublished)
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNotFound, KindOf(ErrEventNotFound))
	assert.Equal(t, KindConflict, KindOf(ErrDuplicateVote))
	assert.Equal(t, KindInternal, KindOf(assert.AnError))
	assert.Equal(t, KindInternal, KindOf(nil))
	assert.True(t, IsForbiddenError(CheckCanRate(1, publishedEvent(0, 0, false), true)))
}
