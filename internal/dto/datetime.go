package dto

import (
	"fmt"
	"strconv"
	"time"

	"github.com/prohmpiriya/explore-events/internal/domain"
)

// DateTimeLayout is the date-time format used on the wire
const DateTimeLayout = "2006-01-02 15:04:05"

// DateTime is a time.Time encoded as DateTimeLayout in the server's time zone
type DateTime struct {
	time.Time
}

// NewDateTime wraps t
func NewDateTime(t time.Time) DateTime {
	return DateTime{Time: t}
}

// NewDateTimePtr wraps t, keeping nil as nil
func NewDateTimePtr(t *time.Time) *DateTime {
	if t == nil {
		return nil
	}
	d := NewDateTime(*t)
	return &d
}

// ParseDateTime parses s as DateTimeLayout in the server's time zone
func ParseDateTime(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateTimeLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date-time %q must match %q", domain.ErrInvalidParameter, s, DateTimeLayout)
	}
	return t, nil
}

func (d DateTime) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(strconv.Quote(d.In(time.Local).Format(DateTimeLayout))), nil
}

func (d *DateTime) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	s, err := strconv.Unquote(string(b))
	if err != nil {
		return fmt.Errorf("%w: date-time must be a string", domain.ErrInvalidParameter)
	}
	t, err := ParseDateTime(s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}
