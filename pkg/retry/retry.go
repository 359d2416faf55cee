package retry

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"
)

// ErrExhausted wraps the last error once every attempt failed
var ErrExhausted = errors.New("retries exhausted")

// Policy describes exponential backoff between attempts
type Policy struct {
	// MaxRetries is the number of retries after the first attempt (0 = single attempt)
	MaxRetries int
	// InitialInterval is the wait before the first retry (default: 100ms)
	InitialInterval time.Duration
	// MaxInterval caps the wait between attempts (default: 2s)
	MaxInterval time.Duration
	// Multiplier grows the interval after each retry (default: 2.0)
	Multiplier float64
	// JitterFactor randomizes each interval by ±factor (0-1)
	JitterFactor float64
}

// DefaultPolicy retries twice: 100ms, 200ms (±10%)
func DefaultPolicy() Policy {
	return Policy{
		MaxRetries:      2,
		InitialInterval: 100 * time.Millisecond,
		MaxInterval:     2 * time.Second,
		Multiplier:      2.0,
		JitterFactor:    0.1,
	}
}

func (p Policy) normalized() Policy {
	if p.MaxRetries < 0 {
		p.MaxRetries = 0
	}
	if p.InitialInterval <= 0 {
		p.InitialInterval = 100 * time.Millisecond
	}
	if p.MaxInterval <= 0 {
		p.MaxInterval = 2 * time.Second
	}
	if p.Multiplier <= 0 {
		p.Multiplier = 2.0
	}
	p.JitterFactor = math.Min(math.Max(p.JitterFactor, 0), 1)
	return p
}

// Interval returns the wait before retry number attempt (0-based)
func (p Policy) Interval(attempt int) time.Duration {
	p = p.normalized()
	interval := float64(p.InitialInterval) * math.Pow(p.Multiplier, float64(attempt))
	if p.JitterFactor > 0 {
		jitter := interval * p.JitterFactor
		interval += (rand.Float64()*2 - 1) * jitter
	}
	if interval > float64(p.MaxInterval) {
		interval = float64(p.MaxInterval)
	}
	if interval <= 0 {
		interval = float64(p.InitialInterval)
	}
	return time.Duration(interval)
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether err was marked with Permanent
func IsPermanent(err error) bool {
	var perm *permanentError
	return errors.As(err, &perm)
}

// Do runs op until it succeeds, returns a permanent error, the policy is
// exhausted or ctx is done. Permanent errors are returned unwrapped.
func Do(ctx context.Context, p Policy, op func(ctx context.Context) error) error {
	p = p.normalized()

	var lastErr error
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr != nil {
				return errors.Join(err, lastErr)
			}
			return err
		}

		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}

		var perm *permanentError
		if errors.As(lastErr, &perm) {
			return perm.err
		}
		if attempt >= p.MaxRetries {
			break
		}

		timer := time.NewTimer(p.Interval(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return errors.Join(ctx.Err(), lastErr)
		case <-timer.C:
		}
	}

	if p.MaxRetries == 0 {
		return lastErr
	}
	return errors.Join(ErrExhausted, lastErr)
}
