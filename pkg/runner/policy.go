package runner

import (
	"context"
	"time"
)

// PollPolicy bounds the status polling loop. A zero MaxAttempts or Timeout
// means unbounded.
type PollPolicy struct {
	Interval    time.Duration
	MaxAttempts int
	Timeout     time.Duration
}

// DefaultPollPolicy polls every 10 seconds without a ceiling
func DefaultPollPolicy() PollPolicy {
	return PollPolicy{Interval: 10 * time.Second}
}

// exhausted reports whether another attempt is allowed after attempts
// fetches spanning elapsed
func (p PollPolicy) exhausted(attempts int, elapsed time.Duration) bool {
	if p.MaxAttempts > 0 && attempts >= p.MaxAttempts {
		return true
	}
	if p.Timeout > 0 && elapsed >= p.Timeout {
		return true
	}
	return false
}

// interruptibleSleep sleeps for d or until ctx is done
func interruptibleSleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
