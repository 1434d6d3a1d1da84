package wait

import (
	"context"
	"time"

	"github.com/storelab-dev/checkout-runner/pkg/core"
)

// DefaultPollInterval is the cadence between condition probes.
const DefaultPollInterval = 100 * time.Millisecond

// Waiter polls conditions against one driver until they hold or a
// deadline passes. All synchronization with the page goes through
// Await; fixed delays are not part of the model (see DialogSettle for
// the one exception).
type Waiter struct {
	driver   core.Driver
	interval time.Duration
}

// New creates a Waiter with the default poll interval.
func New(driver core.Driver) *Waiter {
	return NewWithInterval(driver, DefaultPollInterval)
}

// NewWithInterval creates a Waiter with a custom poll interval.
// Intervals below 1ms fall back to the default.
func NewWithInterval(driver core.Driver, interval time.Duration) *Waiter {
	if interval < time.Millisecond {
		interval = DefaultPollInterval
	}
	return &Waiter{driver: driver, interval: interval}
}

// Await blocks until the condition holds, the timeout passes, or ctx is
// canceled. The first probe happens immediately, so a condition that
// already holds returns without waiting, and a zero timeout still gets
// exactly one probe before failing.
//
// Await never returns nil before a probe has observed the condition,
// and returns a wait timeout carrying the condition description and
// elapsed time once the deadline passes.
func (w *Waiter) Await(ctx context.Context, cond Condition, timeout time.Duration) error {
	start := time.Now()

	ok, lastErr := cond.Probe(w.driver)
	if ok && lastErr == nil {
		return nil
	}
	if timeout <= 0 {
		return timeoutError(cond, time.Since(start), lastErr)
	}

	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-waitCtx.Done():
			if err := ctx.Err(); err != nil {
				// Parent canceled; not a condition timeout
				return core.ErrTimeout.
					WithMessage("wait aborted: " + cond.Description).
					WithCause(err)
			}
			return timeoutError(cond, time.Since(start), lastErr)
		case <-ticker.C:
			ok, err := cond.Probe(w.driver)
			if ok && err == nil {
				return nil
			}
			lastErr = err
		}
	}
}

// Interval returns the poll interval in use.
func (w *Waiter) Interval() time.Duration {
	return w.interval
}

func timeoutError(cond Condition, elapsed time.Duration, lastErr error) error {
	err := core.NewWaitTimeout(cond.Description, elapsed)
	if lastErr != nil {
		return err.WithCause(lastErr)
	}
	return err
}
