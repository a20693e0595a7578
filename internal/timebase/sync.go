package timebase

import (
	"context"
	"time"
)

// SyncOptions bounds WaitForSync.
type SyncOptions struct {
	// Timeout gives up on synchronization after this long. Zero waits forever.
	Timeout time.Duration
	// Settle is slept after the second boundary.
	Settle time.Duration
	// Poll is the clock polling interval.
	Poll time.Duration
}

// DefaultSyncOptions are used by the daemon unless configured otherwise.
var DefaultSyncOptions = SyncOptions{
	Timeout: 2 * time.Minute,
	Settle:  250 * time.Millisecond,
	Poll:    5 * time.Millisecond,
}

// SyncResult describes how WaitForSync finished.
type SyncResult struct {
	// Degraded is true when the clock never reported a synchronized year
	// before the timeout and the caller continues on unsynced time.
	Degraded bool
	Waited   time.Duration
}

// Clock abstracts the synchronized system clock.
type Clock interface {
	Now() time.Time
}

// SystemClock reads time.Now.
type SystemClock struct{}

// Now returns the current time.
func (SystemClock) Now() time.Time { return time.Now() }

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Sleep is the real Sleeper.
func Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// IsSynced reports whether t looks like a real synchronized time rather than
// the epoch an unsynchronized board boots with.
func IsSynced(t time.Time) bool {
	return t.Year() > 1970
}

// WaitForSync blocks until clock reports a year after 1970, then until the
// next second boundary, then for opts.Settle. If opts.Timeout elapses first
// it returns a degraded result instead of an error; only ctx cancellation
// is an error.
func WaitForSync(ctx context.Context, clock Clock, sleep Sleeper, opts SyncOptions) (SyncResult, error) {
	if opts.Poll <= 0 {
		opts.Poll = DefaultSyncOptions.Poll
	}
	start := clock.Now()
	var res SyncResult

	for !IsSynced(clock.Now()) {
		if opts.Timeout > 0 && clock.Now().Sub(start) >= opts.Timeout {
			res.Degraded = true
			break
		}
		if err := sleep(ctx, opts.Poll); err != nil {
			return res, err
		}
	}

	sec := clock.Now().Second()
	for clock.Now().Second() == sec {
		if err := sleep(ctx, opts.Poll); err != nil {
			return res, err
		}
	}

	if opts.Settle > 0 {
		if err := sleep(ctx, opts.Settle); err != nil {
			return res, err
		}
	}
	res.Waited = clock.Now().Sub(start)
	return res, nil
}
