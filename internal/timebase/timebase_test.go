package timebase

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestHeartbeatTickTogglesBlink(t *testing.T) {
	h := NewHeartbeat()
	if h.Blink() {
		t.Fatal("blink should start off")
	}
	h.Tick()
	if !h.Blink() {
		t.Error("blink should be on after first tick")
	}
	h.Tick()
	if h.Blink() {
		t.Error("blink should be off after second tick")
	}
	if h.Ticks() != 2 {
		t.Errorf("expected 2 ticks, got %d", h.Ticks())
	}
}

func TestHeartbeatRedrawCoalesces(t *testing.T) {
	h := NewHeartbeat()
	if h.TakeRedraw() {
		t.Fatal("no redraw should be pending initially")
	}
	h.Tick()
	h.Tick()
	h.Tick()
	if !h.TakeRedraw() {
		t.Error("expected one redraw")
	}
	if h.TakeRedraw() {
		t.Error("redraw requests should coalesce into one")
	}
}

func TestHeartbeatWakeNeverBlocks(t *testing.T) {
	h := NewHeartbeat()
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			h.Tick()
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Tick blocked with nobody reading Wake")
	}

	select {
	case <-h.Wake():
	default:
		t.Error("expected a pending wake signal")
	}
	select {
	case <-h.Wake():
		t.Error("wake signals should coalesce")
	default:
	}
}

func TestRunTickerStopsOnCancel(t *testing.T) {
	h := NewHeartbeat()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		RunTicker(ctx, h, time.Millisecond)
		close(done)
	}()

	select {
	case <-h.Wake():
	case <-time.After(time.Second):
		t.Fatal("ticker never fired")
	}
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("RunTicker did not return after cancel")
	}
}

// stepClock is a fake clock advanced only by its sleeper.
type stepClock struct {
	now    time.Time
	synced time.Time // clock jumps here once now passes syncAt
	syncAt time.Time
	jumped bool
}

func (c *stepClock) Now() time.Time { return c.now }

func (c *stepClock) sleep(_ context.Context, d time.Duration) error {
	c.now = c.now.Add(d)
	if !c.jumped && !c.syncAt.IsZero() && !c.now.Before(c.syncAt) {
		c.now = c.synced
		c.jumped = true
	}
	return nil
}

func TestIsSynced(t *testing.T) {
	if IsSynced(time.Unix(0, 0).UTC()) {
		t.Error("epoch should not count as synced")
	}
	if IsSynced(time.Date(1970, 12, 31, 23, 0, 0, 0, time.UTC)) {
		t.Error("1970 should not count as synced")
	}
	if !IsSynced(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Error("2026 should count as synced")
	}
}

func TestWaitForSyncAlignsToSecond(t *testing.T) {
	epoch := time.Unix(0, 0).UTC()
	clock := &stepClock{
		now:    epoch,
		syncAt: epoch.Add(2 * time.Second),
		synced: time.Date(2026, 5, 1, 13, 7, 41, 600*int(time.Millisecond), time.UTC),
	}
	opts := SyncOptions{Timeout: time.Minute, Settle: 250 * time.Millisecond, Poll: 10 * time.Millisecond}

	res, err := WaitForSync(context.Background(), clock, clock.sleep, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Degraded {
		t.Error("should not be degraded")
	}
	if clock.now.Second() != 42 {
		t.Errorf("expected to land in second 42, got %v", clock.now)
	}
	frac := time.Duration(clock.now.Nanosecond())
	if frac < 250*time.Millisecond || frac >= 300*time.Millisecond {
		t.Errorf("expected ~250ms past the boundary, got %v", frac)
	}
}

func TestWaitForSyncTimeoutDegrades(t *testing.T) {
	clock := &stepClock{now: time.Unix(0, 0).UTC()}
	opts := SyncOptions{Timeout: time.Second, Settle: 0, Poll: 100 * time.Millisecond}

	res, err := WaitForSync(context.Background(), clock, clock.sleep, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Degraded {
		t.Error("expected degraded result after timeout")
	}
	if clock.now.Year() != 1970 {
		t.Errorf("clock should still be unsynced, got %v", clock.now)
	}
}

func TestWaitForSyncCancelled(t *testing.T) {
	clock := &stepClock{now: time.Unix(0, 0).UTC()}
	cancelled := errors.New("cancelled")
	calls := 0
	sleep := func(ctx context.Context, d time.Duration) error {
		calls++
		if calls > 3 {
			return cancelled
		}
		return clock.sleep(ctx, d)
	}

	_, err := WaitForSync(context.Background(), clock, sleep, SyncOptions{Poll: time.Millisecond})
	if !errors.Is(err, cancelled) {
		t.Errorf("expected cancellation error, got %v", err)
	}
}

func TestSleepHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := Sleep(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if err := Sleep(context.Background(), time.Millisecond); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
