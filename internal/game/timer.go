package game

import (
	"context"
	"sync"
	"time"

	"github.com/scythe504/drawguess-backend/internal/common/clock"
)

const tickInterval = time.Second

// TimerHooks are called from the timer's goroutine, never while the timer's
// own lock is held.
type TimerHooks struct {
	// OnTick runs once per second with the seconds left.
	OnTick func(remaining int)
	// OnHint runs the first time remaining equals a hint offset.
	OnHint func(remaining int)
	// OnExpire runs once when remaining reaches zero.
	OnExpire func()
}

// RoundTimer is a one-shot countdown for a single round. It ticks once per
// second and stops for good on expiry or Cancel.
type RoundTimer struct {
	clock clock.Clock
	hooks TimerHooks

	mu        sync.Mutex
	ctx       context.Context
	cancel    context.CancelFunc
	remaining int
	hints     map[int]bool
	pending   clock.Timer
	started   bool
	expired   bool
}

// NewRoundTimer builds a stopped timer. Offsets that are not inside
// (0, seconds) can never be reached and are ignored.
func NewRoundTimer(clk clock.Clock, seconds int, hintOffsets []int, hooks TimerHooks) *RoundTimer {
	ctx, cancel := context.WithCancel(context.Background())

	hints := make(map[int]bool, len(hintOffsets))
	for _, off := range hintOffsets {
		if off > 0 && off < seconds {
			hints[off] = true
		}
	}

	return &RoundTimer{
		clock:     clk,
		hooks:     hooks,
		ctx:       ctx,
		cancel:    cancel,
		remaining: seconds,
		hints:     hints,
	}
}

// Start schedules the first tick. Calling it twice, or after Cancel, does
// nothing.
func (t *RoundTimer) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.started || t.ctx.Err() != nil {
		return
	}
	t.started = true
	t.pending = t.clock.AfterFunc(tickInterval, t.tick)
}

// Cancel stops the timer. No hook runs after Cancel returns, unless one was
// already executing. Safe to call any number of times.
func (t *RoundTimer) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.cancel()
	if t.pending != nil {
		t.pending.Stop()
		t.pending = nil
	}
}

// Remaining returns the seconds left.
func (t *RoundTimer) Remaining() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.remaining
}

// Active reports whether the timer is counting down.
func (t *RoundTimer) Active() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.started && !t.expired && t.ctx.Err() == nil
}

func (t *RoundTimer) tick() {
	t.mu.Lock()
	if t.ctx.Err() != nil || t.expired {
		t.mu.Unlock()
		return
	}
	t.remaining--
	rem := t.remaining
	hint := t.hints[rem]
	delete(t.hints, rem)
	if rem <= 0 {
		t.expired = true
	}
	t.pending = nil
	t.mu.Unlock()

	if t.hooks.OnTick != nil && t.ctx.Err() == nil {
		t.hooks.OnTick(rem)
	}
	if hint && t.hooks.OnHint != nil && t.ctx.Err() == nil {
		t.hooks.OnHint(rem)
	}
	if rem <= 0 {
		if t.hooks.OnExpire != nil && t.ctx.Err() == nil {
			t.hooks.OnExpire()
		}
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.ctx.Err() == nil {
		t.pending = t.clock.AfterFunc(tickInterval, t.tick)
	}
}
