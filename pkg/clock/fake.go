package clock

import (
	"sync"
	"time"
)

// Fake is a manually driven Clock. Timers and tickers fire from Advance,
// on the goroutine that calls it.
type Fake struct {
	mu      sync.Mutex
	now     time.Time
	waiters []*waiter
}

type waiter struct {
	clock    *Fake
	deadline time.Time
	period   time.Duration
	fn       func()
	ch       chan time.Time
	stopped  bool
}

func NewFake(start time.Time) *Fake {
	return &Fake{now: start}
}

func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *Fake) NewTicker(d time.Duration) Ticker {
	if d <= 0 {
		panic("clock: non-positive ticker interval")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	w := &waiter{
		clock:    f,
		deadline: f.now.Add(d),
		period:   d,
		ch:       make(chan time.Time, 1),
	}
	f.waiters = append(f.waiters, w)
	return fakeTicker{w: w}
}

func (f *Fake) AfterFunc(d time.Duration, fn func()) Timer {
	f.mu.Lock()
	defer f.mu.Unlock()
	w := &waiter{
		clock:    f,
		deadline: f.now.Add(d),
		fn:       fn,
	}
	f.waiters = append(f.waiters, w)
	return fakeTimer{w: w}
}

// Advance moves the clock forward by d, firing every timer and ticker that
// comes due along the way in deadline order.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	target := f.now.Add(d)
	f.mu.Unlock()
	f.runUntil(target)
}

// Set jumps the clock to t. Moving backwards fires nothing.
func (f *Fake) Set(t time.Time) {
	f.mu.Lock()
	if !t.After(f.now) {
		f.now = t
		f.mu.Unlock()
		return
	}
	f.mu.Unlock()
	f.runUntil(t)
}

// Pending returns the number of active timers and tickers.
func (f *Fake) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, w := range f.waiters {
		if !w.stopped {
			n++
		}
	}
	return n
}

func (f *Fake) runUntil(target time.Time) {
	for {
		f.mu.Lock()
		next := f.nextDue(target)
		if next == nil {
			f.now = target
			f.mu.Unlock()
			return
		}
		f.now = next.deadline
		fireAt := f.now
		if next.period > 0 {
			next.deadline = next.deadline.Add(next.period)
		} else {
			next.stopped = true
			f.removeLocked(next)
		}
		f.mu.Unlock()

		if next.ch != nil {
			select {
			case next.ch <- fireAt:
			default:
			}
		}
		if next.fn != nil {
			next.fn()
		}
	}
}

func (f *Fake) nextDue(target time.Time) *waiter {
	var next *waiter
	for _, w := range f.waiters {
		if w.stopped || w.deadline.After(target) {
			continue
		}
		if next == nil || w.deadline.Before(next.deadline) {
			next = w
		}
	}
	return next
}

func (f *Fake) removeLocked(w *waiter) {
	for i, other := range f.waiters {
		if other == w {
			f.waiters = append(f.waiters[:i], f.waiters[i+1:]...)
			return
		}
	}
}

type fakeTicker struct {
	w *waiter
}

func (t fakeTicker) C() <-chan time.Time {
	return t.w.ch
}

func (t fakeTicker) Stop() {
	t.w.stop()
}

type fakeTimer struct {
	w *waiter
}

func (t fakeTimer) Stop() bool {
	return t.w.stop()
}

func (w *waiter) stop() bool {
	w.clock.mu.Lock()
	defer w.clock.mu.Unlock()
	if w.stopped {
		return false
	}
	w.stopped = true
	w.clock.removeLocked(w)
	return true
}
