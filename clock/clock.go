// Package clock provides a logical-time callback scheduler.
//
// Time only moves when Advance is called, so periodic emission timers and
// per-particle expiry callbacks are deterministic and testable without
// waiting on the wall clock.
package clock

import (
	"container/heap"
	"time"
)

// TimerID identifies a scheduled callback. The zero value is never issued.
type TimerID uint64

// timer is a pending callback.
type timer struct {
	id       TimerID
	at       time.Duration
	seq      uint64 // scheduling order, breaks timestamp ties
	interval time.Duration
	fn       func()
	index    int // heap index, -1 when not queued
}

// timerHeap implements heap.Interface ordered by (at, seq).
type timerHeap []*timer

func (h timerHeap) Len() int { return len(h) }
func (h timerHeap) Less(i, j int) bool {
	if h[i].at != h[j].at {
		return h[i].at < h[j].at
	}
	return h[i].seq < h[j].seq
}
func (h timerHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *timerHeap) Push(x any) {
	t := x.(*timer)
	t.index = len(*h)
	*h = append(*h, t)
}

func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*h = old[0 : n-1]
	return t
}

// Clock is a single-threaded logical clock. Callbacks run to completion on
// the goroutine calling Advance.
type Clock struct {
	now    time.Duration
	seq    uint64
	nextID TimerID
	queue  timerHeap
	timers map[TimerID]*timer
	fired  uint64
}

// New creates a clock at logical time zero.
func New() *Clock {
	return &Clock{
		timers: make(map[TimerID]*timer),
	}
}

// Now returns the current logical time.
func (c *Clock) Now() time.Duration {
	return c.now
}

// Fired returns the number of callbacks run since creation.
func (c *Clock) Fired() uint64 {
	return c.fired
}

// Pending returns the number of scheduled callbacks.
func (c *Clock) Pending() int {
	return len(c.timers)
}

// After schedules fn to run once, d after the current logical time.
// A non-positive d fires on the next Advance.
func (c *Clock) After(d time.Duration, fn func()) TimerID {
	if d < 0 {
		d = 0
	}
	return c.schedule(c.now+d, 0, fn)
}

// Every schedules fn to run each interval, first firing one interval from now.
// Returns 0 and schedules nothing if interval is not positive.
func (c *Clock) Every(interval time.Duration, fn func()) TimerID {
	if interval <= 0 {
		return 0
	}
	return c.schedule(c.now+interval, interval, fn)
}

func (c *Clock) schedule(at, interval time.Duration, fn func()) TimerID {
	c.nextID++
	c.seq++
	t := &timer{
		id:       c.nextID,
		at:       at,
		seq:      c.seq,
		interval: interval,
		fn:       fn,
	}
	c.timers[t.id] = t
	heap.Push(&c.queue, t)
	return t.id
}

// Cancel removes a pending callback. Returns false if id is unknown,
// already fired (one-shot) or already cancelled.
func (c *Clock) Cancel(id TimerID) bool {
	t, ok := c.timers[id]
	if !ok {
		return false
	}
	delete(c.timers, id)
	if t.index >= 0 {
		heap.Remove(&c.queue, t.index)
	}
	return true
}

// Scheduled reports whether id is still pending.
func (c *Clock) Scheduled(id TimerID) bool {
	_, ok := c.timers[id]
	return ok
}

// Advance moves logical time forward by d, running every callback due in
// (now, now+d] in timestamp order. Callbacks scheduled while advancing also
// run if they fall inside the window. Returns the number of callbacks run.
func (c *Clock) Advance(d time.Duration) int {
	if d < 0 {
		d = 0
	}
	target := c.now + d
	ran := 0

	for c.queue.Len() > 0 {
		next := c.queue[0]
		if next.at > target {
			break
		}
		heap.Pop(&c.queue)
		c.now = next.at

		if next.interval > 0 {
			// Re-queue before running so the callback can cancel itself.
			c.seq++
			next.at += next.interval
			next.seq = c.seq
			heap.Push(&c.queue, next)
		} else {
			delete(c.timers, next.id)
		}

		next.fn()
		ran++
		c.fired++
	}

	c.now = target
	return ran
}
