package core

import (
	"sync"
	"time"
)

// Clock provides the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock with its monotonic component.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time { return time.Now() }

// ManualClock is a controllable clock for tests and offline rendering.
type ManualClock struct {
	mu  sync.RWMutex
	now time.Time
}

// NewManualClock creates a clock frozen at start.
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

// Now returns the current mocked time.
func (c *ManualClock) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.now
}

// Set moves the clock to t.
func (c *ManualClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// DefaultFrameInterval is the ~60 Hz frame budget.
const DefaultFrameInterval = 16 * time.Millisecond

// FrameThrottle caps how often frames are executed. A frame is allowed when at
// least one interval has elapsed since the last allowed frame.
type FrameThrottle struct {
	interval time.Duration
	last     time.Time
}

// NewFrameThrottle constructs a throttle targeting the given frames per second.
func NewFrameThrottle(fps int) *FrameThrottle {
	ft := &FrameThrottle{}
	ft.SetFPS(fps)
	return ft
}

// SetFPS changes the frame rate. Non-positive values fall back to ~60 Hz.
func (f *FrameThrottle) SetFPS(fps int) {
	if fps <= 0 {
		f.interval = DefaultFrameInterval
		return
	}
	f.interval = time.Second / time.Duration(fps)
}

// Interval returns the minimum spacing between frames.
func (f *FrameThrottle) Interval() time.Duration { return f.interval }

// Ready reports whether a frame may run at now and records it if so.
// A clock that runs backwards is treated as a new baseline.
func (f *FrameThrottle) Ready(now time.Time) bool {
	if f.last.IsZero() || now.Before(f.last) {
		f.last = now
		return true
	}
	if now.Sub(f.last) < f.interval {
		return false
	}
	f.last = now
	return true
}

// Reset forgets the last frame so the next call to Ready succeeds.
func (f *FrameThrottle) Reset() { f.last = time.Time{} }
