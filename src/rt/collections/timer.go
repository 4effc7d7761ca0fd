package collections

import "viper/src/rt"

// Timer is a frame-counted countdown, grounded in RTTimerTests.cpp:
// Start(duration) arms it, each Update advances elapsed by one frame, and
// Update returns true exactly once, on the frame the timer expires.
type Timer struct {
	rt.Header
	duration int64
	elapsed  int64
	running  bool
	expired  bool
}

// NewTimer allocates an idle Timer with refcount 1.
func NewTimer() *Timer {
	return &Timer{Header: rt.NewHeader(rt.KindObject, rt.ElemI64, 0, 0, nil)}
}

// Start arms the timer for duration frames. A non-positive duration
// expires on the first Update.
func (t *Timer) Start(duration int64) {
	t.duration = duration
	t.elapsed = 0
	t.running = true
	t.expired = false
}

// Stop halts the timer without marking it expired.
func (t *Timer) Stop() { t.running = false }

// Reset returns the timer to its idle state.
func (t *Timer) Reset() {
	t.duration = 0
	t.elapsed = 0
	t.running = false
	t.expired = false
}

// Update advances one frame, returning true exactly on the expiring frame
// and false on every other call (including after expiry).
func (t *Timer) Update() bool {
	if !t.running {
		return false
	}
	t.elapsed++
	if t.elapsed >= t.duration {
		t.running = false
		t.expired = true
		return true
	}
	return false
}

// IsRunning reports whether the timer is counting.
func (t *Timer) IsRunning() bool { return t.running }

// IsExpired reports whether the timer has run to completion.
func (t *Timer) IsExpired() bool { return t.expired }

// Duration returns the armed duration in frames.
func (t *Timer) Duration() int64 { return t.duration }

// Elapsed returns the number of frames counted so far.
func (t *Timer) Elapsed() int64 { return t.elapsed }

// Remaining returns the frames left before expiry, never negative.
func (t *Timer) Remaining() int64 {
	r := t.duration - t.elapsed
	if r < 0 {
		return 0
	}
	return r
}

// Progress returns elapsed progress as an integer percentage in [0, 100].
func (t *Timer) Progress() int64 {
	if t.duration <= 0 {
		return 0
	}
	p := t.elapsed * 100 / t.duration
	if p > 100 {
		return 100
	}
	return p
}
