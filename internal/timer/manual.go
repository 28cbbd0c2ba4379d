package timer

import (
	"sort"
	"sync"
	"time"
)

// Manual is a Clock driven by virtual time. Callbacks run synchronously
// inside Advance, in due-time order, on the caller's goroutine. Only Post
// may be called from other goroutines.
type Manual struct {
	now     time.Duration
	seq     int
	pending []*manualHandle

	mu    sync.Mutex
	inbox []func()
}

// NewManual returns a Manual clock at virtual time zero.
func NewManual() *Manual {
	return &Manual{}
}

// Now returns the elapsed virtual time.
func (m *Manual) Now() time.Duration { return m.now }

// CurrentTime returns the elapsed virtual time in seconds, so a Manual
// clock can also stand in for an audio clock.
func (m *Manual) CurrentTime() float64 { return m.now.Seconds() }

// Do implements Clock.
func (m *Manual) Do(f func()) { f() }

// Post implements Clock. Posted callbacks run at the start of the next
// Advance, before any timer.
func (m *Manual) Post(f func()) {
	m.mu.Lock()
	m.inbox = append(m.inbox, f)
	m.mu.Unlock()
}

// AfterFunc implements Clock.
func (m *Manual) AfterFunc(d time.Duration, f func()) Handle {
	return m.add(d, 0, f)
}

// Every implements Clock. The first run happens d after the call.
func (m *Manual) Every(d time.Duration, f func()) Handle {
	if d <= 0 {
		d = time.Millisecond
	}
	return m.add(d, d, f)
}

// Pending returns the number of callbacks that will still run.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending) + len(m.inbox)
}

// Advance moves virtual time forward by d, running posted callbacks and
// then every timer that comes due, including timers scheduled by other
// callbacks.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	posted := m.inbox
	m.inbox = nil
	m.mu.Unlock()
	for _, f := range posted {
		f()
	}

	target := m.now + d
	for {
		h := m.next(target)
		if h == nil {
			break
		}
		m.now = h.at
		if h.period > 0 {
			h.at += h.period
			m.seq++
			h.seq = m.seq
		} else {
			m.remove(h)
			h.stopped = true
		}
		h.f()
	}
	m.now = target
}

func (m *Manual) add(d, period time.Duration, f func()) *manualHandle {
	if d < 0 {
		d = 0
	}
	m.seq++
	h := &manualHandle{m: m, at: m.now + d, period: period, seq: m.seq, f: f}
	m.pending = append(m.pending, h)
	return h
}

func (m *Manual) next(target time.Duration) *manualHandle {
	if len(m.pending) == 0 {
		return nil
	}
	sort.SliceStable(m.pending, func(i, j int) bool {
		a, b := m.pending[i], m.pending[j]
		if a.at != b.at {
			return a.at < b.at
		}
		return a.seq < b.seq
	})
	if m.pending[0].at > target {
		return nil
	}
	return m.pending[0]
}

func (m *Manual) remove(h *manualHandle) {
	for i, p := range m.pending {
		if p == h {
			m.pending = append(m.pending[:i], m.pending[i+1:]...)
			return
		}
	}
}

type manualHandle struct {
	m       *Manual
	at      time.Duration
	period  time.Duration
	seq     int
	f       func()
	stopped bool
}

func (h *manualHandle) Stop() bool {
	if h.stopped {
		return false
	}
	h.stopped = true
	h.m.remove(h)
	return true
}
