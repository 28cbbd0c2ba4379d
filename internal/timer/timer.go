// Package timer provides revocable callbacks that all run on a single
// control thread.
package timer

import (
	"sync"
	"time"
)

// Handle is a scheduled callback that can be revoked.
type Handle interface {
	// Stop revokes the callback. It reports whether the call prevented at
	// least one pending run. A stopped handle never fires again, even if its
	// run was already queued on the control thread.
	Stop() bool
}

// Clock schedules callbacks on one control thread.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Handle
	Every(d time.Duration, f func()) Handle
	// Do runs f on the control thread and waits for it to return. It must
	// not be called from a callback.
	Do(f func())
	// Post queues f to run on the control thread without waiting. It is
	// safe from any goroutine.
	Post(f func())
}

// Group collects handles so they can be revoked together.
type Group struct {
	handles []Handle
}

// Add tracks h and returns it.
func (g *Group) Add(h Handle) Handle {
	g.handles = append(g.handles, h)
	return h
}

// StopAll revokes every tracked handle and forgets them.
func (g *Group) StopAll() int {
	n := 0
	for _, h := range g.handles {
		if h.Stop() {
			n++
		}
	}
	g.handles = nil
	return n
}

// Len returns the number of tracked handles.
func (g *Group) Len() int { return len(g.handles) }

// Loop is a Clock backed by wall-clock timers. Every callback runs on the
// goroutine started by NewLoop.
type Loop struct {
	work chan func()
	done chan struct{}
	once sync.Once
}

// NewLoop starts the control goroutine.
func NewLoop() *Loop {
	l := &Loop{
		work: make(chan func(), 256),
		done: make(chan struct{}),
	}
	go l.run()
	return l
}

func (l *Loop) run() {
	for {
		select {
		case f := <-l.work:
			if l.closed() {
				return
			}
			f()
		case <-l.done:
			return
		}
	}
}

func (l *Loop) closed() bool {
	select {
	case <-l.done:
		return true
	default:
		return false
	}
}

func (l *Loop) post(f func()) bool {
	if l.closed() {
		return false
	}
	select {
	case l.work <- f:
		return true
	case <-l.done:
		return false
	}
}

// Do implements Clock.
func (l *Loop) Do(f func()) {
	ran := make(chan struct{})
	if !l.post(func() {
		defer close(ran)
		f()
	}) {
		return
	}
	select {
	case <-ran:
	case <-l.done:
	}
}

// Post implements Clock. After Close, f is dropped.
func (l *Loop) Post(f func()) {
	l.post(f)
}

// AfterFunc implements Clock.
func (l *Loop) AfterFunc(d time.Duration, f func()) Handle {
	h := &loopHandle{quit: make(chan struct{})}
	h.timer = time.AfterFunc(d, func() {
		l.post(func() {
			if h.claim() {
				f()
			}
		})
	})
	return h
}

// Every implements Clock.
func (l *Loop) Every(d time.Duration, f func()) Handle {
	h := &loopHandle{quit: make(chan struct{}), periodic: true}
	tk := time.NewTicker(d)
	go func() {
		defer tk.Stop()
		for {
			select {
			case <-tk.C:
				l.post(func() {
					if h.live() {
						f()
					}
				})
			case <-h.quit:
				return
			case <-l.done:
				return
			}
		}
	}()
	return h
}

// Close stops the control goroutine. Pending callbacks are dropped.
func (l *Loop) Close() {
	l.once.Do(func() { close(l.done) })
}

type loopHandle struct {
	mu       sync.Mutex
	timer    *time.Timer
	quit     chan struct{}
	periodic bool
	stopped  bool
}

// claim marks a one-shot handle as fired.
func (h *loopHandle) claim() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stopped {
		return false
	}
	h.stopped = true
	return true
}

func (h *loopHandle) live() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return !h.stopped
}

func (h *loopHandle) Stop() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stopped {
		return false
	}
	h.stopped = true
	if h.timer != nil {
		h.timer.Stop()
	}
	close(h.quit)
	return true
}
