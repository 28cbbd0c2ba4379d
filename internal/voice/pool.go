// Package voice bounds how many instances of each sound can ring at once.
package voice

import (
	"time"

	"github.com/icco/drumbeast/internal/debug"
	"github.com/icco/drumbeast/internal/timer"
)

const (
	// DefaultSize is the number of slots per sound.
	DefaultSize = 8
	// DefaultHold is how long a slot stays busy after acquisition. It must
	// cover the longest sound.
	DefaultHold = 3 * time.Second
)

// Handle is a playing graph that can be cut short.
type Handle interface {
	Stop()
}

// Slot is one voice of a sound.
type Slot struct {
	index   int
	busy    bool
	handles []Handle
	release timer.Handle
}

// Index returns the slot's position in its ring.
func (s *Slot) Index() int { return s.index }

// Busy reports whether the slot is reserved.
func (s *Slot) Busy() bool { return s.busy }

// Attach associates playing handles with the slot.
func (s *Slot) Attach(hs ...Handle) {
	s.handles = append(s.handles, hs...)
}

// Attached returns the number of handles still associated with the slot.
func (s *Slot) Attached() int { return len(s.handles) }

func (s *Slot) detach() int {
	n := len(s.handles)
	for _, h := range s.handles {
		h.Stop()
	}
	s.handles = nil
	return n
}

type ring struct {
	slots  []*Slot
	cursor int
}

// Pool hands out voice slots round-robin per key, reusing the slot at the
// cursor when every slot is busy.
type Pool[K comparable] struct {
	size  int
	hold  time.Duration
	clock timer.Clock
	rings map[K]*ring
}

// NewPool returns a pool with size slots per key. Slots are released hold
// after acquisition, using clock.
func NewPool[K comparable](clock timer.Clock, size int, hold time.Duration) *Pool[K] {
	if size <= 0 {
		size = DefaultSize
	}
	if hold <= 0 {
		hold = DefaultHold
	}
	return &Pool[K]{
		size:  size,
		hold:  hold,
		clock: clock,
		rings: make(map[K]*ring),
	}
}

// Size returns the number of slots per key.
func (p *Pool[K]) Size() int { return p.size }

// Acquire reserves a slot for key. Handles left on the slot from its
// previous use are stopped and detached first.
func (p *Pool[K]) Acquire(key K) *Slot {
	r := p.ring(key)

	var slot *Slot
	for i := 0; i < p.size; i++ {
		s := r.slots[(r.cursor+i)%p.size]
		if !s.busy {
			slot = s
			break
		}
	}
	if slot == nil {
		slot = r.slots[r.cursor]
		debug.Log("voice", "stealing slot %d of %v", slot.index, key)
	}
	r.cursor = (slot.index + 1) % p.size

	slot.detach()
	if slot.release != nil {
		slot.release.Stop()
	}
	slot.busy = true
	slot.release = p.clock.AfterFunc(p.hold, func() {
		slot.busy = false
		slot.release = nil
	})
	return slot
}

// Busy returns the number of reserved slots for key.
func (p *Pool[K]) Busy(key K) int {
	r, ok := p.rings[key]
	if !ok {
		return 0
	}
	n := 0
	for _, s := range r.slots {
		if s.busy {
			n++
		}
	}
	return n
}

// Attached returns the number of slots for key that still carry handles.
func (p *Pool[K]) Attached(key K) int {
	r, ok := p.rings[key]
	if !ok {
		return 0
	}
	n := 0
	for _, s := range r.slots {
		if len(s.handles) > 0 {
			n++
		}
	}
	return n
}

// StopAll stops every attached handle and frees every slot.
func (p *Pool[K]) StopAll() {
	for _, r := range p.rings {
		for _, s := range r.slots {
			s.detach()
			if s.release != nil {
				s.release.Stop()
				s.release = nil
			}
			s.busy = false
		}
	}
}

func (p *Pool[K]) ring(key K) *ring {
	r, ok := p.rings[key]
	if !ok {
		r = &ring{slots: make([]*Slot, p.size)}
		for i := range r.slots {
			r.slots[i] = &Slot{index: i}
		}
		p.rings[key] = r
	}
	return r
}
