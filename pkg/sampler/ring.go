package sampler

import (
	"fmt"
	"sync"
)

// DefaultCapacity matches the 64-slot buffer used by the reference firmware.
const DefaultCapacity = 64

// Ring is a bounded single-producer/single-consumer buffer of raw ADC
// readings. It is the only state shared between the sampling goroutine and
// the consumer loop. The producer never blocks: pushing into a full ring
// drops the new value and leaves every stored entry untouched, so the
// sampler keeps its fixed cadence regardless of how far the consumer falls
// behind. Total loss while the ring is full is bounded by the producer rate
// times the time spent full.
type Ring struct {
	mu      sync.Mutex
	buf     []uint16
	head    int // next write slot
	tail    int // next read slot
	length  int
	dropped uint64
}

// NewRing creates a ring with the given capacity. Every slot of the stated
// capacity is usable; full/empty are disambiguated by an explicit length
// rather than by sacrificing a slot.
func NewRing(capacity int) (*Ring, error) {
	if capacity < 1 {
		return nil, fmt.Errorf("ring capacity must be at least 1, got %d", capacity)
	}
	return &Ring{buf: make([]uint16, capacity)}, nil
}

// Push stores one reading and reports whether it was stored. A push into a
// full ring drops the reading; the return value is advisory and the producer
// is expected to carry on either way.
func (r *Ring) Push(v uint16) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.length == len(r.buf) {
		r.dropped++
		return false
	}

	r.buf[r.head] = v
	r.head = (r.head + 1) % len(r.buf)
	r.length++
	return true
}

// Pop removes and returns the oldest reading. The second return value is
// false when the ring is empty; an empty ring is not an error.
func (r *Ring) Pop() (uint16, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.length == 0 {
		return 0, false
	}

	v := r.buf[r.tail]
	r.tail = (r.tail + 1) % len(r.buf)
	r.length--
	return v, true
}

// Len returns the number of buffered readings.
func (r *Ring) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.length
}

// Cap returns the ring capacity.
func (r *Ring) Cap() int {
	return len(r.buf)
}

// Dropped returns how many pushes were discarded because the ring was full.
func (r *Ring) Dropped() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dropped
}
