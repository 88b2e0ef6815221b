package beat

import "fmt"

// DefaultWindow is the reference moving-average window of 5 beats.
const DefaultWindow = 5

// History is a fixed window over the most recent BPM values, kept as a
// circular buffer with an incrementally maintained running sum. The sum
// always equals the sum of all slots, so the average is O(1) per beat.
// Slots start zero-filled, which is why readings are gated behind a warm-up
// threshold upstream.
type History struct {
	slots []int
	idx   int
	sum   int
}

// NewHistory creates a window of the given size. A window smaller than one
// slot cannot average anything and is rejected.
func NewHistory(size int) (*History, error) {
	if size < 1 {
		return nil, fmt.Errorf("history window must be at least 1, got %d", size)
	}
	return &History{slots: make([]int, size)}, nil
}

// Add replaces the oldest slot with bpm and advances the insertion index.
func (h *History) Add(bpm int) {
	h.sum -= h.slots[h.idx]
	h.slots[h.idx] = bpm
	h.sum += bpm
	h.idx = (h.idx + 1) % len(h.slots)
}

// Average returns the window average with integer truncation, matching the
// reference arithmetic.
func (h *History) Average() int {
	return h.sum / len(h.slots)
}

// Sum returns the running sum of all slots.
func (h *History) Sum() int {
	return h.sum
}

// Size returns the window size.
func (h *History) Size() int {
	return len(h.slots)
}
