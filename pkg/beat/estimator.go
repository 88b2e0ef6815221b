package beat

import (
	"fmt"
	"time"
)

// DefaultWarmup is the reference warm-up threshold: readings are withheld
// until more than this many beats have been registered, because the history
// window starts zero-filled.
const DefaultWarmup = 5

// Reading is one warmed-up heart-rate observation.
type Reading struct {
	Time    time.Time
	BPM     int // instantaneous, from the last beat-to-beat interval
	Average int // moving average over the history window
}

// Estimator derives BPM from a digital beat sensor polled once per consumer
// iteration. A beat is registered on rising edges only: the current level is
// high and differs from the previous poll. Non-beat polls mutate nothing.
//
// The reference implementation divides 60000 by the raw interval with no
// guard; a double-triggered edge would fault it. Here a degenerate interval
// (zero, negative, sub-millisecond, or below the configured minimum) is
// discarded outright: no history update, no counter increment, no change to
// the last beat time.
type Estimator struct {
	history     *History
	warmup      int
	minInterval time.Duration

	prev     bool
	armed    bool // lastBeat holds a real edge time
	lastBeat time.Time
	count    int

	onBeat func(interval time.Duration, at time.Time)
}

// NewEstimator creates an estimator with the given history window size and
// warm-up threshold. minInterval is an optional refractory floor; zero
// disables it (the degenerate-interval guard still applies).
func NewEstimator(window, warmup int, minInterval time.Duration) (*Estimator, error) {
	if warmup < 0 {
		return nil, fmt.Errorf("warm-up threshold must not be negative, got %d", warmup)
	}
	if minInterval < 0 {
		return nil, fmt.Errorf("minimum interval must not be negative, got %v", minInterval)
	}

	history, err := NewHistory(window)
	if err != nil {
		return nil, err
	}

	return &Estimator{
		history:     history,
		warmup:      warmup,
		minInterval: minInterval,
	}, nil
}

// OnBeat registers a callback invoked for every accepted beat interval,
// including beats still inside the warm-up window. It must be set before
// polling starts.
func (e *Estimator) OnBeat(fn func(interval time.Duration, at time.Time)) {
	e.onBeat = fn
}

// Count returns the number of accepted beats.
func (e *Estimator) Count() int {
	return e.count
}

// Average returns the current window average regardless of warm-up state.
func (e *Estimator) Average() int {
	return e.history.Average()
}

// Poll feeds one digital sensor level into the estimator. It returns a
// Reading only when this poll registered a beat and the beat count has
// exceeded the warm-up threshold.
func (e *Estimator) Poll(level bool, now time.Time) (Reading, bool) {
	rising := level && !e.prev
	e.prev = level
	if !rising {
		return Reading{}, false
	}

	if !e.armed {
		// First edge ever: arm the interval clock, nothing to estimate yet.
		e.armed = true
		e.lastBeat = now
		return Reading{}, false
	}

	interval := now.Sub(e.lastBeat)
	ms := interval.Milliseconds()
	if ms <= 0 || interval < e.minInterval {
		return Reading{}, false
	}
	e.lastBeat = now

	bpm := int(60000 / ms)
	e.history.Add(bpm)
	e.count++

	if e.onBeat != nil {
		e.onBeat(interval, now)
	}

	if e.count <= e.warmup {
		return Reading{}, false
	}

	return Reading{
		Time:    now,
		BPM:     bpm,
		Average: e.history.Average(),
	}, true
}
