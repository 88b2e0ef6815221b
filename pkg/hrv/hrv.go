// Package hrv computes heart-rate variability over a sliding window of
// beat-to-beat intervals. RMSSD (root mean square of successive differences,
// in milliseconds) is the headline metric; the interval history is retained
// by timestamp, not by count.
package hrv

import (
	"math"
	"sync"
	"time"
)

// DefaultWindow is the default interval history window.
const DefaultWindow = 60 * time.Second

// Interval is one accepted beat-to-beat interval.
type Interval struct {
	At time.Time     // time of the beat that closed the interval
	RR time.Duration // interval length
}

// Analyzer accumulates intervals and recomputes RMSSD on each beat.
// Intervals older than the window are discarded from the front of the FIFO.
type Analyzer struct {
	mu        sync.RWMutex
	window    time.Duration
	intervals []Interval

	// Update callbacks
	cbMu      sync.RWMutex
	callbacks []func(rmssd float64, count int)
}

// New creates an analyzer with the given history window. A window of zero
// or less falls back to DefaultWindow.
func New(window time.Duration) *Analyzer {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Analyzer{
		window:    window,
		intervals: make([]Interval, 0),
	}
}

// AddInterval records one beat interval, trims the window, and notifies
// callbacks. The signature matches the estimator's OnBeat hook.
func (a *Analyzer) AddInterval(rr time.Duration, at time.Time) {
	a.mu.Lock()
	a.intervals = append(a.intervals, Interval{At: at, RR: rr})

	cutoff := at.Add(-a.window)
	trim := 0
	for trim < len(a.intervals) && !a.intervals[trim].At.After(cutoff) {
		trim++
	}
	if trim > 0 {
		a.intervals = a.intervals[trim:]
	}

	rmssd, ok := a.rmssdLocked()
	count := len(a.intervals)
	a.mu.Unlock()

	if ok {
		a.notify(rmssd, count)
	}
}

// Intervals returns a copy of the current interval window.
func (a *Analyzer) Intervals() []Interval {
	a.mu.RLock()
	defer a.mu.RUnlock()

	result := make([]Interval, len(a.intervals))
	copy(result, a.intervals)
	return result
}

// RMSSD returns the current metric in milliseconds. The second return value
// is false until at least two intervals are in the window.
func (a *Analyzer) RMSSD() (float64, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.rmssdLocked()
}

// OnUpdate registers a callback invoked after each interval once RMSSD is
// defined. Callbacks run on the beat path and should return quickly.
func (a *Analyzer) OnUpdate(callback func(rmssd float64, count int)) {
	a.cbMu.Lock()
	defer a.cbMu.Unlock()
	a.callbacks = append(a.callbacks, callback)
}

// rmssdLocked computes RMSSD over successive interval differences.
// Caller holds at least a read lock.
func (a *Analyzer) rmssdLocked() (float64, bool) {
	if len(a.intervals) < 2 {
		return 0, false
	}

	var sumSq float64
	for i := 1; i < len(a.intervals); i++ {
		d := (a.intervals[i].RR - a.intervals[i-1].RR).Seconds() * 1000
		sumSq += d * d
	}

	return math.Sqrt(sumSq / float64(len(a.intervals)-1)), true
}

func (a *Analyzer) notify(rmssd float64, count int) {
	a.cbMu.RLock()
	callbacks := make([]func(rmssd float64, count int), len(a.callbacks))
	copy(callbacks, a.callbacks)
	a.cbMu.RUnlock()

	for _, cb := range callbacks {
		if cb != nil {
			cb(rmssd, count)
		}
	}
}
