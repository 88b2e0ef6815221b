package pulse

import (
	"context"
	"sync"
)

// Latest retains the most recent sample from a device stream so that
// poll-style consumers (the fixed-rate sampler, the beat estimator) can
// re-read the sensor on their own schedule. The device goroutine writes,
// the pipeline reads; a mutex keeps the pair consistent.
type Latest struct {
	mu     sync.RWMutex
	sample RawSample
	seen   bool
}

// NewLatest creates an empty store.
func NewLatest() *Latest {
	return &Latest{}
}

// Watch consumes the device stream until it closes or the context is
// cancelled, keeping only the newest sample. Run it in its own goroutine.
func (l *Latest) Watch(ctx context.Context, in <-chan RawSample) {
	for {
		select {
		case <-ctx.Done():
			return
		case s, ok := <-in:
			if !ok {
				return
			}
			l.mu.Lock()
			l.sample = s
			l.seen = true
			l.mu.Unlock()
		}
	}
}

// ReadSignal returns the newest analog reading, or zero before the first
// sample arrives.
func (l *Latest) ReadSignal() uint16 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.sample.Signal
}

// ReadBeat returns the newest digital beat level.
func (l *Latest) ReadBeat() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.sample.Beat
}

// Sample returns the newest sample and whether one has been seen.
func (l *Latest) Sample() (RawSample, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.sample, l.seen
}
