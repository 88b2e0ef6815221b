package sampler

import (
	"context"
	"fmt"
	"time"
)

// DefaultRateHz is the reference sampling rate (one reading every 10 ms).
const DefaultRateHz = 100

// AnalogSource is a single bounded-latency read of the analog pulse sensor.
// Implementations must return within one sampling period.
type AnalogSource interface {
	ReadSignal() uint16
}

// BeatSource is a single read of the digital beat sensor level.
type BeatSource interface {
	ReadBeat() bool
}

// Sampler produces readings at a fixed rate into a Ring. Each tick does one
// sensor read and one push and nothing else; there is no formatting, no
// allocation and no retry on a full ring.
type Sampler struct {
	ring   *Ring
	src    AnalogSource
	period time.Duration
}

// NewSampler creates a fixed-rate sampler. A rate of zero or less cannot
// drive the pipeline and is rejected.
func NewSampler(ring *Ring, src AnalogSource, rateHz int) (*Sampler, error) {
	if rateHz <= 0 {
		return nil, fmt.Errorf("sampling rate must be positive, got %d Hz", rateHz)
	}
	if ring == nil {
		return nil, fmt.Errorf("sampler requires a ring")
	}
	if src == nil {
		return nil, fmt.Errorf("sampler requires an analog source")
	}

	return &Sampler{
		ring:   ring,
		src:    src,
		period: time.Second / time.Duration(rateHz),
	}, nil
}

// Period returns the interval between samples.
func (s *Sampler) Period() time.Duration {
	return s.period
}

// Run samples until the context is cancelled. At most one reading is
// produced per tick; ticks that fire while a previous read is still in
// flight are coalesced by the ticker.
func (s *Sampler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.ring.Push(s.src.ReadSignal())
		}
	}
}
