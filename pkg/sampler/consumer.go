package sampler

import (
	"context"
	"fmt"
	"time"

	"github.com/itohio/gopulse/pkg/beat"
	"github.com/itohio/gopulse/pkg/report"
)

// idleWait is how long the consumer sleeps after an empty drain pass so an
// idle pipeline does not spin a core.
const idleWait = time.Millisecond

// Consumer is the cooperative half of the pipeline. Each iteration drains
// every buffered sample to the reporter in FIFO order, polls the digital
// beat sensor into the estimator, and drives the indicator output from the
// most recent raw sample. It has no fixed rate; under normal load no sample
// sits in the ring for longer than one iteration.
type Consumer struct {
	ring      *Ring
	beats     BeatSource
	est       *beat.Estimator
	rep       report.Reporter
	threshold uint16
	indicator func(on bool)
}

// NewConsumer wires the consumer. The indicator callback is optional; the
// rest is required.
func NewConsumer(ring *Ring, beats BeatSource, est *beat.Estimator, rep report.Reporter, threshold uint16, indicator func(on bool)) (*Consumer, error) {
	if ring == nil {
		return nil, fmt.Errorf("consumer requires a ring")
	}
	if beats == nil {
		return nil, fmt.Errorf("consumer requires a beat source")
	}
	if est == nil {
		return nil, fmt.Errorf("consumer requires an estimator")
	}
	if rep == nil {
		return nil, fmt.Errorf("consumer requires a reporter")
	}

	return &Consumer{
		ring:      ring,
		beats:     beats,
		est:       est,
		rep:       rep,
		threshold: threshold,
		indicator: indicator,
	}, nil
}

// Run loops until the context is cancelled.
func (c *Consumer) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if n := c.drain(); n == 0 {
			time.Sleep(idleWait)
		}

		if r, ok := c.est.Poll(c.beats.ReadBeat(), time.Now()); ok {
			c.rep.Rate(r)
		}
	}
}

// drain pops every currently buffered sample, forwards each in order, and
// updates the indicator from the newest one. Returns how many were drained.
func (c *Consumer) drain() int {
	var (
		n    int
		last uint16
	)
	for {
		v, ok := c.ring.Pop()
		if !ok {
			break
		}
		c.rep.Sample(v)
		last = v
		n++
	}

	if n > 0 && c.indicator != nil {
		c.indicator(last > c.threshold)
	}
	return n
}
