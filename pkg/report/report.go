// Package report delivers the consumer's output streams: raw signal samples
// in FIFO order and warmed-up heart-rate readings. Reporters own the wire
// format; delivery order and warm-up gating are the pipeline's job.
package report

import "github.com/itohio/gopulse/pkg/beat"

// Reporter receives the drained sample stream and rate readings.
type Reporter interface {
	Sample(v uint16)
	Rate(r beat.Reading)
}

// Multi fans out to several reporters, preserving order within each.
type Multi []Reporter

// Sample forwards v to every reporter.
func (m Multi) Sample(v uint16) {
	for _, r := range m {
		r.Sample(v)
	}
}

// Rate forwards the reading to every reporter.
func (m Multi) Rate(reading beat.Reading) {
	for _, r := range m {
		r.Rate(reading)
	}
}
