package report

import (
	"fmt"
	"io"
	"sync"

	"github.com/itohio/gopulse/pkg/beat"
)

// Plotter writes samples and readings in the serial-plotter text format the
// original firmware emitted, one variable per line:
//
//	>PPGSignal:2048
//	>RealtimeBPM:72,BPM:70
type Plotter struct {
	mu sync.Mutex
	w  io.Writer
}

// NewPlotter creates a plotter writing to w.
func NewPlotter(w io.Writer) *Plotter {
	return &Plotter{w: w}
}

// Sample writes one raw signal value.
func (p *Plotter) Sample(v uint16) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.w, ">PPGSignal:%d\n", v)
}

// Rate writes an instantaneous and averaged BPM pair.
func (p *Plotter) Rate(r beat.Reading) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.w, ">RealtimeBPM:%d,BPM:%d\n", r.BPM, r.Average)
}
