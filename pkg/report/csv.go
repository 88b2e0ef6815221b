package report

import (
	"encoding/csv"
	"io"
	"strconv"
	"sync"
	"time"

	"github.com/itohio/gopulse/pkg/beat"
)

// CSV records the session to a CSV stream for offline analysis. Rows carry a
// host timestamp in unix milliseconds, a row kind, and the value columns:
//
//	unix_ms,kind,signal,bpm,avg_bpm
//	1234567890123,signal,2048,,
//	1234567891000,rate,,72,70
type CSV struct {
	mu sync.Mutex
	w  *csv.Writer
}

// NewCSV creates a recorder writing to w and emits the header row.
func NewCSV(w io.Writer) (*CSV, error) {
	c := &CSV{w: csv.NewWriter(w)}
	if err := c.w.Write([]string{"unix_ms", "kind", "signal", "bpm", "avg_bpm"}); err != nil {
		return nil, err
	}
	c.w.Flush()
	return c, c.w.Error()
}

// Sample records one raw signal value.
func (c *CSV) Sample(v uint16) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.w.Write([]string{
		strconv.FormatInt(time.Now().UnixMilli(), 10),
		"signal",
		strconv.FormatUint(uint64(v), 10),
		"",
		"",
	})
}

// Rate records one heart-rate reading.
func (c *CSV) Rate(r beat.Reading) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.w.Write([]string{
		strconv.FormatInt(r.Time.UnixMilli(), 10),
		"rate",
		"",
		strconv.Itoa(r.BPM),
		strconv.Itoa(r.Average),
	})
	// Rate rows are rare (one per beat); flush so a recording survives an
	// abrupt exit.
	c.w.Flush()
}

// Flush writes any buffered rows to the underlying writer.
func (c *CSV) Flush() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.w.Flush()
	return c.w.Error()
}
