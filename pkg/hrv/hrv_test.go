package hrv

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addSeries(a *Analyzer, start time.Time, intervals ...time.Duration) time.Time {
	ts := start
	for _, rr := range intervals {
		ts = ts.Add(rr)
		a.AddInterval(rr, ts)
	}
	return ts
}

func TestRMSSD_NotDefinedUnderTwoIntervals(t *testing.T) {
	a := New(time.Minute)

	_, ok := a.RMSSD()
	assert.False(t, ok)

	a.AddInterval(time.Second, time.Now())
	_, ok = a.RMSSD()
	assert.False(t, ok)
}

func TestRMSSD_KnownSeries(t *testing.T) {
	a := New(time.Minute)

	// RR series 1000, 1020, 980 ms: successive differences +20, -40 ms
	// RMSSD = sqrt((400 + 1600) / 2) = sqrt(1000)
	addSeries(a, time.Now(),
		1000*time.Millisecond,
		1020*time.Millisecond,
		980*time.Millisecond)

	rmssd, ok := a.RMSSD()
	require.True(t, ok)
	assert.InDelta(t, 31.62, rmssd, 0.01)
}

func TestRMSSD_SteadyRhythmIsZero(t *testing.T) {
	a := New(time.Minute)

	addSeries(a, time.Now(), time.Second, time.Second, time.Second, time.Second)

	rmssd, ok := a.RMSSD()
	require.True(t, ok)
	assert.Equal(t, 0.0, rmssd)
}

func TestAnalyzer_WindowTrimming(t *testing.T) {
	a := New(5 * time.Second)

	start := time.Now()
	last := addSeries(a, start, time.Second, time.Second, time.Second)
	assert.Len(t, a.Intervals(), 3)

	// An interval arriving a minute later pushes everything else out
	a.AddInterval(time.Second, last.Add(time.Minute))

	intervals := a.Intervals()
	require.Len(t, intervals, 1)
	assert.Equal(t, time.Second, intervals[0].RR)
}

func TestAnalyzer_IntervalsReturnsCopy(t *testing.T) {
	a := New(time.Minute)
	addSeries(a, time.Now(), time.Second, 900*time.Millisecond)

	got := a.Intervals()
	got[0].RR = 0

	assert.Equal(t, time.Second, a.Intervals()[0].RR)
}

func TestAnalyzer_OnUpdate(t *testing.T) {
	a := New(time.Minute)

	var (
		calls  int
		lastN  int
		lastRM float64
	)
	a.OnUpdate(func(rmssd float64, count int) {
		calls++
		lastRM = rmssd
		lastN = count
	})

	start := time.Now()
	// First interval: RMSSD undefined, no callback
	a.AddInterval(time.Second, start.Add(time.Second))
	assert.Equal(t, 0, calls)

	addSeries(a, start.Add(time.Second), 1020*time.Millisecond, 980*time.Millisecond)
	assert.Equal(t, 2, calls)
	assert.Equal(t, 3, lastN)
	assert.InDelta(t, 31.62, lastRM, 0.01)
}

func TestNew_DefaultWindow(t *testing.T) {
	a := New(0)
	assert.Equal(t, DefaultWindow, a.window)
}
