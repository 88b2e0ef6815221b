package beat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHistory_InvalidSize(t *testing.T) {
	_, err := NewHistory(0)
	assert.Error(t, err)

	_, err = NewHistory(-3)
	assert.Error(t, err)
}

func TestHistory_RunningSumAndAverage(t *testing.T) {
	h, err := NewHistory(5)
	require.NoError(t, err)

	for _, bpm := range []int{60, 62, 58, 61, 59} {
		h.Add(bpm)
	}

	assert.Equal(t, 300, h.Sum())
	assert.Equal(t, 60, h.Average())

	// Sixth value replaces the oldest (60)
	h.Add(70)
	assert.Equal(t, 310, h.Sum())
	assert.Equal(t, 62, h.Average())
}

func TestHistory_IntegerTruncation(t *testing.T) {
	h, err := NewHistory(5)
	require.NoError(t, err)

	for _, bpm := range []int{61, 61, 61, 61, 60} {
		h.Add(bpm)
	}

	// 304 / 5 = 60.8, truncated
	assert.Equal(t, 60, h.Average())
}

func TestNewEstimator_Invalid(t *testing.T) {
	_, err := NewEstimator(0, 5, 0)
	assert.Error(t, err)

	_, err = NewEstimator(5, -1, 0)
	assert.Error(t, err)

	_, err = NewEstimator(5, 5, -time.Second)
	assert.Error(t, err)
}

// pollBeats feeds rising edges at the given times, returning every emitted
// reading. Each beat is a high poll followed by a low poll.
func pollBeats(e *Estimator, times []time.Time) []Reading {
	var out []Reading
	for _, ts := range times {
		if r, ok := e.Poll(true, ts); ok {
			out = append(out, r)
		}
		e.Poll(false, ts.Add(time.Millisecond))
	}
	return out
}

func beatTimes(start time.Time, intervals ...time.Duration) []time.Time {
	times := []time.Time{start}
	ts := start
	for _, iv := range intervals {
		ts = ts.Add(iv)
		times = append(times, ts)
	}
	return times
}

func TestEstimator_WarmupGate(t *testing.T) {
	e, err := NewEstimator(5, 5, 0)
	require.NoError(t, err)

	start := time.Now()
	// First edge arms the clock; five more fill the warm-up, the seventh
	// is the first observable reading.
	times := beatTimes(start,
		time.Second, time.Second, time.Second,
		time.Second, time.Second, time.Second)

	readings := pollBeats(e, times)
	require.Len(t, readings, 1, "Nothing observable until the beat count exceeds the warm-up threshold")
	assert.Equal(t, 60, readings[0].BPM)
	assert.Equal(t, 6, e.Count())
}

func TestEstimator_AverageMatchesReference(t *testing.T) {
	e, err := NewEstimator(5, 0, 0)
	require.NoError(t, err)

	// Intervals chosen so instantaneous BPM comes out 60, 62, 58, 61, 59:
	// 60000/1000, 60000/967, 60000/1034, 60000/983, 60000/1016
	start := time.Now()
	times := beatTimes(start,
		1000*time.Millisecond,
		967*time.Millisecond,
		1034*time.Millisecond,
		983*time.Millisecond,
		1016*time.Millisecond)

	readings := pollBeats(e, times)
	require.Len(t, readings, 5)

	assert.Equal(t, []int{60, 62, 58, 61, 59},
		[]int{readings[0].BPM, readings[1].BPM, readings[2].BPM, readings[3].BPM, readings[4].BPM})
	assert.Equal(t, 60, readings[4].Average, "(60+62+58+61+59)/5 truncates to 60")

	// Sixth beat at 857 ms -> 70 BPM replaces the oldest 60
	sixth := times[len(times)-1].Add(857 * time.Millisecond)
	r, ok := e.Poll(true, sixth)
	require.True(t, ok)
	assert.Equal(t, 70, r.BPM)
	assert.Equal(t, 62, r.Average, "62+58+61+59+70 = 310, /5 = 62")
}

func TestEstimator_ZeroIntervalIgnored(t *testing.T) {
	e, err := NewEstimator(5, 0, 0)
	require.NoError(t, err)

	start := time.Now()
	readings := pollBeats(e, beatTimes(start, time.Second, time.Second))
	require.Len(t, readings, 2)
	avg := readings[1].Average
	count := e.Count()

	// A double-triggered edge at the exact same instant must not fault and
	// must not change any derived state.
	last := start.Add(2 * time.Second)
	_, ok := e.Poll(true, last)
	assert.False(t, ok)
	e.Poll(false, last)

	assert.Equal(t, avg, e.Average())
	assert.Equal(t, count, e.Count())

	// The interval clock is also untouched: a normal beat one second after
	// the ignored edge still reads 60 BPM.
	r, ok := e.Poll(true, last.Add(time.Second))
	require.True(t, ok)
	assert.Equal(t, 60, r.BPM)
}

func TestEstimator_NegativeIntervalIgnored(t *testing.T) {
	e, err := NewEstimator(5, 0, 0)
	require.NoError(t, err)

	start := time.Now()
	pollBeats(e, beatTimes(start, time.Second))
	count := e.Count()

	// Clock going backwards (a malformed reading) is discarded
	_, ok := e.Poll(true, start.Add(500*time.Millisecond))
	assert.False(t, ok)
	assert.Equal(t, count, e.Count())
}

func TestEstimator_SubMillisecondIntervalIgnored(t *testing.T) {
	e, err := NewEstimator(5, 0, 0)
	require.NoError(t, err)

	start := time.Now()
	pollBeats(e, beatTimes(start, time.Second))

	// 500 us truncates to 0 ms; dividing by it would fault
	assert.NotPanics(t, func() {
		_, ok := e.Poll(true, start.Add(time.Second).Add(500*time.Microsecond))
		assert.False(t, ok)
	})
}

func TestEstimator_RisingEdgeOnly(t *testing.T) {
	e, err := NewEstimator(5, 0, 0)
	require.NoError(t, err)

	start := time.Now()
	e.Poll(true, start) // arms

	// Held high: no new beats no matter how long
	for i := 1; i <= 10; i++ {
		_, ok := e.Poll(true, start.Add(time.Duration(i)*time.Second))
		assert.False(t, ok)
	}
	assert.Equal(t, 0, e.Count())

	// Falling then rising again registers
	e.Poll(false, start.Add(11*time.Second))
	r, ok := e.Poll(true, start.Add(12*time.Second))
	require.True(t, ok)
	assert.Equal(t, 5, r.BPM, "60000 / 12000 ms truncates to 5")
}

func TestEstimator_MinIntervalRefractory(t *testing.T) {
	e, err := NewEstimator(5, 0, 300*time.Millisecond)
	require.NoError(t, err)

	start := time.Now()
	pollBeats(e, beatTimes(start, time.Second))
	count := e.Count()

	// 100 ms after the last beat: inside the refractory floor, rejected
	_, ok := e.Poll(true, start.Add(1100*time.Millisecond))
	assert.False(t, ok)
	assert.Equal(t, count, e.Count())
}

func TestEstimator_OnBeatSeesWarmupBeats(t *testing.T) {
	e, err := NewEstimator(5, 5, 0)
	require.NoError(t, err)

	var intervals []time.Duration
	e.OnBeat(func(interval time.Duration, at time.Time) {
		intervals = append(intervals, interval)
	})

	start := time.Now()
	readings := pollBeats(e, beatTimes(start, time.Second, time.Second, time.Second))

	// Three accepted beats, all inside the warm-up window: the hook fires
	// for each, the reporter sees none.
	assert.Empty(t, readings)
	assert.Equal(t, []time.Duration{time.Second, time.Second, time.Second}, intervals)
}
