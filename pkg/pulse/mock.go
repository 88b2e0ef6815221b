package pulse

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chewxy/math32"

	"github.com/itohio/gopulse/pkg/config"
)

// beatFraction is the part of each cardiac cycle during which the simulated
// digital beat sensor reads high.
const beatFraction = 0.06

// Mock simulates a pulse monitor device for testing and development. It
// synthesizes a PPG-like waveform: a systolic peak and a smaller dicrotic
// bump per cardiac cycle, riding on a baseline with deterministic noise,
// plus a digital beat edge at the start of every cycle.
type Mock struct {
	cfg *config.MockConfig

	samples   chan RawSample
	mu        sync.RWMutex
	ctx       context.Context
	cancel    context.CancelFunc
	connected bool

	led bool

	// Simulation state
	phase float32 // position within the cardiac cycle [0..1)
	tick  uint32
}

// NewMock creates a new mocked device instance.
func NewMock(cfg *config.MockConfig) *Mock {
	if cfg == nil {
		cfg = &config.MockConfig{
			BPM:        72,
			Baseline:   1800,
			Amplitude:  1400,
			NoiseLevel: 8,
			SampleRate: 10 * time.Millisecond,
		}
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Mock{
		cfg:       cfg,
		samples:   make(chan RawSample, DefaultBufferSize),
		ctx:       ctx,
		cancel:    cancel,
		connected: false,
	}
}

// Connect simulates connecting to the device.
func (m *Mock) Connect() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.connected {
		return fmt.Errorf("already connected")
	}

	m.connected = true
	m.phase = 0
	m.tick = 0

	// Start generating samples
	go m.generateSamples()

	return nil
}

// Close stops the mocked device.
func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.connected {
		return nil
	}

	m.cancel()
	m.connected = false
	close(m.samples)

	return nil
}

// Samples returns the channel for reading samples.
func (m *Mock) Samples() <-chan RawSample {
	return m.samples
}

// SetLED records the indicator state (simulated).
func (m *Mock) SetLED(on bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.connected {
		return fmt.Errorf("not connected")
	}

	m.led = on
	return nil
}

// LED returns the last indicator state set on the mock.
func (m *Mock) LED() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.led
}

// IsConnected returns whether the device is currently connected.
func (m *Mock) IsConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.connected
}

// generateSamples generates simulated samples.
func (m *Mock) generateSamples() {
	ticker := time.NewTicker(m.cfg.SampleRate)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			sample := m.generateSample()
			select {
			case m.samples <- sample:
			case <-m.ctx.Done():
				return
			default:
				// Channel full, skip
			}
		}
	}
}

// generateSample advances the cardiac cycle by one sample period and
// synthesizes the next reading.
func (m *Mock) generateSample() RawSample {
	cycleHz := float32(m.cfg.BPM / 60.0)
	dt := float32(m.cfg.SampleRate.Seconds())

	m.phase += cycleHz * dt
	if m.phase >= 1.0 {
		m.phase -= 1.0
	}
	m.tick++

	t := m.phase

	// Systolic peak and dicrotic notch as gaussians within the cycle
	wave := gauss(t, 0.15, 0.04) + 0.35*gauss(t, 0.45, 0.12)

	// Deterministic noise, cheap and repeatable
	n := 2*fract(math32.Sin(float32(m.tick)*12.9898)*43758.5453) - 1

	v := float32(m.cfg.Baseline) +
		float32(m.cfg.Amplitude)*wave +
		float32(m.cfg.NoiseLevel)*n

	if v < 0 {
		v = 0
	} else if v > 4095 {
		v = 4095
	}

	return RawSample{
		Timestamp: time.Now(),
		Signal:    uint16(v),
		Beat:      t < beatFraction,
	}
}

func gauss(x, mu, sigma float32) float32 {
	z := (x - mu) / sigma
	return math32.Exp(-0.5 * z * z)
}

func fract(x float32) float32 {
	return x - math32.Floor(x)
}
