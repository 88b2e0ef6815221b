//go:build tinygo

//go:generate tinygo flash -target=xiao

package main

import (
	"machine"
	"time"
)

var (
	adcPulse machine.ADC
	uart     = machine.UART0

	// Sample ring: written on the sampling cadence, drained and printed in
	// the main loop. head is the next write slot, tail the next read slot;
	// one slot is kept free to tell full from empty.
	sampleBuffer [SAMPLE_BUFFER_SIZE]uint16
	sampleHead   int
	sampleTail   int

	// Beat estimation state
	polarOldSample bool
	lastBeatTime   time.Time
	beatCount      int
	bpmReadings    [BPM_WINDOW]int
	bpmReadIndex   int
	bpmTotal       int

	// Indicator override from the host ("1"/"0" over serial); -1 = none
	ledOverride int = -1

	// Timing
	lastSampleRead time.Time
)

func main() {
	PIN_POLAR.Configure(machine.PinConfig{Mode: machine.PinInput})
	PIN_LED.Configure(machine.PinConfig{Mode: machine.PinOutput})

	PIN_PULSE.Configure(machine.PinConfig{Mode: machine.PinInput})
	adcPulse = machine.ADC{Pin: PIN_PULSE}
	adcPulse.Configure(machine.ADCConfig{
		Reference:  ADC_REFERENCE_MV,
		Resolution: ADC_RESOLUTION,
	})

	uart.Configure(machine.UARTConfig{
		BaudRate: UART_BAUD_RATE,
	})

	lastSampleRead = time.Now()

	// Main loop
	for {
		now := time.Now()

		// Check for serial input (non-blocking)
		processSerial()

		// Take one analog sample per tick (every 10ms)
		if now.Sub(lastSampleRead) >= time.Duration(SAMPLE_INTERVAL_MS)*time.Millisecond {
			pushSample(adcPulse.Get() >> 4) // 16-bit Get scaled to 12-bit range
			lastSampleRead = now
		}

		// Drain everything buffered since the last pass
		drainSamples()

		// Poll the beat sensor
		readPolarSensor(now)

		// Small delay to prevent tight loop (but still allow precise timing)
		time.Sleep(100 * time.Microsecond)
	}
}

// pushSample stores one reading. A full buffer drops the new reading so the
// sampling cadence is never held up.
func pushSample(s uint16) {
	nextHead := (sampleHead + 1) % SAMPLE_BUFFER_SIZE
	if nextHead == sampleTail {
		return
	}
	sampleBuffer[sampleHead] = s
	sampleHead = nextHead
}

// drainSamples prints every buffered reading in FIFO order together with the
// current beat level.
// Output format: "unix_micros,signal,beat\n"
// Example: "1234567890123,2048,1\n"
func drainSamples() {
	beatLevel := PIN_POLAR.Get()

	for sampleTail != sampleHead {
		s := sampleBuffer[sampleTail]
		sampleTail = (sampleTail + 1) % SAMPLE_BUFFER_SIZE

		print(time.Now().UnixNano() / 1000)
		print(",")
		print(s)
		print(",")
		if beatLevel {
			print("1")
		} else {
			print("0")
		}
		print("\n")

		updateLED(s)
	}
}

// updateLED thresholds the most recent signal unless the host has taken over.
func updateLED(s uint16) {
	if ledOverride >= 0 {
		if ledOverride == 1 {
			PIN_LED.High()
		} else {
			PIN_LED.Low()
		}
		return
	}

	if s > SIGNAL_THRESHOLD {
		PIN_LED.High()
	} else {
		PIN_LED.Low()
	}
}

// readPolarSensor registers rising edges of the digital beat sensor and
// maintains the moving BPM average.
func readPolarSensor(now time.Time) {
	polarSample := PIN_POLAR.Get()

	if polarSample && !polarOldSample {
		if lastBeatTime.IsZero() {
			// First edge only arms the interval clock
			lastBeatTime = now
			polarOldSample = polarSample
			return
		}

		intervalMs := now.Sub(lastBeatTime).Milliseconds()
		if intervalMs <= 0 {
			// Double-triggered edge, ignore
			polarOldSample = polarSample
			return
		}
		lastBeatTime = now

		bpm := int(60000 / intervalMs)

		bpmTotal -= bpmReadings[bpmReadIndex]
		bpmReadings[bpmReadIndex] = bpm
		bpmTotal += bpm
		bpmReadIndex = (bpmReadIndex + 1) % BPM_WINDOW
		bpmAverage := bpmTotal / BPM_WINDOW

		beatCount++

		// Emit only once the window has filled with real beats
		if beatCount > WARMUP_BEATS {
			print(">RealtimeBPM:")
			print(bpm)
			print(",BPM:")
			print(bpmAverage)
			print("\n")
		}
	}

	polarOldSample = polarSample
}

// processSerial reads host commands: a single '0' or '1' line overrides the
// indicator LED, anything else clears the override.
func processSerial() {
	for uart.Buffered() > 0 {
		data, err := uart.ReadByte()
		if err != nil {
			break
		}

		switch data {
		case '0':
			ledOverride = 0
		case '1':
			ledOverride = 1
		case '\n', '\r', ' ', '\t':
			// Line endings and whitespace between commands
		default:
			ledOverride = -1
		}
	}
}
