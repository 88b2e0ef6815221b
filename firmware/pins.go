//go:build tinygo

package main

import "machine"

const (
	// Sampling configuration
	SAMPLE_INTERVAL_MS = 10 // Analog read interval in milliseconds (100 Hz)
	SAMPLE_BUFFER_SIZE = 64 // Slots in the sample ring buffer

	// Beat estimation
	BPM_WINDOW   = 5 // Beats in the moving-average window
	WARMUP_BEATS = 5 // Beats before BPM lines are emitted

	// Indicator
	SIGNAL_THRESHOLD = 700 // Raw signal level that lights the LED

	// ADC configuration
	ADC_REFERENCE_MV = 3300 // Reference voltage in millivolts (3.3V)
	ADC_RESOLUTION   = 12   // ADC resolution in bits (12-bit = 0-4095)

	// Pins
	PIN_PULSE = machine.A0  // Pulse sensor (analog)
	PIN_POLAR = machine.D7  // Polar receiver (digital beat edge)
	PIN_LED   = machine.LED // On-board indicator

	// Serial configuration
	// Format "unix_micros,signal,beat\n" = ~25 bytes max per line
	// 100 lines/sec * 25 bytes/line = 2,500 bytes/sec
	// UART 8N1: 10 bits/byte = 25,000 baud minimum. 115200 gives ~4.6x headroom.
	UART_BAUD_RATE = 115200
)
