package pulse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    RawSample
		wantErr bool
	}{
		{
			name: "valid line - beat high",
			line: "1234567890123,2048,1",
			want: RawSample{
				Timestamp: time.Unix(0, 1234567890123*1000),
				Signal:    2048,
				Beat:      true,
			},
			wantErr: false,
		},
		{
			name: "valid line - beat low",
			line: "1234567890123,2048,0",
			want: RawSample{
				Timestamp: time.Unix(0, 1234567890123*1000),
				Signal:    2048,
				Beat:      false,
			},
			wantErr: false,
		},
		{
			name: "valid line - max ADC value",
			line: "1234567890123,4095,0",
			want: RawSample{
				Timestamp: time.Unix(0, 1234567890123*1000),
				Signal:    4095,
				Beat:      false,
			},
			wantErr: false,
		},
		{
			name: "valid line - zero signal",
			line: "1234567890123,0,1",
			want: RawSample{
				Timestamp: time.Unix(0, 1234567890123*1000),
				Signal:    0,
				Beat:      true,
			},
			wantErr: false,
		},
		{
			name:    "invalid - wrong number of fields",
			line:    "1234567890123,2048",
			wantErr: true,
		},
		{
			name:    "invalid - too many fields",
			line:    "1234567890123,2048,1,extra",
			wantErr: true,
		},
		{
			name:    "invalid - non-numeric timestamp",
			line:    "abc,2048,1",
			wantErr: true,
		},
		{
			name:    "invalid - non-numeric signal",
			line:    "1234567890123,abc,1",
			wantErr: true,
		},
		{
			name:    "invalid - signal out of range",
			line:    "1234567890123,4096,1",
			wantErr: true,
		},
		{
			name:    "invalid - beat level not a bit",
			line:    "1234567890123,2048,2",
			wantErr: true,
		},
		{
			name:    "invalid - empty line",
			line:    "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseLine(tt.line)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNew_Defaults(t *testing.T) {
	d := New("/dev/ttyACM0", 0, 0)

	assert.Equal(t, DefaultBaudRate, d.baudRate)
	assert.Equal(t, DefaultBufferSize, d.bufSize)
	assert.False(t, d.IsConnected())
}

func TestSerial_SetLEDNotConnected(t *testing.T) {
	d := New("/dev/ttyACM0", 0, 0)

	err := d.SetLED(true)
	assert.Error(t, err)
}

func TestSerial_CloseWithoutConnect(t *testing.T) {
	d := New("/dev/ttyACM0", 0, 0)

	assert.NoError(t, d.Close())
}
