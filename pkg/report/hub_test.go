package report

import (
	"encoding/binary"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itohio/gopulse/pkg/beat"
)

func dialHub(t *testing.T, h *Hub) (*websocket.Conn, func()) {
	t.Helper()

	srv := httptest.NewServer(h.Handler())
	url := "ws" + strings.TrimPrefix(srv.URL, "http")

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)

	require.Eventually(t, func() bool { return h.Clients() == 1 },
		time.Second, time.Millisecond)

	return conn, func() {
		conn.Close()
		srv.Close()
	}
}

func TestHub_BroadcastsSampleBatches(t *testing.T) {
	h := NewHub(4)
	conn, done := dialHub(t, h)
	defer done()

	// Three samples: below the batch size, nothing sent yet; the fourth
	// flushes one binary frame.
	for _, v := range []uint16{10, 20, 30, 40} {
		h.Sample(v)
	}

	conn.SetReadDeadline(time.Now().Add(time.Second))
	messageType, frame, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, websocket.BinaryMessage, messageType)
	require.Len(t, frame, 8)

	for i, want := range []uint16{10, 20, 30, 40} {
		assert.Equal(t, want, binary.LittleEndian.Uint16(frame[i*2:]))
	}
}

func TestHub_BroadcastsRateJSON(t *testing.T) {
	h := NewHub(4)
	conn, done := dialHub(t, h)
	defer done()

	ts := time.UnixMilli(1234567890123)
	h.Rate(beat.Reading{Time: ts, BPM: 72, Average: 70})

	conn.SetReadDeadline(time.Now().Add(time.Second))
	messageType, frame, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, websocket.TextMessage, messageType)

	var msg RateMsg
	require.NoError(t, json.Unmarshal(frame, &msg))
	assert.Equal(t, RateMsg{Ts: 1234567890123, BPM: 72, Avg: 70}, msg)
}

func TestHub_ForgetsDisconnectedClients(t *testing.T) {
	h := NewHub(1)
	conn, done := dialHub(t, h)
	defer done()

	conn.Close()

	// Broadcasts to a closed client drop it from the set
	assert.Eventually(t, func() bool {
		h.Sample(1)
		return h.Clients() == 0
	}, time.Second, 10*time.Millisecond)
}

func TestHub_NoClientsIsFine(t *testing.T) {
	h := NewHub(2)

	assert.NotPanics(t, func() {
		h.Sample(1)
		h.Sample(2)
		h.Rate(beat.Reading{BPM: 60, Average: 60})
	})
}
