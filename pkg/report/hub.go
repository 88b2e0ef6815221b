package report

import (
	"encoding/binary"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/itohio/gopulse/pkg/beat"
)

// DefaultBatch is how many samples are packed into one binary frame. At the
// reference 100 Hz this is one frame every 100 ms.
const DefaultBatch = 10

const writeDeadline = 200 * time.Millisecond

// RateMsg is the JSON frame sent for each heart-rate reading.
type RateMsg struct {
	Ts  int64 `json:"ts"`
	BPM int   `json:"bpm"`
	Avg int   `json:"avg"`
}

// Hub is a websocket broadcast reporter for live clients. Samples are
// batched into binary frames of little-endian uint16 values; rate readings
// go out immediately as JSON text frames. Clients that fail a write are
// closed and forgotten.
type Hub struct {
	mu    sync.Mutex
	conns map[*websocket.Conn]bool

	batchMu sync.Mutex
	batch   []uint16
	size    int

	upgrader websocket.Upgrader
}

// NewHub creates a hub batching the given number of samples per frame.
// A size below 1 falls back to DefaultBatch.
func NewHub(batch int) *Hub {
	if batch < 1 {
		batch = DefaultBatch
	}
	return &Hub{
		conns: make(map[*websocket.Conn]bool),
		batch: make([]uint16, 0, batch),
		size:  batch,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Handler returns the websocket endpoint. The read loop exists only to
// notice client disconnects; clients send nothing meaningful.
func (h *Hub) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := h.upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		h.add(conn)
		defer func() {
			h.remove(conn)
			conn.Close()
		}()

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

// Sample buffers one raw value and broadcasts a binary frame when the batch
// is full.
func (h *Hub) Sample(v uint16) {
	h.batchMu.Lock()
	h.batch = append(h.batch, v)
	if len(h.batch) < h.size {
		h.batchMu.Unlock()
		return
	}

	frame := make([]byte, 2*len(h.batch))
	for i, s := range h.batch {
		binary.LittleEndian.PutUint16(frame[i*2:], s)
	}
	h.batch = h.batch[:0]
	h.batchMu.Unlock()

	h.broadcast(websocket.BinaryMessage, frame)
}

// Rate broadcasts one heart-rate reading as JSON.
func (h *Hub) Rate(r beat.Reading) {
	b, err := json.Marshal(RateMsg{
		Ts:  r.Time.UnixMilli(),
		BPM: r.BPM,
		Avg: r.Average,
	})
	if err != nil {
		return
	}
	h.broadcast(websocket.TextMessage, b)
}

func (h *Hub) add(c *websocket.Conn) {
	h.mu.Lock()
	h.conns[c] = true
	h.mu.Unlock()
}

func (h *Hub) remove(c *websocket.Conn) {
	h.mu.Lock()
	delete(h.conns, c)
	h.mu.Unlock()
}

func (h *Hub) snapshot() []*websocket.Conn {
	h.mu.Lock()
	clients := make([]*websocket.Conn, 0, len(h.conns))
	for c := range h.conns {
		clients = append(clients, c)
	}
	h.mu.Unlock()
	return clients
}

func (h *Hub) broadcast(messageType int, b []byte) {
	for _, c := range h.snapshot() {
		_ = c.SetWriteDeadline(time.Now().Add(writeDeadline))
		if err := c.WriteMessage(messageType, b); err != nil {
			_ = c.Close()
			h.remove(c)
		}
	}
}
