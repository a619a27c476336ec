package mqtt

import (
	"log"
	"sync"
)

// DefaultBufferSize is the number of messages held while the broker is away.
const DefaultBufferSize = 256

// pendingMsg stores a serialized MQTT message for replay after reconnection.
type pendingMsg struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// outbox is a fixed-capacity FIFO of messages published while disconnected.
// When full the oldest message is dropped. Safe for concurrent use: the
// control loop pushes while the client's connect callback drains.
type outbox struct {
	mu       sync.Mutex
	buf      []pendingMsg
	head     int // next write position
	count    int
	overflow bool // true if any message was dropped since last drain
	dropped  int
}

func newOutbox(capacity int) *outbox {
	if capacity <= 0 {
		capacity = DefaultBufferSize
	}
	return &outbox{buf: make([]pendingMsg, capacity)}
}

func (o *outbox) push(msg pendingMsg) {
	o.mu.Lock()
	defer o.mu.Unlock()

	capacity := len(o.buf)
	o.buf[o.head] = msg
	o.head = (o.head + 1) % capacity
	if o.count < capacity {
		o.count++
		return
	}
	// The write above replaced the oldest entry.
	o.dropped++
	if !o.overflow {
		log.Printf("mqtt: buffer full (%d messages), dropping oldest", capacity)
		o.overflow = true
	}
}

// drain removes and returns every message, oldest first.
func (o *outbox) drain() []pendingMsg {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.count == 0 {
		return nil
	}

	capacity := len(o.buf)
	out := make([]pendingMsg, o.count)
	start := (o.head - o.count + capacity) % capacity
	for i := range out {
		out[i] = o.buf[(start+i)%capacity]
	}

	o.count = 0
	o.head = 0
	o.overflow = false
	return out
}

func (o *outbox) len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.count
}

// droppedTotal returns how many messages were lost to overflow since start.
func (o *outbox) droppedTotal() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.dropped
}
