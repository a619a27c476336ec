package mqtt

import (
	"sync"
	"testing"
)

func pushN(o *outbox, from, to int) {
	for i := from; i < to; i++ {
		o.push(pendingMsg{topic: Topic, payload: []byte{byte(i)}})
	}
}

func TestOutboxEmptyDrain(t *testing.T) {
	o := newOutbox(10)
	if got := o.drain(); got != nil {
		t.Errorf("expected nil from empty drain, got %d items", len(got))
	}
}

func TestOutboxDefaultCapacity(t *testing.T) {
	o := newOutbox(0)
	if len(o.buf) != DefaultBufferSize {
		t.Errorf("expected capacity %d, got %d", DefaultBufferSize, len(o.buf))
	}
}

func TestOutboxPushAndDrainInOrder(t *testing.T) {
	o := newOutbox(10)
	pushN(o, 0, 5)

	got := o.drain()
	if len(got) != 5 {
		t.Fatalf("expected 5 items, got %d", len(got))
	}
	for i := range got {
		if got[i].payload[0] != byte(i) {
			t.Errorf("item %d: expected payload %d, got %d", i, i, got[i].payload[0])
		}
	}

	if got := o.drain(); got != nil {
		t.Errorf("expected nil from second drain, got %d items", len(got))
	}
}

func TestOutboxOverflowDropsOldest(t *testing.T) {
	const capacity = 5
	o := newOutbox(capacity)

	// 0..7 pushed, 3..7 kept
	pushN(o, 0, capacity+3)

	got := o.drain()
	if len(got) != capacity {
		t.Fatalf("expected %d items, got %d", capacity, len(got))
	}
	for i := range got {
		want := byte(i + 3)
		if got[i].payload[0] != want {
			t.Errorf("item %d: expected payload %d, got %d", i, want, got[i].payload[0])
		}
	}
	if o.droppedTotal() != 3 {
		t.Errorf("expected 3 dropped, got %d", o.droppedTotal())
	}
	if o.overflow {
		t.Error("overflow flag should clear on drain")
	}
}

func TestOutboxMultipleCycles(t *testing.T) {
	o := newOutbox(5)

	pushN(o, 0, 3)
	if got := o.drain(); len(got) != 3 {
		t.Fatalf("cycle 1: expected 3 items, got %d", len(got))
	}

	pushN(o, 10, 14)
	got := o.drain()
	if len(got) != 4 {
		t.Fatalf("cycle 2: expected 4 items, got %d", len(got))
	}
	for i, msg := range got {
		if want := byte(10 + i); msg.payload[0] != want {
			t.Errorf("cycle 2 item %d: expected %d, got %d", i, want, msg.payload[0])
		}
	}
}

func TestOutboxLen(t *testing.T) {
	o := newOutbox(10)
	if o.len() != 0 {
		t.Errorf("expected len 0, got %d", o.len())
	}

	pushN(o, 0, 2)
	if o.len() != 2 {
		t.Errorf("expected len 2, got %d", o.len())
	}

	o.drain()
	if o.len() != 0 {
		t.Errorf("expected len 0 after drain, got %d", o.len())
	}
}

func TestOutboxPreservesFields(t *testing.T) {
	o := newOutbox(10)
	o.push(pendingMsg{
		topic:    TopicSystem,
		payload:  []byte(`{"test":true}`),
		qos:      1,
		retained: true,
	})

	got := o.drain()
	if len(got) != 1 {
		t.Fatalf("expected 1 item, got %d", len(got))
	}
	if got[0].topic != TopicSystem {
		t.Errorf("topic: got %s, want %s", got[0].topic, TopicSystem)
	}
	if string(got[0].payload) != `{"test":true}` {
		t.Errorf("payload: got %s", got[0].payload)
	}
	if got[0].qos != 1 {
		t.Errorf("qos: got %d, want 1", got[0].qos)
	}
	if !got[0].retained {
		t.Error("retained: got false, want true")
	}
}

func TestOutboxConcurrentPushDrain(t *testing.T) {
	o := newOutbox(1000)

	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			pushN(o, 0, 100)
		}()
	}

	drained := 0
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	for {
		select {
		case <-done:
			drained += len(o.drain())
			if drained != 400 {
				t.Errorf("expected 400 messages, got %d", drained)
			}
			return
		default:
			drained += len(o.drain())
		}
	}
}
