package mqtt

import (
	"testing"
)

func payloads(msgs []bufferedMsg) []byte {
	out := make([]byte, len(msgs))
	for i, m := range msgs {
		out[i] = m.payload[0]
	}
	return out
}

func TestOutboxEmptyDrain(t *testing.T) {
	o := newOutbox(10)
	if got := o.drain(); got != nil {
		t.Errorf("expected nil from empty drain, got %d items", len(got))
	}
}

func TestOutboxKeepsOrder(t *testing.T) {
	o := newOutbox(10)
	for i := 0; i < 5; i++ {
		o.push(bufferedMsg{topic: "servo-bridge/events", payload: []byte{byte(i)}})
	}

	got := o.drain()
	if string(payloads(got)) != string([]byte{0, 1, 2, 3, 4}) {
		t.Errorf("unexpected order: %v", payloads(got))
	}
	if o.len() != 0 {
		t.Errorf("expected empty outbox after drain, got %d", o.len())
	}
	if again := o.drain(); again != nil {
		t.Errorf("expected nil from second drain, got %d items", len(again))
	}
}

func TestOutboxCoalescesRetainedPerTopic(t *testing.T) {
	o := newOutbox(10)
	o.push(bufferedMsg{topic: "servo-bridge/state", payload: []byte{1}, retained: true})
	o.push(bufferedMsg{topic: "servo-bridge/events", payload: []byte{2}})
	o.push(bufferedMsg{topic: "servo-bridge/state", payload: []byte{3}, retained: true})
	o.push(bufferedMsg{topic: "servo-bridge/system", payload: []byte{4}, retained: true})
	o.push(bufferedMsg{topic: "servo-bridge/state", payload: []byte{5}, retained: true})

	got := o.drain()
	want := []byte{2, 4, 5}
	if string(payloads(got)) != string(want) {
		t.Errorf("got %v, want %v", payloads(got), want)
	}
}

func TestOutboxDoesNotCoalesceUnretained(t *testing.T) {
	o := newOutbox(10)
	o.push(bufferedMsg{topic: "servo-bridge/events", payload: []byte{1}})
	o.push(bufferedMsg{topic: "servo-bridge/events", payload: []byte{2}})

	if o.len() != 2 {
		t.Errorf("expected 2 messages, got %d", o.len())
	}
}

func TestOutboxOverflowDropsOldest(t *testing.T) {
	o := newOutbox(5)
	for i := 0; i < 8; i++ {
		o.push(bufferedMsg{topic: "servo-bridge/events", payload: []byte{byte(i)}})
	}

	if o.len() != 5 {
		t.Fatalf("expected 5 messages, got %d", o.len())
	}
	if o.dropped != 3 {
		t.Errorf("dropped: got %d, want 3", o.dropped)
	}

	got := o.drain()
	want := []byte{3, 4, 5, 6, 7}
	if string(payloads(got)) != string(want) {
		t.Errorf("got %v, want %v", payloads(got), want)
	}
	if o.dropped != 0 {
		t.Error("drain should reset the drop count")
	}
}

func TestOutboxReusableAfterDrain(t *testing.T) {
	o := newOutbox(3)
	o.push(bufferedMsg{topic: "a", payload: []byte{1}})
	o.drain()

	o.push(bufferedMsg{topic: "b", payload: []byte{2}, qos: 1, retained: true})
	got := o.drain()
	if len(got) != 1 {
		t.Fatalf("expected 1 message, got %d", len(got))
	}
	m := got[0]
	if m.topic != "b" || m.qos != 1 || !m.retained || m.payload[0] != 2 {
		t.Errorf("fields not preserved: %+v", m)
	}
}
