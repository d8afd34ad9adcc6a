package mqtt

import (
	"sync"

	"github.com/sweeney/servo-bridge/internal/logic"
)

// FakePublisher records what would have been sent, with payloads formatted
// exactly as RealPublisher formats them. Read the recorded slices only after
// the publishing goroutine has stopped.
type FakePublisher struct {
	mu sync.Mutex

	States        []StateEvent
	StatePayloads [][]byte

	Events   []logic.Event
	Payloads [][]byte

	SystemEvents   []SystemEvent
	SystemPayloads [][]byte

	// PublishError fails PublishState and Publish; PublishSystemError
	// fails PublishSystem. Failed publishes are not recorded.
	PublishError       error
	PublishSystemError error

	Closed    bool
	Connected bool // returned by IsConnected
}

func NewFakePublisher() *FakePublisher {
	return &FakePublisher{}
}

// formatted runs format unless failWith is set, and reports the payload.
func formatted(failWith error, format func() ([]byte, error)) ([]byte, error) {
	if failWith != nil {
		return nil, failWith
	}
	return format()
}

func (f *FakePublisher) PublishState(event StateEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, err := formatted(f.PublishError, func() ([]byte, error) { return FormatStatePayload(event) })
	if err != nil {
		return err
	}
	f.States, f.StatePayloads = append(f.States, event), append(f.StatePayloads, p)
	return nil
}

func (f *FakePublisher) Publish(event logic.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, err := formatted(f.PublishError, func() ([]byte, error) { return FormatPayload(event) })
	if err != nil {
		return err
	}
	f.Events, f.Payloads = append(f.Events, event), append(f.Payloads, p)
	return nil
}

func (f *FakePublisher) PublishSystem(event SystemEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, err := formatted(f.PublishSystemError, func() ([]byte, error) { return FormatSystemPayload(event) })
	if err != nil {
		return err
	}
	f.SystemEvents, f.SystemPayloads = append(f.SystemEvents, event), append(f.SystemPayloads, p)
	return nil
}

func (f *FakePublisher) Close() error {
	f.mu.Lock()
	f.Closed = true
	f.mu.Unlock()
	return nil
}

func (f *FakePublisher) IsConnected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Connected
}

// Reset forgets everything recorded and clears injected errors.
func (f *FakePublisher) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.States, f.StatePayloads = nil, nil
	f.Events, f.Payloads = nil, nil
	f.SystemEvents, f.SystemPayloads = nil, nil
	f.PublishError, f.PublishSystemError = nil, nil
	f.Closed, f.Connected = false, false
}
