package mqtt

import (
	"errors"
	"sync"

	"github.com/golang/glog"

	"github.com/sweeney/servo-bridge/internal/logic"
)

// DefaultQueueDepth is the number of messages an AsyncPublisher holds before
// it starts refusing new ones.
const DefaultQueueDepth = 64

var (
	ErrQueueFull = errors.New("mqtt: publish queue full")
	ErrClosed    = errors.New("mqtt: publisher closed")
)

type job struct {
	what string
	fn   func() error
}

// AsyncPublisher hands every publish to a single worker goroutine, so the
// caller never waits on the broker. Messages go out in the order they were
// accepted. Failures are logged by the worker.
type AsyncPublisher struct {
	inner Publisher
	queue chan job
	done  chan struct{}

	mu     sync.RWMutex
	closed bool
}

// NewAsyncPublisher wraps inner. depth <= 0 selects DefaultQueueDepth.
func NewAsyncPublisher(inner Publisher, depth int) *AsyncPublisher {
	if depth <= 0 {
		depth = DefaultQueueDepth
	}
	a := &AsyncPublisher{
		inner: inner,
		queue: make(chan job, depth),
		done:  make(chan struct{}),
	}
	go a.run()
	return a
}

func (a *AsyncPublisher) run() {
	defer close(a.done)
	for j := range a.queue {
		if err := j.fn(); err != nil {
			glog.Warningf("mqtt: %s: %v", j.what, err)
		}
	}
}

func (a *AsyncPublisher) enqueue(what string, fn func() error) error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return ErrClosed
	}
	select {
	case a.queue <- job{what: what, fn: fn}:
		return nil
	default:
		return ErrQueueFull
	}
}

func (a *AsyncPublisher) PublishState(event StateEvent) error {
	return a.enqueue("publish state", func() error { return a.inner.PublishState(event) })
}

func (a *AsyncPublisher) Publish(event logic.Event) error {
	return a.enqueue("publish event", func() error { return a.inner.Publish(event) })
}

func (a *AsyncPublisher) PublishSystem(event SystemEvent) error {
	return a.enqueue("publish "+event.Event, func() error { return a.inner.PublishSystem(event) })
}

// IsConnected reports the wrapped publisher's connection, or false when it
// has none.
func (a *AsyncPublisher) IsConnected() bool {
	if cs, ok := a.inner.(ConnectionStatus); ok {
		return cs.IsConnected()
	}
	return false
}

// Close stops accepting messages, waits for the queue to drain and then
// closes the wrapped publisher. Only the first call closes it.
func (a *AsyncPublisher) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		<-a.done
		return nil
	}
	a.closed = true
	close(a.queue)
	a.mu.Unlock()

	<-a.done
	return a.inner.Close()
}
