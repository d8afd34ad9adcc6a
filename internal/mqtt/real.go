package mqtt

import (
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/golang/glog"

	"github.com/sweeney/servo-bridge/internal/logic"
)

const (
	// outboxCapacity bounds the messages kept while disconnected.
	outboxCapacity = 100
	publishTimeout = 5 * time.Second
)

// RealPublisher publishes to an actual MQTT broker.
// Messages published while the connection is down are buffered and replayed
// once it comes back. Publishing never waits for the broker to acknowledge;
// delivery failures are logged.
type RealPublisher struct {
	client paho.Client
	topics Topics

	mu  sync.Mutex
	box *outbox
}

// NewRealPublisher creates a publisher for the given broker. The connection
// is established in the background and retried, so startup does not depend
// on the broker being reachable.
func NewRealPublisher(broker, clientID string, topics Topics) *RealPublisher {
	p := &RealPublisher{
		topics: topics,
		box:    newOutbox(outboxCapacity),
	}

	will, _ := FormatSystemPayload(SystemEvent{Timestamp: time.Now(), Event: "OFFLINE"})
	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetWill(topics.System, string(will), 1, true).
		SetOnConnectHandler(func(paho.Client) {
			glog.Infof("mqtt: connected to %s", broker)
			p.flush()
		}).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			glog.Warningf("mqtt: connection lost: %v", err)
		})

	p.client = paho.NewClient(opts)
	p.client.Connect()
	return p
}

// PublishState sends the bank state to the state topic.
func (p *RealPublisher) PublishState(event StateEvent) error {
	payload, err := FormatStatePayload(event)
	if err != nil {
		return fmt.Errorf("format state payload: %w", err)
	}
	// QoS 0 (at-most-once), retained so new subscribers see the last state
	return p.send(bufferedMsg{topic: p.topics.State, payload: payload, qos: 0, retained: true})
}

// Publish sends an input transition to the events topic.
func (p *RealPublisher) Publish(event logic.Event) error {
	payload, err := FormatPayload(event)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}
	return p.send(bufferedMsg{topic: p.topics.Events, payload: payload, qos: 0})
}

// PublishSystem sends a system lifecycle event to the system topic.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}
	// QoS 1 (at-least-once) for lifecycle events - we want to ensure delivery
	return p.send(bufferedMsg{topic: p.topics.System, payload: payload, qos: 1, retained: event.Retained})
}

func (p *RealPublisher) send(msg bufferedMsg) error {
	if !p.client.IsConnectionOpen() {
		p.mu.Lock()
		p.box.push(msg)
		p.mu.Unlock()
		return nil
	}
	p.publish(msg)
	return nil
}

func (p *RealPublisher) publish(msg bufferedMsg) {
	token := p.client.Publish(msg.topic, msg.qos, msg.retained, msg.payload)
	go func() {
		if !token.WaitTimeout(publishTimeout) {
			glog.Warningf("mqtt: publish %s: timeout", msg.topic)
			return
		}
		if err := token.Error(); err != nil {
			glog.Warningf("mqtt: publish %s: %v", msg.topic, err)
		}
	}()
}

// flush replays buffered messages. Runs on paho's connect callback.
func (p *RealPublisher) flush() {
	p.mu.Lock()
	msgs := p.box.drain()
	p.mu.Unlock()

	if len(msgs) == 0 {
		return
	}
	glog.Infof("mqtt: replaying %d buffered messages", len(msgs))
	for _, m := range msgs {
		p.publish(m)
	}
}

// IsConnected reports whether the broker connection is up.
func (p *RealPublisher) IsConnected() bool {
	return p.client.IsConnectionOpen()
}

// Buffered returns the number of messages waiting for a connection.
func (p *RealPublisher) Buffered() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.box.len()
}

// Close disconnects from the broker.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000) // 1 second timeout
	return nil
}
