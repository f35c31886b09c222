/*
Package events provides the in-memory change-notification bus.

PURPOSE:
  Every write to an alteration or leave-fact store publishes an event so
  that live views (cached month rosters, monthly quotas) know to recompute.
  Publication is fire-and-forget: the writer never blocks on subscriber
  recomputation, and a slow subscriber only loses its own notifications.

TOPICS:
  Events carry a typed topic instead of a single catch-all channel, so a
  subscriber watching one unit's roster is not woken by leave edits:

    alteration:{unit}         roster override written or removed
    leaveFact:{type}:{year}   leave allotment written or deleted

  Subscribing with no topics receives everything (used by the websocket
  feed that mirrors the bus to the browser).

DELIVERY:
  Buffered channels end to end. Publish drops only when the broker is
  stopping; broadcast drops per-subscriber when that subscriber's buffer
  is full. Events carry no payload diffs - "something changed" plus
  enough metadata to pick the affected bucket.
*/
package events

import (
	"fmt"
	"sync"
	"time"
)

// Topic identifies a logical change channel.
type Topic string

// AlterationTopic is the channel for roster overrides of one unit.
func AlterationTopic(unit string) Topic {
	return Topic("alteration:" + unit)
}

// LeaveTopic is the channel for leave facts of one type and year.
func LeaveTopic(leaveType string, year int) Topic {
	return Topic(fmt.Sprintf("leaveFact:%s:%d", leaveType, year))
}

// Event is a change notification. Metadata localizes the change
// (e.g. "date", "months") without carrying row payloads.
type Event struct {
	Topic     Topic
	Timestamp time.Time
	Metadata  map[string]string
}

// Subscriber is a channel that receives events.
type Subscriber chan Event

// Broker manages subscriptions and distribution.
type Broker struct {
	mu          sync.RWMutex
	subscribers map[Subscriber][]Topic
	eventCh     chan Event
	stopCh      chan struct{}
}

// NewBroker creates a stopped broker; call Start before publishing.
func NewBroker() *Broker {
	return &Broker{
		subscribers: make(map[Subscriber][]Topic),
		eventCh:     make(chan Event, 100),
		stopCh:      make(chan struct{}),
	}
}

// Start begins the distribution loop.
func (b *Broker) Start() {
	go b.run()
}

// Stop halts distribution. Pending events are dropped.
func (b *Broker) Stop() {
	close(b.stopCh)
}

// Subscribe registers a subscriber for the given topics.
// No topics means all topics.
func (b *Broker) Subscribe(topics ...Topic) Subscriber {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub := make(Subscriber, 50)
	b.subscribers[sub] = topics
	return sub
}

// Unsubscribe removes and closes a subscriber.
func (b *Broker) Unsubscribe(sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.subscribers[sub]; ok {
		delete(b.subscribers, sub)
		close(sub)
	}
}

// Publish queues an event for distribution. Never blocks the writer
// beyond the broker buffer.
func (b *Broker) Publish(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	select {
	case b.eventCh <- event:
	case <-b.stopCh:
	}
}

func (b *Broker) run() {
	for {
		select {
		case event := <-b.eventCh:
			b.broadcast(event)
		case <-b.stopCh:
			return
		}
	}
}

func (b *Broker) broadcast(event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for sub, topics := range b.subscribers {
		if !matches(topics, event.Topic) {
			continue
		}
		select {
		case sub <- event:
		default:
			// Subscriber buffer full, skip
		}
	}
}

func matches(topics []Topic, t Topic) bool {
	if len(topics) == 0 {
		return true
	}
	for _, topic := range topics {
		if topic == t {
			return true
		}
	}
	return false
}

// SubscriberCount returns the number of active subscribers.
func (b *Broker) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}
