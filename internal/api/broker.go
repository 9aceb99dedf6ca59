package api

import (
	"sync"
)

// Event is one message on a topic. Topics are instance IDs; every event is
// also delivered on AllTopic.
type Event struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data"`
}

const (
	AllTopic             = "*"
	EventSolutionCreated = "solution.created"
	EventInstanceDeleted = "instance.deleted"
)

// EventBroker fans events out to subscribers. Slow subscribers miss events
// rather than block publishers.
type EventBroker interface {
	Subscribe(topic string) chan Event
	Unsubscribe(topic string, ch chan Event)
	Publish(topic string, evt Event)
	Close() error
}

// Broker is the in-process EventBroker.
type Broker struct {
	mu   sync.Mutex
	subs map[string]map[chan Event]struct{} // topic -> set of channels
}

func NewBroker() *Broker {
	return &Broker{subs: map[string]map[chan Event]struct{}{}}
}

func (b *Broker) Subscribe(topic string) chan Event {
	ch := make(chan Event, 8)
	b.mu.Lock()
	if b.subs[topic] == nil {
		b.subs[topic] = map[chan Event]struct{}{}
	}
	b.subs[topic][ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

func (b *Broker) Unsubscribe(topic string, ch chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	m := b.subs[topic]
	if _, ok := m[ch]; !ok {
		return
	}
	delete(m, ch)
	if len(m) == 0 {
		delete(b.subs, topic)
	}
	close(ch)
}

func (b *Broker) Publish(topic string, evt Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.deliver(topic, evt)
	if topic != AllTopic {
		b.deliver(AllTopic, evt)
	}
}

func (b *Broker) deliver(topic string, evt Event) {
	for ch := range b.subs[topic] {
		select {
		case ch <- evt:
		default:
		}
	}
}

func (b *Broker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for topic, m := range b.subs {
		for ch := range m {
			close(ch)
		}
		delete(b.subs, topic)
	}
	return nil
}
