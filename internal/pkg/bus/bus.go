// internal/pkg/bus/bus.go
package bus

import "sync"

// Topic identifies a notification topic
type Topic string

const (
	TopicCartUpdated   Topic = "cartUpdated"
	TopicUserLoggedOut Topic = "userLoggedOut"
)

// Event is delivered to every subscriber of its topic
type Event struct {
	Topic     Topic  `json:"topic"`
	SessionID string `json:"session_id"`
}

// Handler receives published events
type Handler func(Event)

// Bus is an in-process publish/subscribe bus. It decouples components that
// mutate shared session state from components that must react to it.
type Bus struct {
	mu     sync.Mutex
	nextID int
	subs   map[Topic][]subscription
}

type subscription struct {
	id      int
	handler Handler
}

// New creates an empty bus
func New() *Bus {
	return &Bus{
		subs: make(map[Topic][]subscription),
	}
}

// Subscribe registers a handler for a topic and returns a function that
// deregisters it. Components that subscribe on startup must call the returned
// function on teardown so handlers never fire against torn-down state.
func (b *Bus) Subscribe(topic Topic, handler Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.subs[topic] = append(b.subs[topic], subscription{id: id, handler: handler})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()

		current := b.subs[topic]
		for i := range current {
			if current[i].id == id {
				b.subs[topic] = append(current[:i], current[i+1:]...)
				break
			}
		}
	}
}

// Publish delivers the event to the handlers registered at publish time,
// once each, in registration order, synchronously on the calling goroutine.
// There is no queuing and no replay: a subscriber registered after Publish
// returns will not see the event and must fetch current state itself.
// Publishing with zero subscribers is a no-op.
func (b *Bus) Publish(event Event) {
	b.mu.Lock()
	current := b.subs[event.Topic]
	snapshot := make([]subscription, len(current))
	copy(snapshot, current)
	b.mu.Unlock()

	for _, sub := range snapshot {
		sub.handler(event)
	}
}
