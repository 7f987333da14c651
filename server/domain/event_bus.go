package domain

import "sync"

type EventHandler func(Event)

type Subscription struct {
	id   uint64
	kind EventKind
}

func (s Subscription) Kind() EventKind {
	return s.kind
}

type subscriber struct {
	id      uint64
	handler EventHandler
}

// EventBus fans events out to the handlers attached at publish time.
// Handlers run synchronously on the publishing goroutine, in subscription
// order, and must not block.
type EventBus struct {
	mu          sync.Mutex
	nextID      uint64
	subscribers map[EventKind][]subscriber
	published   int64
}

func NewEventBus() *EventBus {
	return &EventBus{
		subscribers: make(map[EventKind][]subscriber),
	}
}

func (b *EventBus) Subscribe(kind EventKind, handler EventHandler) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	b.subscribers[kind] = append(b.subscribers[kind], subscriber{id: b.nextID, handler: handler})
	return Subscription{id: b.nextID, kind: kind}
}

func (b *EventBus) Unsubscribe(sub Subscription) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subscribers[sub.kind]
	for i, s := range subs {
		if s.id != sub.id {
			continue
		}
		// copy so snapshots held by an in-flight Publish stay intact
		next := make([]subscriber, 0, len(subs)-1)
		next = append(next, subs[:i]...)
		next = append(next, subs[i+1:]...)
		if len(next) == 0 {
			delete(b.subscribers, sub.kind)
		} else {
			b.subscribers[sub.kind] = next
		}
		return true
	}
	return false
}

// Publish delivers event to every current subscriber of its kind and returns
// how many handlers were invoked.
func (b *EventBus) Publish(event Event) int {
	b.mu.Lock()
	snapshot := b.subscribers[event.Kind]
	b.published++
	b.mu.Unlock()

	for _, s := range snapshot {
		s.handler(event)
	}
	return len(snapshot)
}

func (b *EventBus) SubscriberCount(kind EventKind) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subscribers[kind])
}

func (b *EventBus) PublishedCount() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.published
}
