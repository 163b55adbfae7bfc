package event

import (
	"sync"
)

// subscriberBuffer bounds how many unread changes a slow subscriber can hold
// before further notifications to it are dropped.
const subscriberBuffer = 16

// CartChange is the in-process notification published on every cart
// mutation, so same-process consumers (badge counters, session views) can
// refresh without polling the store.
type CartChange struct {
	ShopperID string
	ItemCount int
	Subtotal  int64
	Cleared   bool
}

// Bus is an in-process publish/subscribe channel for cart changes.
// Subscriptions have scoped lifetimes: the returned cancel function removes
// the subscriber and closes its channel.
type Bus struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan CartChange
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[int]chan CartChange)}
}

// Subscribe registers a subscriber. The cancel function must be called when
// the subscriber is done; after cancel the channel is closed.
func (b *Bus) Subscribe() (<-chan CartChange, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	ch := make(chan CartChange, subscriberBuffer)
	b.subs[id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Publish delivers the change to every subscriber. Subscribers with full
// buffers are skipped rather than blocking the publisher.
func (b *Bus) Publish(change CartChange) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs {
		select {
		case ch <- change:
		default:
		}
	}
}

// SubscriberCount returns the number of active subscribers.
func (b *Bus) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
