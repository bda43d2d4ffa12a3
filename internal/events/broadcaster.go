package events

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// DBReconnected is published after a successful reconnect; subscribers should
// reload anything they fetched from the old database.
const DBReconnected = "db-reconnected"

// subscriberBuffer is how many undelivered events a slow subscriber may hold
// before newer events are dropped for it.
const subscriberBuffer = 8

// Broadcaster fans named events out to every live subscriber.
type Broadcaster struct {
	logger *logrus.Logger

	mu     sync.Mutex
	nextID int
	subs   map[int]chan string
	closed bool
}

// NewBroadcaster creates an empty broadcaster.
func NewBroadcaster(logger *logrus.Logger) *Broadcaster {
	return &Broadcaster{
		logger: logger,
		subs:   make(map[int]chan string),
	}
}

// Subscribe registers a new subscriber. The returned cancel func unregisters
// it and closes the channel; it is safe to call more than once.
func (b *Broadcaster) Subscribe() (<-chan string, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan string, subscriberBuffer)
	if b.closed {
		close(ch)
		return ch, func() {}
	}

	id := b.nextID
	b.nextID++
	b.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() { b.unsubscribe(id) })
	}
}

func (b *Broadcaster) unsubscribe(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ch, ok := b.subs[id]; ok {
		delete(b.subs, id)
		close(ch)
	}
}

// Publish delivers event to every subscriber without blocking.
func (b *Broadcaster) Publish(event string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for id, ch := range b.subs {
		select {
		case ch <- event:
		default:
			b.logger.Warnf("Dropping %s event for slow subscriber %d", event, id)
		}
	}
	b.logger.Debugf("Published %s to %d subscribers", event, len(b.subs))
}

// Subscribers reports the number of live subscribers.
func (b *Broadcaster) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Close closes every subscriber channel. Later subscriptions receive an
// already closed channel.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}
