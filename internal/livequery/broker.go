// Package livequery turns change signals into snapshot subscriptions.
package livequery

import (
	"context"
	"sync"

	"foodstall/internal/models"
)

// Notifier hands out change signals for a topic. Signals coalesce: a watcher
// that has not drained its channel sees one pending signal, not many.
type Notifier interface {
	Watch(topic string) (<-chan struct{}, func())
}

// Announcer is told about every successful write to a collection.
type Announcer interface {
	Announce(ctx context.Context, ev models.ChangeEvent)
}

// Broker is the in-process Notifier. Topics are collection names.
type Broker struct {
	mu       sync.Mutex
	watchers map[string]map[chan struct{}]struct{}
}

// NewBroker creates a broker with no watchers.
func NewBroker() *Broker {
	return &Broker{watchers: make(map[string]map[chan struct{}]struct{})}
}

// Watch registers a watcher. The returned func unregisters it and may be called more than once.
func (b *Broker) Watch(topic string) (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	b.mu.Lock()
	set, ok := b.watchers[topic]
	if !ok {
		set = make(map[chan struct{}]struct{})
		b.watchers[topic] = set
	}
	set[ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.watchers[topic], ch)
			if len(b.watchers[topic]) == 0 {
				delete(b.watchers, topic)
			}
			b.mu.Unlock()
		})
	}
}

// Publish signals every watcher of topic without blocking.
func (b *Broker) Publish(topic string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for ch := range b.watchers[topic] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Announce publishes the event's collection.
func (b *Broker) Announce(_ context.Context, ev models.ChangeEvent) {
	b.Publish(ev.Collection)
}

// Watchers returns the number of registered watchers for topic.
func (b *Broker) Watchers(topic string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.watchers[topic])
}
