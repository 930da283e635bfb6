package livequery

import (
	"context"
	"sync"
	"sync/atomic"
)

var active atomic.Int64

// Active returns the number of open subscriptions in the process.
func Active() int64 {
	return active.Load()
}

// Subscription is a live query handle. Each one delivers snapshots in order
// on its own goroutine.
type Subscription struct {
	cancel context.CancelFunc
	done   chan struct{}

	// mu is held for the duration of a delivery
	mu         sync.Mutex
	closed     atomic.Bool
	inCallback atomic.Bool
}

// Subscribe fetches once immediately and again after every signal on topic.
// callback receives the fetch result or its error.
func Subscribe[T any](n Notifier, topic string, fetch func(context.Context) (T, error), callback func(T, error)) *Subscription {
	ctx, cancel := context.WithCancel(context.Background())
	signals, stop := n.Watch(topic)

	s := &Subscription{
		cancel: func() {
			cancel()
			stop()
		},
		done: make(chan struct{}),
	}
	active.Add(1)

	step := func() {
		if ctx.Err() != nil || s.closed.Load() {
			return
		}
		v, err := fetch(ctx)
		s.deliver(func() { callback(v, err) })
	}

	go func() {
		defer close(s.done)
		defer active.Add(-1)

		step()
		for {
			select {
			case <-ctx.Done():
				return
			case <-signals:
				step()
			}
		}
	}()

	return s
}

// deliver invokes fn unless the subscription closed while fetching.
func (s *Subscription) deliver(fn func()) {
	if s.closed.Load() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed.Load() {
		return
	}
	s.inCallback.Store(true)
	defer s.inCallback.Store(false)
	fn()
}

// Close stops the subscription. It is idempotent and may be called from
// inside the callback. Once it returns no new delivery starts.
func (s *Subscription) Close() {
	if s.closed.CompareAndSwap(false, true) {
		s.cancel()
	}
	if s.inCallback.Load() {
		return
	}
	// wait out a delivery that passed the closed check before we set it
	s.mu.Lock()
	s.mu.Unlock()
}

// Done is closed when the delivery goroutine has exited.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}
