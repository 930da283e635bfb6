package livequery

// Latest is a one-slot mailbox. Put replaces an unread value, so a slow reader
// only ever sees the newest snapshot.
type Latest[T any] struct {
	ch chan T
}

// NewLatest creates an empty mailbox.
func NewLatest[T any]() *Latest[T] {
	return &Latest[T]{ch: make(chan T, 1)}
}

// Put stores v, dropping any value not yet taken.
func (l *Latest[T]) Put(v T) {
	for {
		select {
		case l.ch <- v:
			return
		default:
		}
		select {
		case <-l.ch:
		default:
		}
	}
}

// C returns the receive side.
func (l *Latest[T]) C() <-chan T {
	return l.ch
}
