// Package notifier broadcasts dataset reloads to open SSE streams.
package notifier

import "sync"

// Notifier delivers the latest dataset generation to every subscriber.
// Each subscriber holds at most one pending generation; a newer broadcast
// replaces an unread older one.
type Notifier struct {
	mu        sync.RWMutex
	listeners map[chan uint64]struct{}
}

// New creates a new Notifier instance.
func New() *Notifier {
	return &Notifier{
		listeners: make(map[chan uint64]struct{}),
	}
}

// Subscribe returns a channel that receives generations as they are published.
// The caller must call Unsubscribe when done.
func (n *Notifier) Subscribe() chan uint64 {
	ch := make(chan uint64, 1)
	n.mu.Lock()
	n.listeners[ch] = struct{}{}
	n.mu.Unlock()
	return ch
}

// Unsubscribe removes a listener channel and closes it.
func (n *Notifier) Unsubscribe(ch chan uint64) {
	n.mu.Lock()
	delete(n.listeners, ch)
	n.mu.Unlock()
	close(ch)
}

// Len returns the number of subscribers.
func (n *Notifier) Len() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.listeners)
}

// Broadcast publishes generation to all listeners without blocking.
func (n *Notifier) Broadcast(generation uint64) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	for ch := range n.listeners {
		select {
		case ch <- generation:
		default:
			// Drop the stale pending value and publish the newer one.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- generation:
			default:
			}
		}
	}
}
