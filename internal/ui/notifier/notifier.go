// Package notifier tells open SSE streams that the portal content changed.
package notifier

import "sync"

// Notifier fans content generations out to subscribed streams. Every
// Broadcast starts a new generation; a listener that has not drained its
// previous ping receives only the newest one.
type Notifier struct {
	mu         sync.Mutex
	generation uint64
	listeners  map[chan uint64]struct{}
}

// New creates a new Notifier instance.
func New() *Notifier {
	return &Notifier{
		listeners: make(map[chan uint64]struct{}),
	}
}

// Subscribe returns a channel that receives the generation of every later
// broadcast. The caller must call Unsubscribe when done.
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

// Broadcast starts a new generation and pings every listener with it. It
// never blocks.
func (n *Notifier) Broadcast() uint64 {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.generation++
	for ch := range n.listeners {
		select {
		case <-ch:
		default:
		}
		ch <- n.generation
	}
	return n.generation
}

// Generation returns the number of broadcasts so far.
func (n *Notifier) Generation() uint64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.generation
}

// Listeners returns the number of subscribed channels.
func (n *Notifier) Listeners() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.listeners)
}
