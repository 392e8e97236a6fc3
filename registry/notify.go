package registry

import "sync"

// ChangeNotifier fans change signals out to subscribers. Each subscriber
// channel holds at most one pending signal, so bursts of changes coalesce
// and a slow reader never blocks Notify. The zero value is ready to use.
type ChangeNotifier struct {
	mu     sync.Mutex
	subs   []chan struct{}
	closed bool
}

func (cn *ChangeNotifier) Notify() {
	cn.mu.Lock()
	defer cn.mu.Unlock()
	for _, ch := range cn.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Subscriber registers a new channel. Once the notifier is closed the
// returned channel is already closed.
func (cn *ChangeNotifier) Subscriber() <-chan struct{} {
	cn.mu.Lock()
	defer cn.mu.Unlock()
	ch := make(chan struct{}, 1)
	if cn.closed {
		close(ch)
		return ch
	}
	cn.subs = append(cn.subs, ch)
	return ch
}

// Close closes every subscriber channel; later calls do nothing.
func (cn *ChangeNotifier) Close() {
	cn.mu.Lock()
	defer cn.mu.Unlock()
	if cn.closed {
		return
	}
	cn.closed = true
	for _, ch := range cn.subs {
		close(ch)
	}
	cn.subs = nil
}
