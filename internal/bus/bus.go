package bus

import (
	"sync"

	"github.com/jkaberg/skoda-hass/internal/vehicle"
)

// Bus provides fan-out pub/sub semantics for *vehicle.Snapshot messages.
// Each Subscribe call gets its own channel that receives every future
// publication. Past snapshots are not replayed. Safe for concurrent
// publishers and subscribers.
type Bus struct {
	mu          sync.RWMutex
	subscribers []chan *vehicle.Snapshot
}

// New creates a ready-to-use Bus.
func New() *Bus { return &Bus{} }

// Subscribe returns a read-only channel that will receive all future
// snapshots.
func (b *Bus) Subscribe() <-chan *vehicle.Snapshot {
	ch := make(chan *vehicle.Snapshot, 1) // small buffer avoids blocking
	b.mu.Lock()
	b.subscribers = append(b.subscribers, ch)
	b.mu.Unlock()
	return ch
}

// Publish delivers the snapshot to all subscribers best-effort. A subscriber
// whose buffer is full skips this snapshot and picks up the next one; the
// producer never stalls.
func (b *Bus) Publish(s *vehicle.Snapshot) {
	b.mu.RLock()
	subs := make([]chan *vehicle.Snapshot, len(b.subscribers))
	copy(subs, b.subscribers)
	b.mu.RUnlock()

	for _, ch := range subs {
		select {
		case ch <- s:
		default:
		}
	}
}
