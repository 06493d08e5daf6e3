package engine

import (
	"sync"

	"github.com/tierflow/tierflow/engine/trace"
)

// Update is one notification pushed to subscribers: a freshly published
// record, a newly appended event, or a phase change. Exactly one of
// Record/Event is set for data updates; both are nil on phase changes.
type Update struct {
	Record *trace.Record
	Event  *trace.Event
	Phase  Phase
}

// broadcaster fans updates out to subscribers. Sends never block the
// run loop: a subscriber whose buffer is full misses that update and
// must fall back to pulling Records()/Events().
type broadcaster struct {
	mu     sync.Mutex
	subs   map[int]chan Update
	nextID int
}

func newBroadcaster() *broadcaster {
	return &broadcaster{subs: make(map[int]chan Update)}
}

// subscribe registers a new subscriber with the given buffer size and
// returns its channel plus an unsubscribe function.
func (b *broadcaster) subscribe(buffer int) (<-chan Update, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	ch := make(chan Update, max(1, buffer))
	b.subs[id] = ch

	unsubscribe := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub)
		}
	}
	return ch, unsubscribe
}

// publish delivers the update to every subscriber that has buffer room.
func (b *broadcaster) publish(u Update) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- u:
		default:
		}
	}
}
