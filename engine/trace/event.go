package trace

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventKind classifies a logged occurrence.
type EventKind string

const (
	EventInfo      EventKind = "info"
	EventWarning   EventKind = "warning"
	EventCritical  EventKind = "critical"
	EventMigration EventKind = "migration"
)

// Event is one entry in the append-only run log.
type Event struct {
	ID        string
	Timestamp time.Time
	Kind      EventKind
	Message   string
	UnitIndex int
}

// EventLog is an append-only, time-ordered sequence of events.
// There is no deduplication, no capacity bound, and no removal.
// Safe for concurrent append and read.
type EventLog struct {
	mu     sync.Mutex
	events []Event
	notify func(Event)
}

// SetNotify registers a callback invoked after each append, outside the
// log's lock. Used to push events to live subscribers.
func (l *EventLog) SetNotify(fn func(Event)) {
	l.mu.Lock()
	l.notify = fn
	l.mu.Unlock()
}

// NewEventLog creates an empty EventLog ready for recording.
func NewEventLog() *EventLog {
	return &EventLog{events: make([]Event, 0)}
}

// Append records one event with a fresh identifier and the current time,
// and returns the stored event.
func (l *EventLog) Append(kind EventKind, message string, unitIndex int) Event {
	ev := Event{
		ID:        uuid.NewString(),
		Timestamp: time.Now(),
		Kind:      kind,
		Message:   message,
		UnitIndex: unitIndex,
	}
	l.mu.Lock()
	l.events = append(l.events, ev)
	notify := l.notify
	l.mu.Unlock()
	if notify != nil {
		notify(ev)
	}
	return ev
}

// Events returns a copy of the full ordered sequence.
func (l *EventLog) Events() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Event, len(l.events))
	copy(out, l.events)
	return out
}

// Len returns the number of recorded events.
func (l *EventLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.events)
}
