package trace

import "sync"

// RunTrace collects the records and events of one run. The record
// sequence is append-only while a run is active; Reset starts a fresh
// sequence (used at run start and before replay).
// Safe for concurrent append and read.
type RunTrace struct {
	mu      sync.Mutex
	records []Record
	Events  *EventLog
}

// NewRunTrace creates a RunTrace ready for recording.
func NewRunTrace() *RunTrace {
	return &RunTrace{
		records: make([]Record, 0),
		Events:  NewEventLog(),
	}
}

// AppendRecord appends one immutable record.
func (t *RunTrace) AppendRecord(r Record) {
	t.mu.Lock()
	t.records = append(t.records, r)
	t.mu.Unlock()
}

// Records returns a copy of the ordered record sequence.
func (t *RunTrace) Records() []Record {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Record, len(t.records))
	copy(out, t.records)
	return out
}

// Len returns the number of records.
func (t *RunTrace) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.records)
}

// Reset clears the visible record sequence and event log.
func (t *RunTrace) Reset() {
	t.mu.Lock()
	t.records = t.records[:0]
	t.mu.Unlock()
	t.Events = NewEventLog()
}
