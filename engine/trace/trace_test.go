package trace

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventLog_AppendOrderAndIdentity(t *testing.T) {
	log := NewEventLog()

	log.Append(EventInfo, "first", 1)
	log.Append(EventWarning, "second", 2)
	log.Append(EventMigration, "third", 3)

	evs := log.Events()
	require.Len(t, evs, 3)
	assert.Equal(t, "first", evs[0].Message)
	assert.Equal(t, "second", evs[1].Message)
	assert.Equal(t, "third", evs[2].Message)

	// fresh identifiers, chronological order
	assert.NotEqual(t, evs[0].ID, evs[1].ID)
	assert.NotEqual(t, evs[1].ID, evs[2].ID)
	assert.False(t, evs[1].Timestamp.Before(evs[0].Timestamp))
	assert.False(t, evs[2].Timestamp.Before(evs[1].Timestamp))
}

func TestEventLog_NoDeduplication(t *testing.T) {
	log := NewEventLog()
	log.Append(EventInfo, "same", 1)
	log.Append(EventInfo, "same", 1)
	assert.Equal(t, 2, log.Len())
}

func TestEventLog_EventsReturnsCopy(t *testing.T) {
	log := NewEventLog()
	log.Append(EventInfo, "original", 1)

	evs := log.Events()
	evs[0].Message = "mutated"

	assert.Equal(t, "original", log.Events()[0].Message)
}

func TestEventLog_Notify(t *testing.T) {
	log := NewEventLog()
	var seen []Event
	log.SetNotify(func(ev Event) { seen = append(seen, ev) })

	appended := log.Append(EventCritical, "boom", 9)

	require.Len(t, seen, 1)
	assert.Equal(t, appended.ID, seen[0].ID)
	assert.Equal(t, EventCritical, seen[0].Kind)
}

func TestRunTrace_AppendAndSnapshot(t *testing.T) {
	rt := NewRunTrace()
	rt.AppendRecord(Record{Index: 1, UnitPayload: "a", Timestamp: time.Now()})
	rt.AppendRecord(Record{Index: 2, UnitPayload: "b", Timestamp: time.Now()})

	records := rt.Records()
	require.Len(t, records, 2)
	assert.Equal(t, 1, records[0].Index)
	assert.Equal(t, 2, records[1].Index)

	// returned slice is a copy
	records[0].UnitPayload = "mutated"
	assert.Equal(t, "a", rt.Records()[0].UnitPayload)
}

func TestRunTrace_Reset(t *testing.T) {
	rt := NewRunTrace()
	rt.AppendRecord(Record{Index: 1})
	rt.Events.Append(EventInfo, "hello", 1)

	rt.Reset()

	assert.Equal(t, 0, rt.Len())
	assert.Equal(t, 0, rt.Events.Len())
}
