package event_bus

import "time"

const (
	// EventsChangedType is published after any write that may have changed
	// events on the server: create, update, delete, or bulk import. Writes
	// with ambiguous outcomes (e.g. timeouts) publish it as well.
	EventsChangedType EventType = "events.changed"

	// ProviderSyncedType is published after an external calendar feed sync.
	ProviderSyncedType EventType = "provider.synced"
)

type ChangeOp string

const (
	ChangeOpCreate ChangeOp = "create"
	ChangeOpUpdate ChangeOp = "update"
	ChangeOpDelete ChangeOp = "delete"
)

type EventsChanged struct {
	Op ChangeOp
	// EventID is empty when the change covers an unknown set of events,
	// e.g. after an ambiguous write failure.
	EventID string
}

type ProviderSynced struct {
	CalendarID string
	Count      int
	SyncedAt   time.Time
}
