package domain

import "context"

// SnapshotStore loads and saves the whole catalog. Implementations can be a
// JSON file, an in-memory scratch store, or anything that can round-trip a
// Snapshot.
//
// Load reports an unreadable backing file as an error wrapping ErrCorrupted
// and still returns EmptySnapshot, leaving the recovery decision to the
// caller.
type SnapshotStore interface {
	Load(ctx context.Context) (Snapshot, error)
	Save(ctx context.Context, snap Snapshot) error
}

// Quarantiner is an optional interface a SnapshotStore can satisfy to move
// an unreadable backing file aside before it gets overwritten.
type Quarantiner interface {
	Quarantine(ctx context.Context) (string, error)
}

// CatalogStats exposes record counts for status displays.
type CatalogStats interface {
	Counts() (recipes, ingredients int)
}

// CommandParser converts a raw input line into a structured command.
type CommandParser interface {
	Parse(ctx context.Context, input string) (*Command, error)
}

// Notifier delivers result and error lines to the user.
type Notifier interface {
	Notify(ctx context.Context, message string) error
	NotifyUrgent(ctx context.Context, message string) error
}
