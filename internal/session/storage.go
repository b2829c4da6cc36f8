package session

import "context"

// Driver defines the persistence API backing the session store.
// Implementations persist at most one session record.
type Driver interface {
	// Load retrieves the persisted session record.
	// It returns (nil, nil) if no record is present.
	Load(ctx context.Context) (*Session, error)

	// Save persists the given session record, overwriting any prior one
	Save(ctx context.Context, session *Session) error

	// Clear removes the persisted session record; clearing an absent record is a no-op
	Clear(ctx context.Context) error

	// Close closes the storage driver (i.e. closes a database handle)
	Close()
}
