package badger

import (
	"context"
	"errors"
	"github.com/countyhealth/portal/internal/session"
	badgerdb "github.com/dgraph-io/badger/v4"
	"github.com/timshannon/badgerhold/v4"
)

// recordKey is the single key the session record is persisted under
const recordKey = "current"

// Driver represents the durable session storage driver built using timshannon/badgerhold
type Driver struct {
	path  string
	store *badgerhold.Store
}

var _ session.Driver = (*Driver)(nil)

// New creates a new durable session storage driver.
// Use Initialize to open the underlying badger database.
func New(path string) *Driver {
	return &Driver{
		path: path,
	}
}

// Initialize opens the underlying badger database
func (driver *Driver) Initialize(_ context.Context) error {
	options := badgerhold.DefaultOptions
	options.Dir = driver.path
	options.ValueDir = driver.path
	options.Logger = nil

	store, err := badgerhold.Open(options)
	if err != nil {
		return err
	}
	driver.store = store
	return nil
}

// Load retrieves the persisted session record
func (driver *Driver) Load(_ context.Context) (*session.Session, error) {
	obj := new(session.Session)
	err := driver.store.Get(recordKey, obj)
	if errors.Is(err, badgerhold.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return obj, nil
}

// Save persists the given session record, overwriting any prior one
func (driver *Driver) Save(_ context.Context, obj *session.Session) error {
	return driver.store.Upsert(recordKey, obj)
}

// Clear removes the persisted session record
func (driver *Driver) Clear(_ context.Context) error {
	err := driver.store.Delete(recordKey, &session.Session{})
	if errors.Is(err, badgerhold.ErrNotFound) {
		return nil
	}
	return err
}

// Maintain runs a badger value log garbage collection cycle.
// It is intended to be scheduled as a repeating task.
func (driver *Driver) Maintain() error {
	err := driver.store.Badger().RunValueLogGC(0.5)
	if errors.Is(err, badgerdb.ErrNoRewrite) {
		return nil
	}
	return err
}

// Close closes the underlying badger database
func (driver *Driver) Close() {
	if driver.store != nil {
		_ = driver.store.Close()
		driver.store = nil
	}
}
