package inmem

import (
	"context"
	"github.com/countyhealth/portal/internal/session"
	"github.com/hashicorp/go-memdb"
)

// recordKey is the single key the session record is stored under
const recordKey = "current"

type record struct {
	Key     string
	Session *session.Session
}

var dbSchema = &memdb.DBSchema{
	Tables: map[string]*memdb.TableSchema{
		"session": {
			Name: "session",
			Indexes: map[string]*memdb.IndexSchema{
				"id": {
					Name:         "id",
					Unique:       true,
					AllowMissing: false,
					Indexer:      &memdb.StringFieldIndex{Field: "Key"},
				},
			},
		},
	},
}

// Driver represents the in-memory session storage driver built using hashicorp/go-memdb.
// Sessions held by this driver do not survive a process restart.
type Driver struct {
	db *memdb.MemDB
}

var _ session.Driver = (*Driver)(nil)

// New creates a new empty in-memory session storage driver
func New() (*Driver, error) {
	db, err := memdb.NewMemDB(dbSchema)
	if err != nil {
		return nil, err
	}
	return &Driver{db}, nil
}

// Load retrieves the stored session record
func (driver *Driver) Load(_ context.Context) (*session.Session, error) {
	txn := driver.db.Txn(false)
	obj, err := txn.First("session", "id", recordKey)
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, nil
	}
	return obj.(*record).Session, nil
}

// Save stores the given session record, overwriting any prior one
func (driver *Driver) Save(_ context.Context, obj *session.Session) error {
	txn := driver.db.Txn(true)
	defer txn.Abort()
	if err := txn.Insert("session", &record{Key: recordKey, Session: obj}); err != nil {
		return err
	}
	txn.Commit()
	return nil
}

// Clear removes the stored session record
func (driver *Driver) Clear(_ context.Context) error {
	txn := driver.db.Txn(true)
	defer txn.Abort()
	if _, err := txn.DeleteAll("session", "id", recordKey); err != nil {
		return err
	}
	txn.Commit()
	return nil
}

// Close is a no-op for the in-memory driver
func (driver *Driver) Close() {}
