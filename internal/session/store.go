package session

import (
	"context"
	"sync"
)

// Store exclusively owns the current operator session.
// All other components receive read-only snapshots; only the store itself and
// the upstream gateway's login/logout paths ever write it.
type Store struct {
	mtx     sync.RWMutex
	driver  Driver
	current *Session
}

// NewStore creates a new session store on top of the given persistence driver
func NewStore(driver Driver) *Store {
	return &Store{
		driver: driver,
	}
}

// Restore reconstructs the session from persisted storage.
// A read failure or a malformed/token-less record fails safe: the persisted
// record is cleared and nil is returned, never an error.
func (store *Store) Restore(ctx context.Context) *Session {
	store.mtx.Lock()
	defer store.mtx.Unlock()

	obj, err := store.driver.Load(ctx)
	if err != nil || !obj.Valid() {
		_ = store.driver.Clear(ctx)
		store.current = nil
		return nil
	}
	store.current = obj
	return obj.Copy()
}

// Save persists the given session, overwriting any prior value
func (store *Store) Save(ctx context.Context, obj *Session) error {
	store.mtx.Lock()
	defer store.mtx.Unlock()

	if err := store.driver.Save(ctx, obj); err != nil {
		return err
	}
	store.current = obj.Copy()
	return nil
}

// Clear removes the persisted session; clearing an absent session is a no-op
func (store *Store) Clear(ctx context.Context) error {
	store.mtx.Lock()
	defer store.mtx.Unlock()

	if err := store.driver.Clear(ctx); err != nil {
		return err
	}
	store.current = nil
	return nil
}

// Current returns a snapshot of the current session, or nil if no valid session exists
func (store *Store) Current() *Session {
	store.mtx.RLock()
	defer store.mtx.RUnlock()

	if !store.current.Valid() {
		return nil
	}
	return store.current.Copy()
}

// CurrentToken returns the bearer token of the current session, or an empty string if no valid session exists
func (store *Store) CurrentToken() string {
	store.mtx.RLock()
	defer store.mtx.RUnlock()

	if !store.current.Valid() {
		return ""
	}
	return store.current.Token
}

// UpdateCountyName refreshes the cached county display label of the current session.
// This keeps the label fresh after a dashboard resolution without requiring a new login.
func (store *Store) UpdateCountyName(ctx context.Context, name string) error {
	store.mtx.Lock()
	defer store.mtx.Unlock()

	if !store.current.Valid() || store.current.CountyName == name {
		return nil
	}
	updated := store.current.Copy()
	updated.CountyName = name
	if err := store.driver.Save(ctx, updated); err != nil {
		return err
	}
	store.current = updated
	return nil
}
