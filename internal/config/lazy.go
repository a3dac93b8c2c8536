package config

import (
	"context"
	"sync"

	"github.com/bpbdbogor/portal/internal/model"
)

// Opener connects to the admin database. LazyStore calls it at most once
// successfully per process.
type Opener func(ctx context.Context) (*Store, error)

// LazyStore defers opening the admin database until the first request needs
// it. Concurrent first callers wait on the same initialization; a failed open
// is retried by the next caller, a successful one is never repeated.
type LazyStore struct {
	open Opener

	mu    sync.Mutex
	store *Store
}

// NewLazyStore wraps open in a once-only initializer.
func NewLazyStore(open Opener) *LazyStore {
	return &LazyStore{open: open}
}

// Get returns the initialized store, opening it on first use.
func (l *LazyStore) Get(ctx context.Context) (*Store, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.store != nil {
		return l.store, nil
	}
	s, err := l.open(ctx)
	if err != nil {
		return nil, err
	}
	l.store = s
	return s, nil
}

// Initialized reports whether the underlying store has been opened.
func (l *LazyStore) Initialized() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.store != nil
}

// FindAdminByUsername opens the store if needed and delegates the lookup.
func (l *LazyStore) FindAdminByUsername(ctx context.Context, username string) (*model.Admin, error) {
	s, err := l.Get(ctx)
	if err != nil {
		return nil, err
	}
	return s.FindAdminByUsername(ctx, username)
}

// Ping opens the store if needed and checks the connection.
func (l *LazyStore) Ping(ctx context.Context) error {
	s, err := l.Get(ctx)
	if err != nil {
		return err
	}
	return s.Ping(ctx)
}

// Close closes the store if it was ever opened.
func (l *LazyStore) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.store == nil {
		return nil
	}
	err := l.store.Close()
	l.store = nil
	return err
}
