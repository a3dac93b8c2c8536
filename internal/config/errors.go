package config

import "errors"

var (
	// ErrNotFound is returned when a requested resource does not exist in the store.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when an insert collides with a unique key.
	ErrAlreadyExists = errors.New("already exists")
)
