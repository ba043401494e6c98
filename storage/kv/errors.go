package kv

import "errors"

var (
	// ErrClosed indicates that the engine was closed
	ErrClosed = errors.New("engine was closed")
	// ErrNotFound indicates that a point read found no key
	ErrNotFound = errors.New("key not found")
	// ErrEmptyKey indicates that an operation was given an empty key
	ErrEmptyKey = errors.New("key must not be empty")
)
