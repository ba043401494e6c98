package kv

import (
	"github.com/jrife/kvbucket/storage/kv/keys"
)

// SortOrder is the order in which an iterator visits keys
type SortOrder int

const (
	// SortOrderAsc visits keys in ascending lexicographical order
	SortOrderAsc SortOrder = iota
	// SortOrderDesc visits keys in descending lexicographical order
	SortOrderDesc
)

// Plugin represents a kv storage plugin
type Plugin interface {
	// Name returns the name of the storage plugin
	Name() string
	// NewEngine returns an open engine configured
	// with options
	NewEngine(options PluginOptions) (Engine, error)
	// NewTempEngine returns an open engine initialized
	// with some sane defaults. It is meant for
	// tests that need an initialized instance of the plugin's
	// engine without knowing how to configure it
	NewTempEngine() (Engine, error)
}

// Engine is a sorted, byte-keyed map. All keys passed
// to an engine are physical keys. Implementations must
// be safe for concurrent use.
type Engine interface {
	// Open opens the engine. It has no effect if
	// the engine is already open. An engine that was
	// closed may be opened again.
	Open() error
	// Close closes the engine. Operations started after
	// Close returns must return ErrClosed. Close must
	// not be called while iterators are still open.
	Close() error
	// Get returns the value stored at key or ErrNotFound
	// if there is none. It must return ErrEmptyKey if key
	// is nil or empty.
	Get(key []byte) ([]byte, error)
	// Put stores value at key. It must return ErrEmptyKey
	// if key is nil or empty.
	Put(key, value []byte) error
	// Delete deletes a key. If the key doesn't exist it has
	// no effect and returns nil. It must return ErrEmptyKey
	// if key is nil or empty.
	Delete(key []byte) error
	// Batch applies ops in order as a single atomic write.
	// Either all of them take effect or none do.
	Batch(ops []Op) error
	// Keys creates an iterator that iterates over the range
	// of keys in the given order.
	Keys(keys keys.Range, order SortOrder) (Iterator, error)
}

// Iterator iterates over a set of keys. It must only be
// used by one goroutine at a time. It does not need to
// reflect writes made after it was created.
type Iterator interface {
	// Next advances the iterator to the next key
	// A fresh iterator must call Next once to
	// advance to the first key. Next returns false
	// if there is no next key or if it encounters an
	// error.
	Next() bool
	// Key returns the current key
	Key() []byte
	// Value returns the current value
	Value() []byte
	// Error returns the error, if any.
	Error() error
	// Close releases the resources held by
	// the iterator
	Close() error
}

// Destroyer is implemented by engines that keep
// files which should be removed after use
type Destroyer interface {
	// Destroy closes the engine and removes
	// everything it stored
	Destroy() error
}

// Destroy destroys engine if it is a Destroyer
// and otherwise closes it
func Destroy(engine Engine) error {
	if destroyer, ok := engine.(Destroyer); ok {
		return destroyer.Destroy()
	}

	return engine.Close()
}
