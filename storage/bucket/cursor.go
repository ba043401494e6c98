package bucket

import (
	"github.com/jrife/kvbucket/storage/kv"
	"github.com/jrife/kvbucket/storage/kv/keys"
	"go.uber.org/zap"
)

var _ kv.Iterator = (*Cursor)(nil)

// Cursor iterates over the keys of one bucket. Keys
// it returns are logical keys.
type Cursor struct {
	iter   kv.Iterator
	store  *Store
	bounds keys.Range
	key    []byte
	value  []byte
	done   bool
}

func newCursor(store *Store, iter kv.Iterator, bounds keys.Range) *Cursor {
	return &Cursor{
		iter:   iter,
		store:  store,
		bounds: bounds,
	}
}

// Next advances the cursor. It returns false once the
// engine runs out of keys, fails, or returns a key that
// is outside the bucket.
func (cursor *Cursor) Next() bool {
	cursor.key = nil
	cursor.value = nil

	if cursor.done {
		return false
	}

	if !cursor.iter.Next() {
		cursor.done = true

		return false
	}

	physical := cursor.iter.Key()

	// The engine was asked for bounds.
	// Don't trust it to honor them.
	if !keys.HasPrefix(physical, cursor.store.prefix) || !cursor.bounds.Contains(physical) {
		cursor.store.logger.Warn(
			"engine returned a key outside of the requested range",
			zap.Binary("key", physical),
			zap.Binary("prefix", cursor.store.prefix),
		)

		cursor.done = true

		return false
	}

	cursor.key = physical[len(cursor.store.prefix):]
	cursor.value = cursor.iter.Value()

	return true
}

// Key returns the logical key at the current position
func (cursor *Cursor) Key() []byte {
	return cursor.key
}

// Value returns the value at the current position
func (cursor *Cursor) Value() []byte {
	return cursor.value
}

// Error returns the engine error that ended
// iteration, if any
func (cursor *Cursor) Error() error {
	return cursor.iter.Error()
}

// Close releases the engine iterator
func (cursor *Cursor) Close() error {
	cursor.done = true
	cursor.key = nil
	cursor.value = nil

	return cursor.iter.Close()
}
