// Package bucket makes one sorted kv engine behave as
// any number of isolated, nested buckets.
//
// A bucket is a key prefix. The root bucket has an empty
// prefix unless it is named, and the prefix of a child bucket is its parent's
// prefix followed by the child's name and Separator. Every
// key a Store sends to the engine is its logical key with
// the store's prefix prepended, and every key it returns has
// that prefix stripped again.
//
// A parent's key space contains the key spaces of its child
// buckets, so iterating a parent also yields the keys of its
// children, each carrying the child's name and Separator.
// Sibling buckets never see each other's keys. Bucket names
// containing Separator alias nested buckets: the bucket
// "a.b" is the same as bucket "b" inside bucket "a".
package bucket

import (
	"errors"
	"fmt"

	"github.com/jrife/kvbucket/storage/kv"
	"github.com/jrife/kvbucket/storage/kv/keys"
	"github.com/jrife/kvbucket/utils/stream"
	"go.uber.org/zap"
)

// Separator terminates every bucket prefix
const Separator byte = '.'

// Option configures a root Store
type Option func(store *Store)

// WithName gives the root store the prefix name followed by
// Separator so that several independent roots can share
// one engine. Without it the root prefix is empty and the
// root store covers the whole key space.
func WithName(name []byte) Option {
	return func(store *Store) {
		store.prefix = keys.Suffix(name, Separator)
	}
}

// WithLogger sets the logger used by a store and
// every bucket derived from it
func WithLogger(logger *zap.Logger) Option {
	return func(store *Store) {
		store.logger = logger
	}
}

// Store is a view of one bucket. Stores derived from the
// same root share its engine. A Store holds no locks of its
// own and is as safe for concurrent use as its engine.
type Store struct {
	engine kv.Engine
	prefix keys.Key
	logger *zap.Logger
}

// New returns the root store for engine
func New(engine kv.Engine, options ...Option) *Store {
	store := &Store{
		engine: engine,
		prefix: keys.Key{},
		logger: zap.NewNop(),
	}

	for _, option := range options {
		option(store)
	}

	if store.logger == nil {
		store.logger = zap.NewNop()
	}

	return store
}

// Prefix returns a copy of the prefix of this bucket
func (store *Store) Prefix() keys.Key {
	return keys.Concat(store.prefix, nil)
}

// Bucket returns the store for the child bucket called name.
// It does no I/O and returns an equivalent store every time it
// is called with the same name.
func (store *Store) Bucket(name []byte) *Store {
	prefix := keys.Suffix(keys.Concat(store.prefix, name), Separator)

	return &Store{
		engine: store.engine,
		prefix: prefix,
		logger: store.logger,
	}
}

func (store *Store) key(key []byte) []byte {
	return keys.Concat(store.prefix, key)
}

// Get returns the value stored at key. If there is
// no such key it returns nil and no error.
func (store *Store) Get(key []byte) ([]byte, error) {
	value, err := store.engine.Get(store.key(key))

	if errors.Is(err, kv.ErrNotFound) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	return value, nil
}

// Put stores value at key
func (store *Store) Put(key, value []byte) error {
	return store.engine.Put(store.key(key), value)
}

// Delete deletes key. Deleting a key that does
// not exist is not an error.
func (store *Store) Delete(key []byte) error {
	return store.engine.Delete(store.key(key))
}

// Batch applies ops in order as one atomic write
func (store *Store) Batch(ops []kv.Op) error {
	physical := make([]kv.Op, len(ops))

	for i, op := range ops {
		physical[i] = kv.Op{Type: op.Type, Key: store.key(op.Key), Value: op.Value}
	}

	return store.engine.Batch(physical)
}

// Iter returns a cursor over the bucket in ascending order
// starting at lower. If exclusive is true the cursor starts
// at the first key after lower.
func (store *Store) Iter(lower []byte, exclusive bool) (*Cursor, error) {
	r := keys.All()

	if exclusive {
		r = r.Gt(lower)
	} else {
		r = r.Gte(lower)
	}

	return store.Keys(r, kv.SortOrderAsc)
}

// Keys returns a cursor over the logical range r of
// the bucket in the given order
func (store *Store) Keys(r keys.Range, order kv.SortOrder) (*Cursor, error) {
	physical := r.Namespace(store.prefix)
	iter, err := store.engine.Keys(physical, order)

	if err != nil {
		return nil, err
	}

	return newCursor(store, iter, physical), nil
}

// List returns up to limit pairs from the logical range r.
// If limit <= 0 it returns every pair in the range.
func (store *Store) List(r keys.Range, order kv.SortOrder, limit int) ([]kv.KV, error) {
	cursor, err := store.Keys(r, order)

	if err != nil {
		return nil, err
	}

	defer cursor.Close()

	values, err := stream.Collect(stream.Pipeline(kv.Stream(cursor), stream.Limit(limit)))

	if err != nil {
		return nil, err
	}

	kvs := make([]kv.KV, len(values))

	for i, value := range values {
		kvs[i] = value.(kv.KV)
	}

	return kvs, nil
}

// Purge deletes every key in the bucket, including
// the keys of nested buckets, in one batch
func (store *Store) Purge() error {
	ops, err := store.deleteAll()

	if err != nil {
		return err
	}

	if err := store.Batch(ops); err != nil {
		return fmt.Errorf("Could not delete keys: %w", err)
	}

	store.logger.Debug("purged bucket", zap.Binary("prefix", store.prefix), zap.Int("keys", len(ops)))

	return nil
}

// deleteAll returns a delete op for every key in the bucket
func (store *Store) deleteAll() ([]kv.Op, error) {
	cursor, err := store.Keys(keys.All(), kv.SortOrderAsc)

	if err != nil {
		return nil, fmt.Errorf("Could not create cursor: %w", err)
	}

	defer cursor.Close()

	ops := []kv.Op{}

	for cursor.Next() {
		ops = append(ops, kv.Delete(cursor.Key()))
	}

	if err := cursor.Error(); err != nil {
		return nil, fmt.Errorf("Iteration error: %w", err)
	}

	return ops, nil
}

// Open opens the shared engine
func (store *Store) Open() error {
	return store.engine.Open()
}

// Close closes the shared engine. This affects every
// store derived from the same root. Callers must finish
// all outstanding operations and close their cursors first.
func (store *Store) Close() error {
	return store.engine.Close()
}
