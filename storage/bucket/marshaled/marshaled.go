// Package marshaled provides a bucket view that
// encodes values on the way in and decodes them on
// the way out.
package marshaled

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/jrife/kvbucket/storage/bucket"
	"github.com/jrife/kvbucket/storage/kv"
	"github.com/jrife/kvbucket/storage/kv/keys"
)

// Codec converts values to and from bytes
type Codec interface {
	Marshal(v interface{}) ([]byte, error)
	Unmarshal(data []byte, v interface{}) error
}

// CBOR is a Codec using deterministic CBOR encoding so
// equal values always produce equal bytes
var CBOR Codec = newCBORCodec()

type cborCodec struct {
	enc cbor.EncMode
}

func newCBORCodec() *cborCodec {
	enc, err := cbor.CanonicalEncOptions().EncMode()

	if err != nil {
		panic(err)
	}

	return &cborCodec{enc: enc}
}

func (codec *cborCodec) Marshal(v interface{}) ([]byte, error) {
	return codec.enc.Marshal(v)
}

func (codec *cborCodec) Unmarshal(data []byte, v interface{}) error {
	return cbor.Unmarshal(data, v)
}

// Bucket is like bucket.Store except it marshals values
type Bucket struct {
	store *bucket.Store
	codec Codec
}

// New wraps store. A nil codec means CBOR.
func New(store *bucket.Store, codec Codec) *Bucket {
	if codec == nil {
		codec = CBOR
	}

	return &Bucket{store: store, codec: codec}
}

// Store returns the underlying store
func (b *Bucket) Store() *bucket.Store {
	return b.store
}

// Bucket returns the marshaled view of the child
// bucket called name using the same codec
func (b *Bucket) Bucket(name []byte) *Bucket {
	return &Bucket{store: b.store.Bucket(name), codec: b.codec}
}

// Put is like bucket.Store.Put except it marshals the value
func (b *Bucket) Put(key []byte, value interface{}) error {
	marshaledValue, err := b.codec.Marshal(value)

	if err != nil {
		return fmt.Errorf("Could not marshal value: %w", err)
	}

	return b.store.Put(key, marshaledValue)
}

// Get is like bucket.Store.Get except it unmarshals the
// value into v. It returns false if there is no such key.
func (b *Bucket) Get(key []byte, v interface{}) (bool, error) {
	value, err := b.store.Get(key)

	if err != nil {
		return false, err
	}

	if value == nil {
		return false, nil
	}

	if err := b.codec.Unmarshal(value, v); err != nil {
		return true, fmt.Errorf("Could not unmarshal value: %w", err)
	}

	return true, nil
}

// Delete is the same as bucket.Store.Delete
func (b *Bucket) Delete(key []byte) error {
	return b.store.Delete(key)
}

// Keys is like bucket.Store.Keys except the
// returned iterator can decode values
func (b *Bucket) Keys(r keys.Range, order kv.SortOrder) (*Iterator, error) {
	cursor, err := b.store.Keys(r, order)

	if err != nil {
		return nil, err
	}

	return &Iterator{Cursor: cursor, codec: b.codec}, nil
}

// Iterator is like bucket.Cursor except it can
// unmarshal values
type Iterator struct {
	*bucket.Cursor
	codec Codec
}

// Decode unmarshals the value at the current
// iterator position into v
func (iterator *Iterator) Decode(v interface{}) error {
	if err := iterator.codec.Unmarshal(iterator.Value(), v); err != nil {
		return fmt.Errorf("Could not unmarshal value of key %v: %w", iterator.Key(), err)
	}

	return nil
}
