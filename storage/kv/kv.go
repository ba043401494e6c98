package kv

import (
	"fmt"
)

// KV is a key-value pair
type KV struct {
	Key   []byte
	Value []byte
}

// OpType tags a batch operation
type OpType int

const (
	// OpPut stores a value at a key
	OpPut OpType = iota
	// OpDelete deletes a key
	OpDelete
)

func (opType OpType) String() string {
	switch opType {
	case OpPut:
		return "Put"
	case OpDelete:
		return "Delete"
	}

	return fmt.Sprintf("OpType(%d)", int(opType))
}

// Op is a single operation inside a batch
type Op struct {
	Type  OpType
	Key   []byte
	Value []byte
}

// Put returns an op that stores value at key
func Put(key, value []byte) Op {
	return Op{Type: OpPut, Key: key, Value: value}
}

// Delete returns an op that deletes key
func Delete(key []byte) Op {
	return Op{Type: OpDelete, Key: key}
}

// CheckKey returns ErrEmptyKey if key is nil or empty
func CheckKey(key []byte) error {
	if len(key) == 0 {
		return ErrEmptyKey
	}

	return nil
}

// CheckOps validates every op in a batch
// before any of them is applied
func CheckOps(ops []Op) error {
	for i, op := range ops {
		if err := CheckKey(op.Key); err != nil {
			return fmt.Errorf("op %d: %w", i, err)
		}

		if op.Type != OpPut && op.Type != OpDelete {
			return fmt.Errorf("op %d: unknown op type %s", i, op.Type)
		}
	}

	return nil
}

// Copy returns a copy of b that does not share
// memory with it. The copy of an empty slice is
// empty but not nil.
func Copy(b []byte) []byte {
	c := make([]byte, len(b))

	copy(c, b)

	return c
}
