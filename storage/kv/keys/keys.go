package keys

import (
	"bytes"
)

// Key is a single key
type Key []byte

// Compare compares two keys
// -1 means a < b
// 1 means a > b
// 0 means a = b
func Compare(a, b []byte) int {
	return bytes.Compare(a, b)
}

// Concat returns a new key made of the bytes of a
// followed by the bytes of b. Neither input is modified.
func Concat(a, b []byte) Key {
	k := make(Key, 0, len(a)+len(b))
	k = append(k, a...)

	return append(k, b...)
}

// HasPrefix returns true if the leading bytes of key
// are exactly prefix
func HasPrefix(key, prefix []byte) bool {
	return len(key) >= len(prefix) && bytes.Equal(key[:len(prefix)], prefix)
}

// Suffix returns a copy of key terminated with sep
func Suffix(key []byte, sep byte) Key {
	return Concat(key, []byte{sep})
}

// Inc treats key as a big-endian unsigned integer
// and adds 1 to it. The result sorts after every
// key that has key as a prefix and does not itself
// have key as a prefix.
//
// ok is false if key has no finite successor. This
// happens when every byte of key is 0xff or when key
// is empty, and means that the keys prefixed by key
// extend all the way to the end of the key space.
func Inc(key []byte) (next Key, ok bool) {
	next = make(Key, len(key))

	copy(next, key)

	for i := len(next) - 1; i >= 0; i-- {
		next[i]++

		if next[i] != 0 {
			return next, true
		}
	}

	return nil, false
}

// After returns the key directly after k such that
// there can exist no other key that comes between
// k and After(k)
func After(k []byte) Key {
	afterK := make(Key, len(k)+1)

	copy(afterK, k)
	afterK[len(k)] = 0

	return afterK
}
