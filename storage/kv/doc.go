// Package kv describes the physical storage engine that the
// bucket layer is built on and provides the plumbing shared by
// engine implementations.
//
// An engine is a single flat, sorted map of byte-string keys to
// byte-string values. It has no notion of namespaces. It must
// support point reads and writes, atomic batches of writes, and
// ordered iteration over a range of keys. Buckets exist only
// as key prefixes:
//
//  - Engine
//    - a.k1: abc   (bucket "a")
//    - a.k2: def
//    - a.b.k1: xyz (bucket "b" nested in "a")
//    - ab.k1: aaa  (bucket "ab")
//
// Engines are provided by plugins which are looked up by name
// (see the plugins package). Every engine must be safe for
// concurrent use. Engines make no promises across operations:
// a batch is the unit of atomicity and an iterator is not a
// snapshot. Keys written after an iterator was created may or
// may not be observed by it.
package kv
