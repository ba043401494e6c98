// Package snapshot describes types that can export
// their whole contents as a byte stream and replace
// their contents from one.
package snapshot

import (
	"context"
	"io"
)

// Acceptor describes something that can
// apply a snapshot
type Acceptor interface {
	// ApplySnapshot replaces the contents of the
	// acceptor with the contents of snap
	ApplySnapshot(ctx context.Context, snap io.Reader) error
}

// Source describes something that can
// generate a snapshot
type Source interface {
	// Snapshot returns a reader for the contents of the
	// source. The caller must close it.
	Snapshot(ctx context.Context) (io.ReadCloser, error)
}
