package bucket

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/jrife/kvbucket/storage/kv"
	"github.com/jrife/kvbucket/storage/kv/keys"
	"github.com/jrife/kvbucket/storage/snapshot"
	"github.com/jrife/kvbucket/utils/log"
	"github.com/jrife/kvbucket/utils/lvstream"
	"github.com/jrife/kvbucket/utils/stream"
	"go.uber.org/zap"
)

var _ snapshot.Source = (*Store)(nil)
var _ snapshot.Acceptor = (*Store)(nil)

// ErrDanglingKey is returned by ApplySnapshot if the
// snapshot ends with a key that has no value
var ErrDanglingKey = errors.New("snapshot ends with a key that has no value")

// Snapshot implements snapshot.Source. The snapshot is a
// length-value framed stream of alternating logical keys and
// values covering the bucket and its nested buckets. It reads
// from the engine lazily as the returned reader is read and
// releases its cursor on Close or at the end of the stream.
func (store *Store) Snapshot(ctx context.Context) (io.ReadCloser, error) {
	logger, ctx := log.LoggerFromContext(ctx, store.logger)
	logger = logger.With(zap.Binary("prefix", store.prefix))

	cursor, err := store.Keys(keys.All(), kv.SortOrderAsc)

	if err != nil {
		return nil, fmt.Errorf("Could not create cursor: %w", err)
	}

	kvs := stream.Pipeline(kv.Stream(cursor), stream.Log(logger, "snapshot pair"))
	pairs := 0

	var pending []byte
	var hasPending bool

	nextValue := func() ([]byte, error) {
		if hasPending {
			hasPending = false

			return pending, nil
		}

		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if !kvs.Next() {
			if err := kvs.Error(); err != nil {
				return nil, fmt.Errorf("Iteration error: %w", err)
			}

			logger.Debug("finished snapshot", zap.Int("pairs", pairs))

			return nil, io.EOF
		}

		pair := kvs.Value().(kv.KV)
		pending = pair.Value
		hasPending = true
		pairs++

		return pair.Key, nil
	}

	return lvstream.NewEncoder(nextValue, func() { cursor.Close() }), nil
}

// ApplySnapshot implements snapshot.Acceptor. It replaces
// the contents of the bucket, nested buckets included, with
// the pairs in snap. Existing keys are deleted and the pairs
// written in a single batch so a failed snapshot leaves the
// bucket as it was.
func (store *Store) ApplySnapshot(ctx context.Context, snap io.Reader) error {
	logger, ctx := log.LoggerFromContext(ctx, store.logger)
	logger = logger.With(zap.Binary("prefix", store.prefix))

	puts := []kv.Op{}

	var key []byte
	var hasKey bool

	decoder := lvstream.NewDecoder(func(frame []byte) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		if !hasKey {
			key = frame
			hasKey = true

			return nil
		}

		puts = append(puts, kv.Put(key, frame))
		hasKey = false

		return nil
	})

	if _, err := io.Copy(decoder, snap); err != nil {
		return fmt.Errorf("Could not read snapshot: %w", err)
	}

	if err := decoder.Close(); err != nil {
		return fmt.Errorf("Could not read snapshot: %w", err)
	}

	if hasKey {
		return ErrDanglingKey
	}

	ops, err := store.deleteAll()

	if err != nil {
		return err
	}

	ops = append(ops, puts...)

	if err := store.Batch(ops); err != nil {
		return fmt.Errorf("Could not write snapshot: %w", err)
	}

	logger.Info("applied snapshot", zap.Int("deleted", len(ops)-len(puts)), zap.Int("pairs", len(puts)))

	return nil
}
