package pebble

import (
	"errors"
	"fmt"
	"sync"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
	"github.com/jrife/kvbucket/storage/kv"
	"github.com/jrife/kvbucket/storage/kv/keys"
	"github.com/jrife/kvbucket/utils/uuid"
	"go.uber.org/zap"
)

const (
	// DriverName is the name of the pebble plugin
	DriverName = "pebble"
)

// Plugins returns the plugins provided by this package
func Plugins() []kv.Plugin {
	return []kv.Plugin{
		&Plugin{},
	}
}

// Plugin is the pebble kv plugin
type Plugin struct {
}

// Name implements kv.Plugin.Name
func (plugin *Plugin) Name() string {
	return DriverName
}

// NewEngine implements kv.Plugin.NewEngine. It requires
// a "path" option unless "in_memory" is true.
func (plugin *Plugin) NewEngine(options kv.PluginOptions) (kv.Engine, error) {
	config := Config{Logger: options.Logger()}

	if inMemory, ok, err := options.Bool("in_memory"); err != nil {
		return nil, err
	} else if ok {
		config.InMemory = inMemory
	}

	if path, ok, err := options.String("path"); err != nil {
		return nil, err
	} else if ok {
		config.Path = path
	} else if !config.InMemory {
		return nil, fmt.Errorf("\"path\" is required")
	}

	engine, err := New(config)

	if err != nil {
		return nil, err
	}

	return engine, nil
}

// NewTempEngine implements kv.Plugin.NewTempEngine
func (plugin *Plugin) NewTempEngine() (kv.Engine, error) {
	return plugin.NewEngine(kv.PluginOptions{
		"path":      uuid.TempPath("pebble"),
		"in_memory": true,
	})
}

// Config configures an Engine
type Config struct {
	// Path is the directory holding the pebble database
	Path string
	// InMemory keeps the database in an in-memory file
	// system. Its contents survive Close and Open of the
	// same Engine but not the process.
	InMemory bool
	Logger   *zap.Logger
}

var _ kv.Engine = (*Engine)(nil)

// Engine is a kv.Engine backed by pebble
type Engine struct {
	config Config
	fs     vfs.FS
	logger *zap.Logger
	mu     sync.RWMutex
	db     *pebble.DB
}

// New creates a new Engine and opens it
func New(config Config) (*Engine, error) {
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}

	engine := &Engine{
		config: config,
		fs:     vfs.Default,
		logger: config.Logger.With(zap.String("driver", DriverName), zap.String("path", config.Path)),
	}

	if config.InMemory {
		engine.fs = vfs.NewMem()
	}

	if err := engine.Open(); err != nil {
		return nil, err
	}

	return engine, nil
}

// Open implements kv.Engine.Open
func (engine *Engine) Open() error {
	engine.mu.Lock()
	defer engine.mu.Unlock()

	if engine.db != nil {
		return nil
	}

	db, err := pebble.Open(engine.config.Path, &pebble.Options{FS: engine.fs})

	if err != nil {
		return fmt.Errorf("Could not open pebble store at %s: %w", engine.config.Path, err)
	}

	engine.db = db
	engine.logger.Debug("opened engine", zap.Bool("in_memory", engine.config.InMemory))

	return nil
}

// Close implements kv.Engine.Close
func (engine *Engine) Close() error {
	engine.mu.Lock()
	defer engine.mu.Unlock()

	if engine.db == nil {
		return nil
	}

	err := engine.db.Close()
	engine.db = nil
	engine.logger.Debug("closed engine")

	return err
}

var _ kv.Destroyer = (*Engine)(nil)

// Destroy closes the engine then removes its directory
func (engine *Engine) Destroy() error {
	if err := engine.Close(); err != nil {
		return fmt.Errorf("Could not close store: %w", err)
	}

	if err := engine.fs.RemoveAll(engine.config.Path); err != nil {
		return fmt.Errorf("Could not remove path %s: %w", engine.config.Path, err)
	}

	return nil
}

func (engine *Engine) withDB(fn func(db *pebble.DB) error) error {
	engine.mu.RLock()
	defer engine.mu.RUnlock()

	if engine.db == nil {
		return kv.ErrClosed
	}

	return fn(engine.db)
}

// Get implements kv.Engine.Get
func (engine *Engine) Get(key []byte) ([]byte, error) {
	if err := kv.CheckKey(key); err != nil {
		return nil, err
	}

	var value []byte

	err := engine.withDB(func(db *pebble.DB) error {
		v, closer, err := db.Get(key)

		if errors.Is(err, pebble.ErrNotFound) {
			return kv.ErrNotFound
		} else if err != nil {
			return err
		}

		defer closer.Close()

		value = kv.Copy(v)

		return nil
	})

	if err != nil {
		return nil, err
	}

	return value, nil
}

// Put implements kv.Engine.Put
func (engine *Engine) Put(key, value []byte) error {
	if err := kv.CheckKey(key); err != nil {
		return err
	}

	return engine.withDB(func(db *pebble.DB) error {
		return db.Set(key, value, pebble.Sync)
	})
}

// Delete implements kv.Engine.Delete
func (engine *Engine) Delete(key []byte) error {
	if err := kv.CheckKey(key); err != nil {
		return err
	}

	return engine.withDB(func(db *pebble.DB) error {
		return db.Delete(key, pebble.Sync)
	})
}

// Batch implements kv.Engine.Batch with a pebble batch
func (engine *Engine) Batch(ops []kv.Op) error {
	if err := kv.CheckOps(ops); err != nil {
		return err
	}

	return engine.withDB(func(db *pebble.DB) error {
		batch := db.NewBatch()
		defer batch.Close()

		for _, op := range ops {
			var err error

			switch op.Type {
			case kv.OpPut:
				err = batch.Set(op.Key, op.Value, nil)
			case kv.OpDelete:
				err = batch.Delete(op.Key, nil)
			}

			if err != nil {
				return fmt.Errorf("Could not add %s of key %v to batch: %w", op.Type, op.Key, err)
			}
		}

		return batch.Commit(pebble.Sync)
	})
}

// Keys implements kv.Engine.Keys. The pebble iterator
// reads from an implicit snapshot taken when it is created.
func (engine *Engine) Keys(keys keys.Range, order kv.SortOrder) (kv.Iterator, error) {
	var iterator *Iterator

	if keys.Empty() {
		// pebble does not accept a lower bound above the upper bound
		if err := engine.withDB(func(*pebble.DB) error { return nil }); err != nil {
			return nil, err
		}

		return kv.NewPagedIterator(keys, order, 0, nil), nil
	}

	err := engine.withDB(func(db *pebble.DB) error {
		iter, err := db.NewIter(&pebble.IterOptions{
			LowerBound: keys.Min,
			UpperBound: keys.Max,
		})

		if err != nil {
			return fmt.Errorf("Could not create iterator: %w", err)
		}

		iterator = &Iterator{iter: iter, order: order}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return iterator, nil
}

var _ kv.Iterator = (*Iterator)(nil)

// Iterator wraps a pebble iterator
type Iterator struct {
	iter       *pebble.Iterator
	order      kv.SortOrder
	positioned bool
	done       bool
	closed     bool
	key        []byte
	value      []byte
	err        error
}

// Next implements kv.Iterator.Next
func (iterator *Iterator) Next() bool {
	iterator.key = nil
	iterator.value = nil

	if iterator.err != nil || iterator.done || iterator.closed {
		return false
	}

	var valid bool

	switch {
	case !iterator.positioned && iterator.order == kv.SortOrderDesc:
		valid = iterator.iter.Last()
	case !iterator.positioned:
		valid = iterator.iter.First()
	case iterator.order == kv.SortOrderDesc:
		valid = iterator.iter.Prev()
	default:
		valid = iterator.iter.Next()
	}

	iterator.positioned = true

	if !valid {
		iterator.done = true
		iterator.err = iterator.iter.Error()

		return false
	}

	value, err := iterator.iter.ValueAndErr()

	if err != nil {
		iterator.err = fmt.Errorf("Could not read value: %w", err)

		return false
	}

	iterator.key = kv.Copy(iterator.iter.Key())
	iterator.value = kv.Copy(value)

	return true
}

// Key implements kv.Iterator.Key
func (iterator *Iterator) Key() []byte {
	return iterator.key
}

// Value implements kv.Iterator.Value
func (iterator *Iterator) Value() []byte {
	return iterator.value
}

// Error implements kv.Iterator.Error
func (iterator *Iterator) Error() error {
	return iterator.err
}

// Close implements kv.Iterator.Close
func (iterator *Iterator) Close() error {
	if iterator.closed {
		return nil
	}

	iterator.closed = true

	return iterator.iter.Close()
}
