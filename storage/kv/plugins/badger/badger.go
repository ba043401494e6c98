package badger

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/dgraph-io/badger/v2"
	"github.com/jrife/kvbucket/storage/kv"
	"github.com/jrife/kvbucket/storage/kv/keys"
	"github.com/jrife/kvbucket/utils/uuid"
	"go.uber.org/zap"
)

const (
	// DriverName is the name of the badger plugin
	DriverName = "badger"
)

// Plugins returns the plugins provided by this package
func Plugins() []kv.Plugin {
	return []kv.Plugin{
		&Plugin{},
	}
}

// Plugin is the badger kv plugin
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
		"in_memory": true,
	})
}

// Config configures an Engine
type Config struct {
	// Path is the directory holding the badger database
	Path string
	// InMemory keeps everything in memory. Unlike the
	// other engines the contents are lost on Close.
	InMemory bool
	Logger   *zap.Logger
}

var _ kv.Engine = (*Engine)(nil)

// Engine is a kv.Engine backed by badger
type Engine struct {
	config Config
	logger *zap.Logger
	mu     sync.RWMutex
	db     *badger.DB
}

// New creates a new Engine and opens it
func New(config Config) (*Engine, error) {
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}

	if config.InMemory && config.Path == "" {
		config.Path = uuid.TempPath("badger")
	}

	engine := &Engine{
		config: config,
		logger: config.Logger.With(zap.String("driver", DriverName), zap.String("path", config.Path)),
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

	options := badger.DefaultOptions(engine.config.Path).
		WithLogger(&badgerLogger{engine.logger.Sugar()})

	if engine.config.InMemory {
		options = options.WithInMemory(true).WithDir("").WithValueDir("")
	}

	db, err := badger.Open(options)

	if err != nil {
		return fmt.Errorf("Could not open badger store at %s: %w", engine.config.Path, err)
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

// Destroy closes the engine then removes its directory.
// An in-memory engine has nothing on disk to remove.
func (engine *Engine) Destroy() error {
	if err := engine.Close(); err != nil {
		return fmt.Errorf("Could not close store: %w", err)
	}

	if engine.config.InMemory {
		return nil
	}

	if err := os.RemoveAll(engine.config.Path); err != nil {
		return fmt.Errorf("Could not remove path %s: %w", engine.config.Path, err)
	}

	return nil
}

func (engine *Engine) withDB(fn func(db *badger.DB) error) error {
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

	err := engine.withDB(func(db *badger.DB) error {
		return db.View(func(txn *badger.Txn) error {
			item, err := txn.Get(key)

			if errors.Is(err, badger.ErrKeyNotFound) {
				return kv.ErrNotFound
			} else if err != nil {
				return err
			}

			value, err = item.ValueCopy(nil)

			return err
		})
	})

	if err != nil {
		return nil, err
	}

	if value == nil {
		value = []byte{}
	}

	return value, nil
}

// Put implements kv.Engine.Put
func (engine *Engine) Put(key, value []byte) error {
	return engine.Batch([]kv.Op{kv.Put(key, value)})
}

// Delete implements kv.Engine.Delete
func (engine *Engine) Delete(key []byte) error {
	return engine.Batch([]kv.Op{kv.Delete(key)})
}

// Batch implements kv.Engine.Batch. All ops go into one
// read-write transaction so a batch that is too large for
// one transaction fails as a whole with badger.ErrTxnTooBig.
func (engine *Engine) Batch(ops []kv.Op) error {
	if err := kv.CheckOps(ops); err != nil {
		return err
	}

	return engine.withDB(func(db *badger.DB) error {
		return db.Update(func(txn *badger.Txn) error {
			for _, op := range ops {
				var err error

				switch op.Type {
				case kv.OpPut:
					// badger keeps references to both slices
					// until the transaction commits
					err = txn.Set(kv.Copy(op.Key), kv.Copy(op.Value))
				case kv.OpDelete:
					err = txn.Delete(kv.Copy(op.Key))
				}

				if err != nil {
					return fmt.Errorf("Could not apply %s of key %v: %w", op.Type, op.Key, err)
				}
			}

			return nil
		})
	})
}

// Keys implements kv.Engine.Keys. The iterator reads from
// the read timestamp of its own read-only transaction.
func (engine *Engine) Keys(keys keys.Range, order kv.SortOrder) (kv.Iterator, error) {
	var iterator *Iterator

	if keys.Empty() {
		// nothing to read, so skip the transaction
		if err := engine.withDB(func(*badger.DB) error { return nil }); err != nil {
			return nil, err
		}

		return kv.NewPagedIterator(keys, order, 0, nil), nil
	}

	err := engine.withDB(func(db *badger.DB) error {
		txn := db.NewTransaction(false)
		options := badger.DefaultIteratorOptions
		options.Reverse = order == kv.SortOrderDesc

		iterator = &Iterator{
			txn:   txn,
			iter:  txn.NewIterator(options),
			keys:  keys,
			order: order,
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return iterator, nil
}

var _ kv.Iterator = (*Iterator)(nil)

// Iterator wraps a badger iterator and its transaction
type Iterator struct {
	txn        *badger.Txn
	iter       *badger.Iterator
	keys       keys.Range
	order      kv.SortOrder
	positioned bool
	done       bool
	closed     bool
	key        []byte
	value      []byte
	err        error
}

func (iterator *Iterator) position() {
	iterator.positioned = true

	if iterator.order == kv.SortOrderDesc {
		if iterator.keys.Max == nil {
			iterator.iter.Rewind()

			return
		}

		// In reverse mode Seek finds the largest key <= Max.
		// Max is exclusive so step past it.
		iterator.iter.Seek(iterator.keys.Max)

		if iterator.iter.Valid() && bytes.Equal(iterator.iter.Item().Key(), iterator.keys.Max) {
			iterator.iter.Next()
		}

		return
	}

	if iterator.keys.Min == nil {
		iterator.iter.Rewind()

		return
	}

	iterator.iter.Seek(iterator.keys.Min)
}

func (iterator *Iterator) inRange(k []byte) bool {
	if iterator.order == kv.SortOrderDesc {
		return iterator.keys.Min == nil || keys.Compare(k, iterator.keys.Min) >= 0
	}

	return iterator.keys.Max == nil || keys.Compare(k, iterator.keys.Max) < 0
}

// Next implements kv.Iterator.Next
func (iterator *Iterator) Next() bool {
	iterator.key = nil
	iterator.value = nil

	if iterator.err != nil || iterator.done || iterator.closed {
		return false
	}

	if !iterator.positioned {
		iterator.position()
	} else {
		iterator.iter.Next()
	}

	if !iterator.iter.Valid() || !iterator.inRange(iterator.iter.Item().Key()) {
		iterator.done = true

		return false
	}

	item := iterator.iter.Item()
	value, err := item.ValueCopy(nil)

	if err != nil {
		iterator.err = fmt.Errorf("Could not read value: %w", err)

		return false
	}

	if value == nil {
		value = []byte{}
	}

	iterator.key = item.KeyCopy(nil)
	iterator.value = value

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
	iterator.iter.Close()
	iterator.txn.Discard()

	return nil
}

// badgerLogger routes badger's internal logging to zap
type badgerLogger struct {
	*zap.SugaredLogger
}

func (logger *badgerLogger) Warningf(format string, args ...interface{}) {
	logger.Warnf(format, args...)
}
