package bbolt

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/jrife/kvbucket/storage/kv"
	"github.com/jrife/kvbucket/storage/kv/keys"
	"github.com/jrife/kvbucket/utils/uuid"
	bolt "go.etcd.io/bbolt"
	"go.uber.org/zap"
)

const (
	// DriverName is the name of the bbolt plugin
	DriverName = "bbolt"
)

// Every key lives in this single top-level bolt bucket.
// Namespacing is done by the bucket layer with key prefixes.
var rootBucket = []byte{0}

// Plugins returns the plugins provided by this package
func Plugins() []kv.Plugin {
	return []kv.Plugin{
		&Plugin{},
	}
}

// Plugin is the bbolt kv plugin
type Plugin struct {
}

// Name implements kv.Plugin.Name
func (plugin *Plugin) Name() string {
	return DriverName
}

// NewEngine implements kv.Plugin.NewEngine. It requires
// a "path" option and accepts optional "timeout" and
// "page_size" options.
func (plugin *Plugin) NewEngine(options kv.PluginOptions) (kv.Engine, error) {
	config := Config{Logger: options.Logger()}

	if path, ok, err := options.String("path"); err != nil {
		return nil, err
	} else if !ok {
		return nil, fmt.Errorf("\"path\" is required")
	} else {
		config.Path = path
	}

	if timeout, ok, err := options.Duration("timeout"); err != nil {
		return nil, err
	} else if ok {
		config.Timeout = timeout
	}

	if pageSize, ok, err := options.Int("page_size"); err != nil {
		return nil, err
	} else if ok {
		config.PageSize = pageSize
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
		"path": uuid.TempPath("bbolt"),
	})
}

// Config configures an Engine
type Config struct {
	// Path is the path of the bolt database file
	Path string
	// Timeout is how long Open waits for the file lock.
	// Zero waits forever.
	Timeout time.Duration
	// PageSize is the number of pairs an iterator reads
	// per read transaction
	PageSize int
	Logger   *zap.Logger
}

var _ kv.Engine = (*Engine)(nil)

// Engine is a kv.Engine backed by a bolt database file
type Engine struct {
	config Config
	logger *zap.Logger
	mu     sync.RWMutex
	db     *bolt.DB
}

// New creates a new Engine and opens it
func New(config Config) (*Engine, error) {
	if config.Logger == nil {
		config.Logger = zap.NewNop()
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

	db, err := bolt.Open(engine.config.Path, 0666, &bolt.Options{Timeout: engine.config.Timeout})

	if err != nil {
		return fmt.Errorf("Could not open bbolt store at %s: %w", engine.config.Path, err)
	}

	if err := db.Update(func(txn *bolt.Tx) error {
		_, err := txn.CreateBucketIfNotExists(rootBucket)

		return err
	}); err != nil {
		db.Close()

		return fmt.Errorf("Could not ensure root bucket exists: %w", err)
	}

	engine.db = db
	engine.logger.Debug("opened engine")

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

// Destroy closes the engine then removes its database file
func (engine *Engine) Destroy() error {
	if err := engine.Close(); err != nil {
		return fmt.Errorf("Could not close store: %w", err)
	}

	if err := os.RemoveAll(engine.config.Path); err != nil {
		return fmt.Errorf("Could not remove path %s: %w", engine.config.Path, err)
	}

	return nil
}

func (engine *Engine) view(fn func(bucket *bolt.Bucket) error) error {
	engine.mu.RLock()
	defer engine.mu.RUnlock()

	if engine.db == nil {
		return kv.ErrClosed
	}

	return engine.db.View(func(txn *bolt.Tx) error {
		return fn(txn.Bucket(rootBucket))
	})
}

func (engine *Engine) update(fn func(bucket *bolt.Bucket) error) error {
	engine.mu.RLock()
	defer engine.mu.RUnlock()

	if engine.db == nil {
		return kv.ErrClosed
	}

	return engine.db.Update(func(txn *bolt.Tx) error {
		return fn(txn.Bucket(rootBucket))
	})
}

// Get implements kv.Engine.Get
func (engine *Engine) Get(key []byte) ([]byte, error) {
	if err := kv.CheckKey(key); err != nil {
		return nil, err
	}

	var value []byte

	err := engine.view(func(bucket *bolt.Bucket) error {
		v := bucket.Get(key)

		if v == nil {
			return kv.ErrNotFound
		}

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

	return engine.update(func(bucket *bolt.Bucket) error {
		return bucket.Put(key, value)
	})
}

// Delete implements kv.Engine.Delete
func (engine *Engine) Delete(key []byte) error {
	if err := kv.CheckKey(key); err != nil {
		return err
	}

	return engine.update(func(bucket *bolt.Bucket) error {
		return bucket.Delete(key)
	})
}

// Batch implements kv.Engine.Batch. The whole batch
// runs inside one read-write transaction.
func (engine *Engine) Batch(ops []kv.Op) error {
	if err := kv.CheckOps(ops); err != nil {
		return err
	}

	return engine.update(func(bucket *bolt.Bucket) error {
		for _, op := range ops {
			var err error

			switch op.Type {
			case kv.OpPut:
				err = bucket.Put(op.Key, op.Value)
			case kv.OpDelete:
				err = bucket.Delete(op.Key)
			}

			if err != nil {
				return fmt.Errorf("Could not apply %s of key %v: %w", op.Type, op.Key, err)
			}
		}

		return nil
	})
}

// Keys implements kv.Engine.Keys. Each page of results
// is read in its own read transaction so an open iterator
// never holds a transaction that could block writers from
// remapping the file.
func (engine *Engine) Keys(keys keys.Range, order kv.SortOrder) (kv.Iterator, error) {
	engine.mu.RLock()
	defer engine.mu.RUnlock()

	if engine.db == nil {
		return nil, kv.ErrClosed
	}

	return kv.NewPagedIterator(keys, order, engine.config.PageSize, engine.page), nil
}

func (engine *Engine) page(r keys.Range, order kv.SortOrder, limit int) ([]kv.KV, error) {
	page := []kv.KV{}

	err := engine.view(func(bucket *bolt.Bucket) error {
		cursor := bucket.Cursor()

		if order == kv.SortOrderDesc {
			for k, v := seekLast(cursor, r.Max); k != nil && len(page) < limit; k, v = cursor.Prev() {
				if r.Min != nil && keys.Compare(k, r.Min) < 0 {
					break
				}

				page = append(page, kv.KV{Key: kv.Copy(k), Value: kv.Copy(v)})
			}

			return nil
		}

		for k, v := seekFirst(cursor, r.Min); k != nil && len(page) < limit; k, v = cursor.Next() {
			if r.Max != nil && keys.Compare(k, r.Max) >= 0 {
				break
			}

			page = append(page, kv.KV{Key: kv.Copy(k), Value: kv.Copy(v)})
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return page, nil
}

// seekFirst positions the cursor at the first key >= min
func seekFirst(cursor *bolt.Cursor, min []byte) ([]byte, []byte) {
	if min == nil {
		return cursor.First()
	}

	return cursor.Seek(min)
}

// seekLast positions the cursor at the last key < max
func seekLast(cursor *bolt.Cursor, max []byte) ([]byte, []byte) {
	if max == nil {
		return cursor.Last()
	}

	if k, _ := cursor.Seek(max); k == nil {
		return cursor.Last()
	}

	return cursor.Prev()
}
