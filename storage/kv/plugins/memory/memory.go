// Package memory implements an in-memory kv engine
// backed by a red-black tree.
package memory

import (
	"bytes"
	"fmt"
	"sync"

	rbt "github.com/emirpasic/gods/trees/redblacktree"
	"github.com/jrife/kvbucket/storage/kv"
	"github.com/jrife/kvbucket/storage/kv/keys"
	"go.uber.org/zap"
)

const (
	// DriverName is the name of the memory plugin
	DriverName = "memory"
)

// Plugins returns the plugins provided by this package
func Plugins() []kv.Plugin {
	return []kv.Plugin{
		&Plugin{},
	}
}

// Plugin is the memory kv plugin
type Plugin struct {
}

// Name implements kv.Plugin.Name
func (plugin *Plugin) Name() string {
	return DriverName
}

// NewEngine implements kv.Plugin.NewEngine. It accepts
// an optional "page_size" option.
func (plugin *Plugin) NewEngine(options kv.PluginOptions) (kv.Engine, error) {
	config := Config{Logger: options.Logger()}

	if pageSize, ok, err := options.Int("page_size"); err != nil {
		return nil, err
	} else if ok {
		config.PageSize = pageSize
	}

	return New(config), nil
}

// NewTempEngine implements kv.Plugin.NewTempEngine
func (plugin *Plugin) NewTempEngine() (kv.Engine, error) {
	return plugin.NewEngine(kv.PluginOptions{})
}

// Config configures an Engine
type Config struct {
	// PageSize is the number of pairs an iterator
	// reads under one acquisition of the read lock
	PageSize int
	Logger   *zap.Logger
}

var _ kv.Engine = (*Engine)(nil)

// Engine is an in-memory implementation of kv.Engine.
// Its contents survive Close and are visible again after
// Open.
type Engine struct {
	mu       sync.RWMutex
	tree     *rbt.Tree
	closed   bool
	pageSize int
	logger   *zap.Logger
}

// New creates a new open Engine
func New(config Config) *Engine {
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}

	return &Engine{
		tree: rbt.NewWith(func(a, b interface{}) int {
			return bytes.Compare(a.([]byte), b.([]byte))
		}),
		pageSize: config.PageSize,
		logger:   config.Logger.With(zap.String("driver", DriverName)),
	}
}

// Open implements kv.Engine.Open
func (engine *Engine) Open() error {
	engine.mu.Lock()
	defer engine.mu.Unlock()

	engine.closed = false

	return nil
}

// Close implements kv.Engine.Close
func (engine *Engine) Close() error {
	engine.mu.Lock()
	defer engine.mu.Unlock()

	if !engine.closed {
		engine.logger.Debug("closing engine", zap.Int("keys", engine.tree.Size()))
	}

	engine.closed = true

	return nil
}

// Get implements kv.Engine.Get
func (engine *Engine) Get(key []byte) ([]byte, error) {
	if err := kv.CheckKey(key); err != nil {
		return nil, err
	}

	engine.mu.RLock()
	defer engine.mu.RUnlock()

	if engine.closed {
		return nil, kv.ErrClosed
	}

	v, ok := engine.tree.Get(key)

	if !ok {
		return nil, kv.ErrNotFound
	}

	return kv.Copy(v.([]byte)), nil
}

// Put implements kv.Engine.Put
func (engine *Engine) Put(key, value []byte) error {
	return engine.Batch([]kv.Op{kv.Put(key, value)})
}

// Delete implements kv.Engine.Delete
func (engine *Engine) Delete(key []byte) error {
	return engine.Batch([]kv.Op{kv.Delete(key)})
}

// Batch implements kv.Engine.Batch
func (engine *Engine) Batch(ops []kv.Op) error {
	if err := kv.CheckOps(ops); err != nil {
		return err
	}

	engine.mu.Lock()
	defer engine.mu.Unlock()

	if engine.closed {
		return kv.ErrClosed
	}

	for _, op := range ops {
		switch op.Type {
		case kv.OpPut:
			engine.tree.Put(kv.Copy(op.Key), kv.Copy(op.Value))
		case kv.OpDelete:
			engine.tree.Remove(op.Key)
		default:
			return fmt.Errorf("unknown op type %s", op.Type)
		}
	}

	return nil
}

// Keys implements kv.Engine.Keys
func (engine *Engine) Keys(keys keys.Range, order kv.SortOrder) (kv.Iterator, error) {
	engine.mu.RLock()
	defer engine.mu.RUnlock()

	if engine.closed {
		return nil, kv.ErrClosed
	}

	return kv.NewPagedIterator(keys, order, engine.pageSize, engine.page), nil
}

func (engine *Engine) page(r keys.Range, order kv.SortOrder, limit int) ([]kv.KV, error) {
	engine.mu.RLock()
	defer engine.mu.RUnlock()

	if engine.closed {
		return nil, kv.ErrClosed
	}

	if order == kv.SortOrderDesc {
		return engine.descending(r, limit), nil
	}

	return engine.ascending(r, limit), nil
}

func (engine *Engine) ascending(r keys.Range, limit int) []kv.KV {
	var node *rbt.Node

	if r.Min == nil {
		node = engine.tree.Left()
	} else {
		node, _ = engine.tree.Ceiling(r.Min)
	}

	if node == nil {
		return nil
	}

	page := []kv.KV{}

	for iter := engine.tree.IteratorAt(node); len(page) < limit; {
		k := iter.Key().([]byte)

		if r.Max != nil && keys.Compare(k, r.Max) >= 0 {
			break
		}

		page = append(page, kv.KV{Key: kv.Copy(k), Value: kv.Copy(iter.Value().([]byte))})

		if !iter.Next() {
			break
		}
	}

	return page
}

func (engine *Engine) descending(r keys.Range, limit int) []kv.KV {
	var node *rbt.Node

	if r.Max == nil {
		node = engine.tree.Right()
	} else {
		node, _ = engine.tree.Floor(r.Max)
	}

	if node == nil {
		return nil
	}

	iter := engine.tree.IteratorAt(node)

	// Max is exclusive
	if r.Max != nil && keys.Compare(iter.Key().([]byte), r.Max) == 0 && !iter.Prev() {
		return nil
	}

	page := []kv.KV{}

	for len(page) < limit {
		k := iter.Key().([]byte)

		if r.Min != nil && keys.Compare(k, r.Min) < 0 {
			break
		}

		page = append(page, kv.KV{Key: kv.Copy(k), Value: kv.Copy(iter.Value().([]byte))})

		if !iter.Prev() {
			break
		}
	}

	return page
}
