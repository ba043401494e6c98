package plugins

import (
	"github.com/jrife/kvbucket/config"
	"github.com/jrife/kvbucket/storage/kv"
	"github.com/jrife/kvbucket/storage/kv/plugins/badger"
	"github.com/jrife/kvbucket/storage/kv/plugins/bbolt"
	"github.com/jrife/kvbucket/storage/kv/plugins/memory"
	"github.com/jrife/kvbucket/storage/kv/plugins/pebble"
	"go.uber.org/zap"
)

var defaultManager *Manager

func init() {
	var plugins []kv.Plugin

	plugins = append(plugins, memory.Plugins()...)
	plugins = append(plugins, bbolt.Plugins()...)
	plugins = append(plugins, pebble.Plugins()...)
	plugins = append(plugins, badger.Plugins()...)

	defaultManager = NewManager(plugins...)
}

// Plugin returns the plugin whose name matches the given name.
// It returns nil if no such plugin is found.
func Plugin(name string) kv.Plugin {
	return defaultManager.Plugin(name)
}

// Plugins lists all the plugins that are available
func Plugins() []kv.Plugin {
	return defaultManager.Plugins()
}

// Open creates an engine using the configured driver
// and options. See Manager.Open.
func Open(storage config.Storage, logger *zap.Logger) (kv.Engine, error) {
	return defaultManager.Open(storage, logger)
}
