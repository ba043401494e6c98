package plugins

import (
	"fmt"

	"github.com/jrife/kvbucket/config"
	"github.com/jrife/kvbucket/storage/kv"
	"go.uber.org/zap"
)

// Manager lets a consumer retrieve
// a kv plugin by name
type Manager struct {
	plugins []kv.Plugin
}

// NewManager returns a Manager loaded
// with the given plugins
func NewManager(plugins ...kv.Plugin) *Manager {
	return &Manager{
		plugins: plugins,
	}
}

// Plugin returns the plugin whose name matches the given name.
// It returns nil if no such plugin is found.
func (manager *Manager) Plugin(name string) kv.Plugin {
	for _, plugin := range manager.plugins {
		if plugin.Name() == name {
			return plugin
		}
	}

	return nil
}

// Plugins lists the plugins known to this manager
func (manager *Manager) Plugins() []kv.Plugin {
	return manager.plugins
}

// Open creates an engine from the plugin named by
// storage.Driver. The logger is passed to the plugin
// under kv.LoggerOption.
func (manager *Manager) Open(storage config.Storage, logger *zap.Logger) (kv.Engine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	plugin := manager.Plugin(storage.Driver)

	if plugin == nil {
		return nil, fmt.Errorf("Unknown storage driver %q", storage.Driver)
	}

	options := kv.PluginOptions{}

	for key, value := range storage.Options {
		options[key] = value
	}

	options[kv.LoggerOption] = logger

	engine, err := plugin.NewEngine(options)

	if err != nil {
		return nil, fmt.Errorf("Could not create %s engine: %w", storage.Driver, err)
	}

	logger.Info("opened storage engine", zap.String("driver", storage.Driver))

	return engine, nil
}
