// Package config loads the storage and logging
// configuration for a bucketed store.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const (
	// EnvPrefix prefixes environment variables that
	// override configuration keys. storage.driver is
	// overridden by KVBUCKET_STORAGE_DRIVER.
	EnvPrefix = "KVBUCKET"

	// DefaultDriver is the storage driver used when
	// none is configured
	DefaultDriver = "memory"

	// DefaultLogLevel is the log level used when
	// none is configured
	DefaultLogLevel = "info"
)

// Config is the top level configuration
type Config struct {
	Storage Storage `mapstructure:"storage"`
	Log     Log     `mapstructure:"log"`
}

// Storage selects the engine plugin and its options
type Storage struct {
	// Driver is the name of a registered kv plugin
	Driver string `mapstructure:"driver"`
	// Options are passed to the plugin as kv.PluginOptions
	Options map[string]interface{} `mapstructure:"options"`
}

// Log configures logging
type Log struct {
	Level string `mapstructure:"level"`
}

// Default returns the configuration used when no file is given
func Default() Config {
	return Config{
		Storage: Storage{
			Driver:  DefaultDriver,
			Options: map[string]interface{}{},
		},
		Log: Log{
			Level: DefaultLogLevel,
		},
	}
}

// Load reads the configuration file at path. The format is
// inferred from the extension. An empty path loads only the
// defaults and environment overrides.
func Load(path string) (Config, error) {
	v := viper.New()

	v.SetDefault("storage.driver", DefaultDriver)
	v.SetDefault("storage.options", map[string]interface{}{})
	v.SetDefault("log.level", DefaultLogLevel)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)

		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("Could not read config file %s: %w", path, err)
		}
	}

	var config Config

	if err := v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("Could not decode config: %w", err)
	}

	if config.Storage.Options == nil {
		config.Storage.Options = map[string]interface{}{}
	}

	return config, nil
}
