package kv

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// LoggerOption is the plugin option under which
// a *zap.Logger may be passed to an engine
const LoggerOption = "logger"

// PluginOptions are driver-specific options
// passed to Plugin.NewEngine
type PluginOptions map[string]interface{}

// String returns the string option name. ok is false
// if the option is not set.
func (options PluginOptions) String(name string) (value string, ok bool, err error) {
	raw, ok := options[name]

	if !ok {
		return "", false, nil
	}

	value, isString := raw.(string)

	if !isString {
		return "", true, fmt.Errorf("%q must be a string", name)
	}

	return value, true, nil
}

// Bool returns the boolean option name. ok is false
// if the option is not set.
func (options PluginOptions) Bool(name string) (value bool, ok bool, err error) {
	raw, ok := options[name]

	if !ok {
		return false, false, nil
	}

	value, isBool := raw.(bool)

	if !isBool {
		return false, true, fmt.Errorf("%q must be a boolean", name)
	}

	return value, true, nil
}

// Int returns the integer option name. Numbers decoded
// from configuration files are accepted as long as they
// are whole. ok is false if the option is not set.
func (options PluginOptions) Int(name string) (value int, ok bool, err error) {
	raw, ok := options[name]

	if !ok {
		return 0, false, nil
	}

	switch v := raw.(type) {
	case int:
		return v, true, nil
	case int64:
		return int(v), true, nil
	case float64:
		if v != float64(int(v)) {
			return 0, true, fmt.Errorf("%q must be a whole number", name)
		}

		return int(v), true, nil
	}

	return 0, true, fmt.Errorf("%q must be an integer", name)
}

// Duration returns the duration option name. It may be
// given as a time.Duration or as a string such as "1s".
// ok is false if the option is not set.
func (options PluginOptions) Duration(name string) (value time.Duration, ok bool, err error) {
	raw, ok := options[name]

	if !ok {
		return 0, false, nil
	}

	switch v := raw.(type) {
	case time.Duration:
		return v, true, nil
	case string:
		d, err := time.ParseDuration(v)

		if err != nil {
			return 0, true, fmt.Errorf("%q is not a valid duration: %w", name, err)
		}

		return d, true, nil
	}

	return 0, true, fmt.Errorf("%q must be a duration", name)
}

// Logger returns the logger passed under LoggerOption
// or a no-op logger if there is none
func (options PluginOptions) Logger() *zap.Logger {
	if logger, ok := options[LoggerOption].(*zap.Logger); ok && logger != nil {
		return logger
	}

	return zap.NewNop()
}
