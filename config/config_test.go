package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jrife/kvbucket/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name string, contents string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0600))

	return path
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name string
		fn   func(t *testing.T)
	}{
		{
			name: "defaults",
			fn: func(t *testing.T) {
				cfg, err := config.Load("")
				require.NoError(t, err)
				assert.Equal(t, config.Default(), cfg)
			},
		},
		{
			name: "json file",
			fn: func(t *testing.T) {
				path := writeFile(t, "config.json", `{
					"storage": {"driver": "bbolt", "options": {"path": "/tmp/data.db", "page_size": 64}},
					"log": {"level": "debug"}
				}`)

				cfg, err := config.Load(path)
				require.NoError(t, err)
				assert.Equal(t, "bbolt", cfg.Storage.Driver)
				assert.Equal(t, "/tmp/data.db", cfg.Storage.Options["path"])
				assert.EqualValues(t, 64, cfg.Storage.Options["page_size"])
				assert.Equal(t, "debug", cfg.Log.Level)
			},
		},
		{
			name: "yaml file keeps unset defaults",
			fn: func(t *testing.T) {
				path := writeFile(t, "config.yaml", "storage:\n  driver: pebble\n")

				cfg, err := config.Load(path)
				require.NoError(t, err)
				assert.Equal(t, "pebble", cfg.Storage.Driver)
				assert.Equal(t, config.DefaultLogLevel, cfg.Log.Level)
				assert.NotNil(t, cfg.Storage.Options)
			},
		},
		{
			name: "environment overrides file",
			fn: func(t *testing.T) {
				path := writeFile(t, "config.json", `{"storage": {"driver": "bbolt"}}`)
				t.Setenv("KVBUCKET_STORAGE_DRIVER", "badger")
				t.Setenv("KVBUCKET_LOG_LEVEL", "warn")

				cfg, err := config.Load(path)
				require.NoError(t, err)
				assert.Equal(t, "badger", cfg.Storage.Driver)
				assert.Equal(t, "warn", cfg.Log.Level)
			},
		},
		{
			name: "missing file",
			fn: func(t *testing.T) {
				_, err := config.Load(filepath.Join(t.TempDir(), "missing.json"))
				require.Error(t, err)
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, test.fn)
	}
}
