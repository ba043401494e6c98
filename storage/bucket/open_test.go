package bucket_test

import (
	"path/filepath"
	"testing"

	"github.com/jrife/kvbucket/config"
	"github.com/jrife/kvbucket/storage/bucket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestOpen(t *testing.T) {
	tests := []struct {
		name    string
		config  func(t *testing.T) config.Config
		wantErr bool
	}{
		{
			name: "default config",
			config: func(t *testing.T) config.Config {
				return config.Default()
			},
		},
		{
			name: "bbolt file",
			config: func(t *testing.T) config.Config {
				cfg := config.Default()
				cfg.Log.Level = "error"
				cfg.Storage = config.Storage{
					Driver:  "bbolt",
					Options: map[string]interface{}{"path": filepath.Join(t.TempDir(), "data.db")},
				}

				return cfg
			},
		},
		{
			name: "bad log level",
			config: func(t *testing.T) config.Config {
				cfg := config.Default()
				cfg.Log.Level = "loud"

				return cfg
			},
			wantErr: true,
		},
		{
			name: "unknown driver",
			config: func(t *testing.T) config.Config {
				cfg := config.Default()
				cfg.Storage.Driver = "leveldb"

				return cfg
			},
			wantErr: true,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			store, err := bucket.Open(test.config(t), bucket.WithLogger(zaptest.NewLogger(t)))

			if test.wantErr {
				require.Error(t, err)

				return
			}

			require.NoError(t, err)
			defer store.Close()

			users := store.Bucket([]byte("users"))
			require.NoError(t, users.Put([]byte("alice"), []byte("1")))

			value, err := users.Get([]byte("alice"))
			require.NoError(t, err)
			assert.Equal(t, []byte("1"), value)
		})
	}
}

func TestOpenNamedRoot(t *testing.T) {
	store, err := bucket.Open(config.Default(), bucket.WithName([]byte("tenant")))
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, []byte("tenant."), []byte(store.Prefix()))
}
