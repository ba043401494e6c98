package bbolt_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/jrife/kvbucket/storage/kv"
	"github.com/jrife/kvbucket/storage/kv/plugins/bbolt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestDestroy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kv.db")
	engine, err := bbolt.New(bbolt.Config{Path: path, Logger: zaptest.NewLogger(t)})
	require.NoError(t, err)
	require.NoError(t, engine.Put([]byte("a"), []byte("1")))

	_, err = os.Stat(path)
	require.NoError(t, err)

	require.NoError(t, kv.Destroy(engine))

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	_, err = engine.Get([]byte("a"))
	assert.True(t, errors.Is(err, kv.ErrClosed))
}

func TestTempEngineDestroy(t *testing.T) {
	engine, err := (&bbolt.Plugin{}).NewTempEngine()
	require.NoError(t, err)
	require.NoError(t, engine.Put([]byte("a"), []byte("1")))
	require.NoError(t, kv.Destroy(engine))

	// reopening a destroyed engine starts empty
	require.NoError(t, engine.Open())
	defer kv.Destroy(engine)

	_, err = engine.Get([]byte("a"))
	assert.True(t, errors.Is(err, kv.ErrNotFound))
}
