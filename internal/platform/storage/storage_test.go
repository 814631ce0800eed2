package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/georgemunganga/mascotas-backend/internal/config"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exercise runs the contract every backend must satisfy.
func exercise(t *testing.T, s Storage) {
	t.Helper()
	ctx := context.Background()

	_, err := s.GetItem(ctx, "carrito")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.SetItem(ctx, "carrito", []byte(`{"total":"0"}`)))
	got, err := s.GetItem(ctx, "carrito")
	require.NoError(t, err)
	assert.JSONEq(t, `{"total":"0"}`, string(got))

	require.NoError(t, s.SetItem(ctx, "carrito", []byte(`{"total":"10"}`)))
	got, err = s.GetItem(ctx, "carrito")
	require.NoError(t, err)
	assert.JSONEq(t, `{"total":"10"}`, string(got))

	require.NoError(t, s.RemoveItem(ctx, "carrito"))
	_, err = s.GetItem(ctx, "carrito")
	assert.ErrorIs(t, err, ErrNotFound)

	// removing a missing key is not an error
	assert.NoError(t, s.RemoveItem(ctx, "carrito"))
}

func TestMemory(t *testing.T) {
	exercise(t, NewMemory())
}

func TestMemory_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	value := []byte("abc")
	require.NoError(t, m.SetItem(ctx, "k", value))
	value[0] = 'z'

	got, err := m.GetItem(ctx, "k")
	require.NoError(t, err)
	got[1] = 'z'

	again, _ := m.GetItem(ctx, "k")
	assert.Equal(t, "abc", string(again))
}

func TestFile(t *testing.T) {
	dir := t.TempDir()
	f, err := NewFile(dir)
	require.NoError(t, err)
	exercise(t, f)
}

func TestFile_EscapesKeys(t *testing.T) {
	dir := t.TempDir()
	f, err := NewFile(dir)
	require.NoError(t, err)

	require.NoError(t, f.SetItem(context.Background(), "../escape", []byte("1")))

	_, err = os.Stat(filepath.Join(dir, "..%2Fescape.json"))
	assert.NoError(t, err)
}

func TestRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	r := NewRedis(client, "test:")
	exercise(t, r)

	require.NoError(t, r.SetItem(context.Background(), "token", []byte("abc")))
	raw, err := mr.Get("test:token")
	require.NoError(t, err)
	assert.Equal(t, "abc", raw)
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	var out map[string]int
	found, err := LoadJSON(ctx, s, "missing", &out)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, out)

	require.NoError(t, SaveJSON(ctx, s, "counts", map[string]int{"a": 1}))
	found, err = LoadJSON(ctx, s, "counts", &out)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, map[string]int{"a": 1}, out)

	require.NoError(t, s.SetItem(ctx, "broken", []byte("{")))
	_, err = LoadJSON(ctx, s, "broken", &out)
	assert.ErrorContains(t, err, "decode broken")
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	b, err := Open(ctx, &config.Config{StorageDriver: "memory"})
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, b.Storage)
	assert.NoError(t, b.Close())

	b, err = Open(ctx, &config.Config{StorageDriver: "file", StorageDir: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &File{}, b.Storage)

	mr := miniredis.RunT(t)
	b, err = Open(ctx, &config.Config{StorageDriver: "redis", RedisURL: "redis://" + mr.Addr() + "/0", RedisPrefix: "p:"})
	require.NoError(t, err)
	assert.IsType(t, &Redis{}, b.Storage)
	assert.NoError(t, b.Close())

	_, err = Open(ctx, &config.Config{StorageDriver: "tape"})
	assert.Error(t, err)
}
