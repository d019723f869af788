package filestore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowstate/flowstate-dashboard/internal/ports"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "nested", "state.json"))
	require.NoError(t, err)
	return s
}

func TestStore_SetGetDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, ok, err := s.Get(ctx, ports.KeyToken)
	require.NoError(t, err)
	assert.False(t, ok, "missing file reads as empty")

	require.NoError(t, s.Set(ctx, ports.KeyToken, "abc", 0))
	require.NoError(t, s.Set(ctx, ports.KeyUser, `{"id":1}`, 0))

	got, ok, err := s.Get(ctx, ports.KeyToken)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "abc", got)

	require.NoError(t, s.Delete(ctx, ports.KeyToken))
	_, ok, err = s.Get(ctx, ports.KeyToken)
	require.NoError(t, err)
	assert.False(t, ok)

	got, ok, err = s.Get(ctx, ports.KeyUser)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"id":1}`, got)
}

func TestStore_PersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	ctx := context.Background()

	first, err := New(path)
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, ports.KeyToken, "abc", time.Hour))

	second, err := New(path)
	require.NoError(t, err)
	got, ok, err := second.Get(ctx, ports.KeyToken)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "abc", got)
}

func TestStore_FilePermissions(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Set(context.Background(), ports.KeyToken, "abc", 0))

	info, err := os.Stat(s.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(fileMode), info.Mode().Perm())
}

func TestStore_Expiry(t *testing.T) {
	s := newTestStore(t)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, ports.KeyToken, "abc", time.Minute))

	now = now.Add(2 * time.Minute)
	_, ok, err := s.Get(ctx, ports.KeyToken)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_CorruptFile(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(s.Path()), dirMode))
	require.NoError(t, os.WriteFile(s.Path(), []byte("{not json"), fileMode))

	_, _, err := s.Get(context.Background(), ports.KeyToken)
	assert.Error(t, err)
}

func TestNew_DefaultPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	s, err := New("")
	require.NoError(t, err)
	assert.Equal(t, "state.json", filepath.Base(s.Path()))
	assert.Equal(t, "flowstate", filepath.Base(filepath.Dir(s.Path())))
}
