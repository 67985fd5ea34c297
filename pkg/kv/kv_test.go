package kv

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gotest.tools/v3/fs"
)

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Get(ctx, KeyIdentity)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set(ctx, KeyIdentity, []byte(`{"id":"user123"}`)))
	require.NoError(t, s.Set(ctx, KeyAutoReconnect, []byte("true")))

	v, err := s.Get(ctx, KeyIdentity)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"user123"}`, string(v))

	require.NoError(t, s.Set(ctx, KeyIdentity, []byte(`{"id":"user124"}`)))
	v, err = s.Get(ctx, KeyIdentity)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"user124"}`, string(v))

	require.NoError(t, s.Delete(ctx, KeyIdentity))
	require.NoError(t, s.Delete(ctx, KeyIdentity), "deleting a missing key is a no-op")
	_, err = s.Get(ctx, KeyIdentity)
	assert.ErrorIs(t, err, ErrNotFound)

	v, err = s.Get(ctx, KeyAutoReconnect)
	require.NoError(t, err)
	assert.Equal(t, "true", string(v), "keys are independent")
}

func TestMemory(t *testing.T) {
	exerciseStore(t, NewMemory())
}

func TestMemoryCopiesValues(t *testing.T) {
	m := NewMemory()
	buf := []byte("abc")
	require.NoError(t, m.Set(context.Background(), "k", buf))
	buf[0] = 'x'
	v, err := m.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(v))
}

func TestFile(t *testing.T) {
	dir := fs.NewDir(t, "kv")
	defer dir.Remove()

	s, err := NewFile(filepath.Join(dir.Path(), "state", "engine.json"))
	require.NoError(t, err)
	exerciseStore(t, s)
}

func TestFileSurvivesReopen(t *testing.T) {
	dir := fs.NewDir(t, "kv")
	defer dir.Remove()
	path := filepath.Join(dir.Path(), "engine.json")
	ctx := context.Background()

	s, err := NewFile(path)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, KeyJobs, []byte(`{"state":{"jobs":[]},"version":0}`)))

	reopened, err := NewFile(path)
	require.NoError(t, err)
	v, err := reopened.Get(ctx, KeyJobs)
	require.NoError(t, err)
	assert.JSONEq(t, `{"state":{"jobs":[]},"version":0}`, string(v))

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestFileKeepsBinaryValues(t *testing.T) {
	dir := fs.NewDir(t, "kv")
	defer dir.Remove()
	ctx := context.Background()

	s, err := NewFile(filepath.Join(dir.Path(), "engine.json"))
	require.NoError(t, err)
	raw := []byte{0xff, 0xfe, 0x00, 'o', 'k', 0x80}
	require.NoError(t, s.Set(ctx, "blob", raw))

	v, err := s.Get(ctx, "blob")
	require.NoError(t, err)
	assert.Equal(t, raw, v)
}

func TestFileCorruptDocument(t *testing.T) {
	dir := fs.NewDir(t, "kv", fs.WithFile("engine.json", "{not json"))
	defer dir.Remove()

	s, err := NewFile(filepath.Join(dir.Path(), "engine.json"))
	require.NoError(t, err)
	_, err = s.Get(context.Background(), KeyJobs)
	assert.ErrorContains(t, err, "parse kv file")
}
