package fs

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"epidash/adapters/blob/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := New(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, core.DriverFilesystem, s.Driver())

	info, err := s.Put(ctx, "dash/state.json", strings.NewReader(`{"a":1}`), core.PutOptions{
		ContentType: "application/json",
		Metadata:    map[string]string{"snapshot": "s1"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), info.Size)
	assert.Len(t, info.ETag, 64)

	_, err = os.Stat(filepath.Join(s.Root(), "dash", "state.json.meta"))
	require.NoError(t, err)

	_, err = s.Put(ctx, "dash/state.json", strings.NewReader("x"), core.PutOptions{})
	assert.ErrorIs(t, err, core.ErrExists)

	got, rc, err := s.Get(ctx, "dash/state.json")
	require.NoError(t, err)
	defer rc.Close()
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(body))
	assert.Equal(t, "application/json", got.ContentType)
	assert.Equal(t, "s1", got.Metadata["snapshot"])

	list, err := s.List(ctx, "dash/")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "dash/state.json", list[0].Key)
}

func TestStoreMissingAndDelete(t *testing.T) {
	ctx := context.Background()
	s, err := New(t.TempDir())
	require.NoError(t, err)

	_, _, err = s.Get(ctx, "nope")
	assert.ErrorIs(t, err, core.ErrNotFound)

	existed, err := s.Delete(ctx, "nope")
	require.NoError(t, err)
	assert.False(t, existed)

	_, err = s.Put(ctx, "k", strings.NewReader("v"), core.PutOptions{})
	require.NoError(t, err)
	existed, err = s.Delete(ctx, "k")
	require.NoError(t, err)
	assert.True(t, existed)

	list, err := s.List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestSanitizeKey(t *testing.T) {
	for _, bad := range []string{"", "  ", "../escape", "/abs", "a/../../b", "x.meta"} {
		_, err := sanitizeKey(bad)
		assert.Error(t, err, "key %q", bad)
	}
	k, err := sanitizeKey("a//b/./c")
	require.NoError(t, err)
	assert.Equal(t, "a/b/c", k)
}
