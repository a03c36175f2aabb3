package kstor

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blujedis/kstor/internal/keypath"
)

// newTestStore builds a store backed by a fresh temp directory.
func newTestStore(t *testing.T, opts Options) *Store {
	t.Helper()
	if opts.Dir == "" {
		opts.Dir = t.TempDir()
	}
	if opts.Name == "" {
		opts.Name = "conf.json"
	}
	s, err := New(opts)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_SetGetHasDelete(t *testing.T) {
	s := newTestStore(t, Options{})

	require.NoError(t, s.Set("apps.blog.name", "My Blog"))

	v, err := s.Get("apps.blog.name")
	require.NoError(t, err)
	assert.Equal(t, "My Blog", v)

	ok, err := s.Has("apps.blog.name")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, s.Delete("apps.blog.name"))
	ok, err = s.Has("apps.blog.name")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_GetMissingReturnsNil(t *testing.T) {
	s := newTestStore(t, Options{})

	v, err := s.Get("not.there")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestStore_InvalidPathPropagates(t *testing.T) {
	s := newTestStore(t, Options{})

	_, err := s.Get("a..b")
	require.Error(t, err)
	assert.True(t, keypath.IsInvalidPath(err))

	err = s.Set("a..b", 1)
	require.Error(t, err)
	assert.True(t, keypath.IsInvalidPath(err))
}

func TestStore_PersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()

	s1 := newTestStore(t, Options{Dir: dir})
	require.NoError(t, s1.Set("a.b", float64(42)))
	require.NoError(t, s1.Close())

	s2 := newTestStore(t, Options{Dir: dir})
	v, err := s2.Get("a.b")
	require.NoError(t, err)
	assert.Equal(t, float64(42), v)
}

func TestStore_DirtyFlagForcesReloadAfterWrite(t *testing.T) {
	s := newTestStore(t, Options{})
	require.NoError(t, s.Set("a", float64(1)))

	// A write marks the cache dirty, so an out-of-band file change is
	// observed by the next read.
	require.NoError(t, os.WriteFile(s.Path(), []byte(`{"a": 99}`), 0o600))

	v, err := s.Get("a")
	require.NoError(t, err)
	assert.Equal(t, float64(99), v)
}

func TestStore_CleanCacheSkipsDisk(t *testing.T) {
	s := newTestStore(t, Options{})
	require.NoError(t, s.Set("a", float64(1)))

	// First read re-validates from disk and clears the dirty flag ...
	_, err := s.Load()
	require.NoError(t, err)

	// ... so this out-of-band change is not observed.
	require.NoError(t, os.WriteFile(s.Path(), []byte(`{"a": 99}`), 0o600))

	v, err := s.Get("a")
	require.NoError(t, err)
	assert.Equal(t, float64(1), v)
}

func TestStore_MissingFileYieldsEmptyDocument(t *testing.T) {
	s := newTestStore(t, Options{})

	doc, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, doc)

	// the target directory was created for the first write
	info, err := os.Stat(filepath.Dir(s.Path()))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestStore_CorruptFileYieldsEmptyDocument(t *testing.T) {
	dir := t.TempDir()
	s := newTestStore(t, Options{Dir: dir})
	require.NoError(t, os.WriteFile(s.Path(), []byte("{not json"), 0o600))

	doc, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, doc)
}

func TestStore_Entrypoint(t *testing.T) {
	s := newTestStore(t, Options{
		Entrypoint: "apps",
		Defaults: map[string]any{
			"apps": map[string]any{
				"blog1": map[string]any{"name": "My Blog"},
			},
			"version": float64(1),
		},
	})

	// keys resolve through the hidden prefix
	v, err := s.Get("blog1.name")
	require.NoError(t, err)
	assert.Equal(t, "My Blog", v)

	// siblings outside the entrypoint are invisible to iteration
	entries, err := s.Iterate()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "blog1", entries[0].Key)

	// but remain in the on-disk document
	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), `"version"`)
}

func TestStore_DefaultsDiskWins(t *testing.T) {
	dir := t.TempDir()

	s1 := newTestStore(t, Options{Dir: dir})
	require.NoError(t, s1.Set("theme", "dark"))
	require.NoError(t, s1.Close())

	s2 := newTestStore(t, Options{
		Dir:      dir,
		Defaults: map[string]any{"theme": "light", "lang": "en"},
	})

	v, err := s2.Get("theme")
	require.NoError(t, err)
	assert.Equal(t, "dark", v, "existing on-disk value wins over the default")

	v, err = s2.Get("lang")
	require.NoError(t, err)
	assert.Equal(t, "en", v, "missing key takes the default")
}

func TestStore_DefaultsApplyOnce(t *testing.T) {
	s := newTestStore(t, Options{Defaults: map[string]any{"lang": "en"}})

	require.NoError(t, s.Defaults(map[string]any{"theme": "dark"}))

	ok, err := s.Has("theme")
	require.NoError(t, err)
	assert.False(t, ok, "a second Defaults call is a no-op")
}

func TestStore_TransformAppliedOnLoad(t *testing.T) {
	dir := t.TempDir()
	s1 := newTestStore(t, Options{Dir: dir})
	require.NoError(t, s1.Set("name", "my blog"))
	require.NoError(t, s1.Close())

	s2 := newTestStore(t, Options{
		Dir: dir,
		Transform: func(key string, value any) any {
			if sv, ok := value.(string); ok {
				return strings.ToUpper(sv)
			}
			return value
		},
	})

	v, err := s2.Get("name")
	require.NoError(t, err)
	assert.Equal(t, "MY BLOG", v)
}

func TestStore_SnapshotIsolation(t *testing.T) {
	s := newTestStore(t, Options{})
	require.NoError(t, s.Set("a.b", float64(1)))

	snap, err := s.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, float64(1), snap["a"].(map[string]any)["b"])

	// mutating the snapshot must not leak into the store
	snap["a"].(map[string]any)["b"] = float64(2)
	v, err := s.Get("a.b")
	require.NoError(t, err)
	assert.Equal(t, float64(1), v)
}

func TestStore_SetAllPersistsOnce(t *testing.T) {
	s := newTestStore(t, Options{})

	persisted := 0
	changed := 0
	s.On(EventPersisted, func(_, _ any) { persisted++ })
	s.On(EventChanged, func(_, _ any) { changed++ })

	require.NoError(t, s.SetAll(map[string]any{"a": float64(1), "b": float64(2)}))

	assert.Equal(t, 1, persisted, "mapping form persists once, not per pair")
	assert.Equal(t, 2, changed)

	v, err := s.Get("a")
	require.NoError(t, err)
	assert.Equal(t, float64(1), v)
	v, err = s.Get("b")
	require.NoError(t, err)
	assert.Equal(t, float64(2), v)
}

func TestStore_Events(t *testing.T) {
	s := newTestStore(t, Options{})

	var keyNew, keyOld any
	s.On("profile.name", func(n, o any) { keyNew, keyOld = n, o })

	var deletedOld any
	s.On(EventDeleted, func(_, o any) { deletedOld = o })

	clearedFired := false
	s.On(EventCleared, func(n, _ any) {
		clearedFired = true
		assert.Empty(t, n)
	})

	require.NoError(t, s.Set("profile.name", "origin"))
	assert.Equal(t, "origin", keyNew)
	assert.Nil(t, keyOld)

	require.NoError(t, s.Set("profile.name", "updated"))
	assert.Equal(t, "updated", keyNew)
	assert.Equal(t, "origin", keyOld)

	require.NoError(t, s.Delete("profile.name"))
	assert.Equal(t, "updated", deletedOld)

	require.NoError(t, s.Clear())
	assert.True(t, clearedFired)

	size, err := s.Size()
	require.NoError(t, err)
	assert.Zero(t, size)
}

func TestStore_OffRemovesListeners(t *testing.T) {
	s := newTestStore(t, Options{})

	calls := 0
	s.On(EventChanged, func(_, _ any) { calls++ })
	require.NoError(t, s.Set("a", float64(1)))
	s.Off(EventChanged)
	require.NoError(t, s.Set("a", float64(2)))

	assert.Equal(t, 1, calls)
}

func TestStore_ListenerMayCallBack(t *testing.T) {
	s := newTestStore(t, Options{})

	var seen any
	s.On(EventChanged, func(_, _ any) {
		v, err := s.Get("a")
		require.NoError(t, err)
		seen = v
	})

	require.NoError(t, s.Set("a", float64(7)))
	assert.Equal(t, float64(7), seen)
}

func TestStore_EncryptionRoundTrip(t *testing.T) {
	dir := t.TempDir()

	s1 := newTestStore(t, Options{Dir: dir, EncryptionKey: "s3cret"})
	require.NoError(t, s1.Set("apps.blog.name", "My Blog"))
	require.NoError(t, s1.Close())

	// on disk: "<ivHex>:<cipherHex>", not JSON
	data, err := os.ReadFile(filepath.Join(dir, "conf.json"))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "My Blog")
	assert.Regexp(t, `^[0-9a-f]{32}:[0-9a-f]+$`, string(data))

	s2 := newTestStore(t, Options{Dir: dir, EncryptionKey: "s3cret"})
	v, err := s2.Get("apps.blog.name")
	require.NoError(t, err)
	assert.Equal(t, "My Blog", v)
}

func TestStore_EncryptionWrongKeyDegrades(t *testing.T) {
	dir := t.TempDir()

	s1 := newTestStore(t, Options{Dir: dir, EncryptionKey: "right"})
	require.NoError(t, s1.Set("a", float64(1)))
	require.NoError(t, s1.Close())

	s2 := newTestStore(t, Options{Dir: dir, EncryptionKey: "wrong"})
	doc, err := s2.Load()
	require.NoError(t, err, "wrong key degrades to an empty document, not an error")
	assert.Empty(t, doc)
}

func TestStore_Query(t *testing.T) {
	s := newTestStore(t, Options{
		Entrypoint: "leagues",
		Defaults: map[string]any{
			"leagues": map[string]any{
				"nba": map[string]any{"teams": float64(30)},
				"nfl": map[string]any{"teams": float64(32)},
				"mlb": map[string]any{"teams": float64(31)},
			},
		},
	})

	out, err := s.Query(map[string]any{
		"$and": []any{
			map[string]any{"teams": map[string]any{"$gt": float64(30)}},
			map[string]any{"teams": map[string]any{"$lt": float64(32)}},
		},
	}, 0, 0)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Contains(t, out, "mlb")

	// nil filter passes everything through, bounded by take
	out, err = s.Query(nil, 0, 2)
	require.NoError(t, err)
	assert.Len(t, out, 2)
}

func TestStore_Close(t *testing.T) {
	s := newTestStore(t, Options{})
	require.NoError(t, s.Set("a", float64(1)))

	require.NoError(t, s.Close())
	require.NoError(t, s.Close(), "Close is idempotent")

	_, err := s.Get("a")
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, s.Set("a", 2), ErrClosed)
	assert.ErrorIs(t, s.Clear(), ErrClosed)
}
