package store

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanonone/kektorgraph/pkg/graph"
)

func sample(t *testing.T, name string) *graph.Graph {
	t.Helper()
	g, err := graph.Random(name, 12, 20, 42, false)
	require.NoError(t, err)
	return g
}

func TestPutGetDelete(t *testing.T) {
	st, err := Open(DefaultOptions(t.TempDir()))
	require.NoError(t, err)
	defer st.Close()

	g := sample(t, "alpha")
	key, err := st.Put("", g)
	require.NoError(t, err)
	assert.Equal(t, "alpha", key)

	got, err := st.Get("alpha")
	require.NoError(t, err)
	assert.Same(t, g, got, "cached instance")

	info, err := st.Info("alpha")
	require.NoError(t, err)
	assert.Equal(t, g.Info(), info)

	require.NoError(t, st.Delete("alpha"))
	_, err = st.Get("alpha")
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, st.Delete("alpha"), ErrNotFound)
	assert.Zero(t, st.Len())
}

func TestReopenLoadsFromDisk(t *testing.T) {
	dir := t.TempDir()
	st, err := Open(DefaultOptions(dir))
	require.NoError(t, err)
	g := sample(t, "beta")
	_, err = st.Put("b1", g)
	require.NoError(t, err)
	_, err = st.Put("b2", g)
	require.NoError(t, err)
	require.NoError(t, st.Close())

	opts := DefaultOptions(dir)
	opts.Direct = true
	opts.CacheLoaded = false
	st, err = Open(opts)
	require.NoError(t, err)
	defer st.Close()
	assert.Equal(t, []string{"b1", "b2"}, st.Names())

	loaded, err := st.Get("b1")
	require.NoError(t, err)
	assert.True(t, loaded.Direct())
	assert.Equal(t, "beta", loaded.Name())
	assert.Equal(t, g.Edges(), loaded.Edges())

	again, err := st.Get("b1")
	require.NoError(t, err)
	assert.NotSame(t, loaded, again, "no cache")
}

func TestKeys(t *testing.T) {
	st, err := Open(DefaultOptions(t.TempDir()))
	require.NoError(t, err)
	defer st.Close()

	unnamed := sample(t, "")
	key, err := st.Put("", unnamed)
	require.NoError(t, err)
	_, err = uuid.Parse(key)
	require.NoError(t, err)
	g, err := st.Get(key)
	require.NoError(t, err)
	assert.Equal(t, key, g.Name())

	spaced := sample(t, "has spaces")
	key, err = st.Put("", spaced)
	require.NoError(t, err)
	_, err = uuid.Parse(key)
	require.NoError(t, err)
	g, err = st.Get(key)
	require.NoError(t, err)
	assert.Equal(t, "has spaces", g.Name())

	for _, bad := range []string{"../escape", ".hidden", "a/b", "sp ace"} {
		_, err := st.Put(bad, spaced)
		require.ErrorIs(t, err, ErrInvalidKey, bad)
	}
}

func TestNamesWithPrefix(t *testing.T) {
	st, err := Open(DefaultOptions(t.TempDir()))
	require.NoError(t, err)
	defer st.Close()
	g := sample(t, "x")
	for _, k := range []string{"run-2", "other", "run-1", "run-10", "zzz"} {
		_, err := st.Put(k, g)
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"run-1", "run-10", "run-2"}, st.NamesWithPrefix("run-"))
	assert.Equal(t, []string{"other", "run-1", "run-10", "run-2", "zzz"}, st.Names())
	assert.Empty(t, st.NamesWithPrefix("nope"))
}

func TestOpenSkipsBrokenMetadata(t *testing.T) {
	dir := t.TempDir()
	st, err := Open(DefaultOptions(dir))
	require.NoError(t, err)
	_, err = st.Put("good", sample(t, "good"))
	require.NoError(t, err)
	require.NoError(t, st.Close())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad"+graph.InfoExt), []byte("garbage"), 0o644))
	st, err = Open(DefaultOptions(dir))
	require.NoError(t, err)
	defer st.Close()
	assert.Equal(t, []string{"good"}, st.Names())
}

func TestGetCorruptRegion(t *testing.T) {
	dir := t.TempDir()
	st, err := Open(Options{DataDir: dir})
	require.NoError(t, err)
	defer st.Close()
	_, err = st.Put("g", sample(t, "g"))
	require.NoError(t, err)
	require.NoError(t, os.Truncate(filepath.Join(dir, "g"+graph.EdgeRegionExt), 3))

	_, err = st.Get("g")
	require.ErrorIs(t, err, graph.ErrIO)
}

func TestConcurrentGets(t *testing.T) {
	dir := t.TempDir()
	st, err := Open(DefaultOptions(dir))
	require.NoError(t, err)
	_, err = st.Put("shared", sample(t, "shared"))
	require.NoError(t, err)
	require.NoError(t, st.Close())

	st, err = Open(DefaultOptions(dir))
	require.NoError(t, err)
	defer st.Close()

	const workers = 8
	got := make([]*graph.Graph, workers)
	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			g, err := st.Get("shared")
			assert.NoError(t, err)
			got[i] = g
		}()
	}
	wg.Wait()
	for _, g := range got[1:] {
		assert.Same(t, got[0], g)
	}
}

func TestGetDuringPut(t *testing.T) {
	opts := DefaultOptions(t.TempDir())
	opts.CacheLoaded = false
	st, err := Open(opts)
	require.NoError(t, err)
	defer st.Close()

	versions := make([]*graph.Graph, 2)
	for i := range versions {
		versions[i], err = graph.Random("k", 200, 600, int64(i+1), false)
		require.NoError(t, err)
	}
	_, err = st.Put("k", versions[0])
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := range 40 {
			_, err := st.Put("k", versions[i%2])
			assert.NoError(t, err)
		}
	}()

	for reads := 0; ; reads++ {
		select {
		case <-done:
			return
		default:
		}
		g, err := st.Get("k")
		require.NoError(t, err, "read %d", reads)
		assert.Equal(t, 600, g.NumEdges())
		assert.True(t, g.IsConsistent())
	}
}

func TestClosed(t *testing.T) {
	st, err := Open(DefaultOptions(t.TempDir()))
	require.NoError(t, err)
	require.NoError(t, st.Close())
	require.NoError(t, st.Close())

	_, err = st.Put("k", sample(t, "k"))
	require.ErrorIs(t, err, ErrClosed)
	_, err = st.Get("k")
	require.ErrorIs(t, err, ErrClosed)
	require.ErrorIs(t, st.Delete("k"), ErrClosed)
	_, err = st.Info("k")
	require.ErrorIs(t, err, ErrClosed)
}
