// Package store keeps a directory catalog of saved graphs.
//
// Each graph is saved with graph.Save under its key. The catalog is an ordered
// index of keys and metadata rebuilt from the .info files when the store is
// opened; graphs themselves are loaded lazily and, since they are immutable,
// may be cached and shared between goroutines.
//
// Basic usage:
//
//	st, err := store.Open(store.DefaultOptions("./graphs"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer st.Close()
//	key, err := st.Put("", g)
package store

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/tidwall/btree"
	"golang.org/x/sync/singleflight"

	"github.com/sanonone/kektorgraph/pkg/graph"
	"github.com/sanonone/kektorgraph/pkg/metrics"
)

var (
	// ErrNotFound is returned for keys the catalog does not hold.
	ErrNotFound = errors.New("store: graph not found")
	// ErrClosed is returned by every method after Close.
	ErrClosed = errors.New("store: closed")
	// ErrInvalidKey is returned for keys that are not safe file base names.
	ErrInvalidKey = errors.New("store: invalid key")
)

var keyPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,127}$`)

// ValidKey reports whether key can name a stored graph.
func ValidKey(key string) bool { return keyPattern.MatchString(key) }

type entry struct {
	key  string
	info graph.Info
}

func entryLess(a, b entry) bool { return a.key < b.key }

// Store is a catalog of graphs saved in one directory. It is safe for
// concurrent use.
type Store struct {
	opts Options

	mu      sync.RWMutex
	catalog *btree.BTreeG[entry]
	cache   map[string]*graph.Graph
	closed  bool

	loads singleflight.Group
}

// Open creates DataDir if needed and indexes every graph saved in it. Files
// whose metadata cannot be read are skipped with a warning.
func Open(opts Options) (*Store, error) {
	if err := os.MkdirAll(opts.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	s := &Store{
		opts:    opts,
		catalog: btree.NewBTreeG[entry](entryLess),
		cache:   make(map[string]*graph.Graph),
	}

	infos, err := filepath.Glob(filepath.Join(opts.DataDir, "*"+graph.InfoExt))
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", opts.DataDir, err)
	}
	for _, path := range infos {
		key := strings.TrimSuffix(filepath.Base(path), graph.InfoExt)
		if !ValidKey(key) {
			continue
		}
		info, err := graph.ReadInfo(opts.DataDir, key)
		if err != nil {
			slog.Warn("Skipping unreadable graph metadata", "key", key, "error", err)
			continue
		}
		s.catalog.Set(entry{key: key, info: info})
		setElementGauges(key, info)
	}
	slog.Info("Graph store opened", "dir", opts.DataDir, "graphs", s.catalog.Len())
	return s, nil
}

// Put saves g under key and returns the key used. An empty key falls back to
// the graph's name when that is a valid key, and to a fresh UUID otherwise; a
// graph without a name is renamed to its UUID key. An existing graph under the
// same key is replaced.
func (s *Store) Put(key string, g *graph.Graph) (string, error) {
	if key == "" {
		key = g.Name()
		if !ValidKey(key) {
			key = uuid.NewString()
			if g.Name() == "" {
				g = g.Rename(key)
			}
		}
	}
	if !ValidKey(key) {
		metrics.StoreOperationsTotal.WithLabelValues("put", "error").Inc()
		return "", fmt.Errorf("Put: %q: %w", key, ErrInvalidKey)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", ErrClosed
	}
	if err := g.Save(s.opts.DataDir, key); err != nil {
		metrics.StoreOperationsTotal.WithLabelValues("put", "error").Inc()
		return "", fmt.Errorf("Put: %s: %w", key, err)
	}
	info := g.Info()
	s.catalog.Set(entry{key: key, info: info})
	if s.opts.CacheLoaded {
		s.cache[key] = g
	} else {
		delete(s.cache, key)
	}
	// A load started before this Put must not repopulate the cache.
	s.loads.Forget(key)
	setElementGauges(key, info)
	metrics.StoreOperationsTotal.WithLabelValues("put", "ok").Inc()
	slog.Info("Graph stored", "key", key, "nodes", info.NumberOfNodes, "edges", info.NumberOfEdges)
	return key, nil
}

// Get returns the graph stored under key, loading it on first use.
// Concurrent Gets of the same uncached key share a single load.
func (s *Store) Get(key string) (*graph.Graph, error) {
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return nil, ErrClosed
	}
	if g, ok := s.cache[key]; ok {
		s.mu.RUnlock()
		metrics.StoreOperationsTotal.WithLabelValues("get", "cached").Inc()
		return g, nil
	}
	_, known := s.catalog.Get(entry{key: key})
	s.mu.RUnlock()
	if !known {
		metrics.StoreOperationsTotal.WithLabelValues("get", "error").Inc()
		return nil, fmt.Errorf("Get: %q: %w", key, ErrNotFound)
	}

	v, err, _ := s.loads.Do(key, func() (any, error) {
		return s.load(key)
	})
	if err != nil {
		metrics.StoreOperationsTotal.WithLabelValues("get", "error").Inc()
		return nil, err
	}
	metrics.StoreOperationsTotal.WithLabelValues("get", "ok").Inc()
	return v.(*graph.Graph), nil
}

func (s *Store) load(key string) (*graph.Graph, error) {
	g, err := s.readFiles(key)
	if err != nil {
		metrics.StoreOperationsTotal.WithLabelValues("load", "error").Inc()
		slog.Error("Failed to load graph", "key", key, "error", err)
		return nil, fmt.Errorf("Get: %s: %w", key, err)
	}
	if g.Direct() != s.opts.Direct {
		g = g.WithStorage(s.opts.Direct)
	}
	metrics.StoreOperationsTotal.WithLabelValues("load", "ok").Inc()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	if _, ok := s.catalog.Get(entry{key: key}); !ok || !s.opts.CacheLoaded {
		return g, nil
	}
	if cached, ok := s.cache[key]; ok {
		return cached, nil
	}
	s.cache[key] = g
	return g, nil
}

// readFiles loads key from disk under the read lock, so a concurrent Put or
// Delete cannot swap region files halfway through.
func (s *Store) readFiles(key string) (*graph.Graph, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	if _, ok := s.catalog.Get(entry{key: key}); !ok {
		return nil, fmt.Errorf("%q: %w", key, ErrNotFound)
	}
	return graph.Load(s.opts.DataDir, key)
}

// Info returns the metadata of the graph stored under key.
func (s *Store) Info(key string) (graph.Info, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return graph.Info{}, ErrClosed
	}
	e, ok := s.catalog.Get(entry{key: key})
	if !ok {
		return graph.Info{}, fmt.Errorf("Info: %q: %w", key, ErrNotFound)
	}
	return e.info, nil
}

// Delete removes the graph stored under key from disk and from the catalog.
func (s *Store) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if _, ok := s.catalog.Get(entry{key: key}); !ok {
		metrics.StoreOperationsTotal.WithLabelValues("delete", "error").Inc()
		return fmt.Errorf("Delete: %q: %w", key, ErrNotFound)
	}
	if err := graph.Remove(s.opts.DataDir, key); err != nil {
		metrics.StoreOperationsTotal.WithLabelValues("delete", "error").Inc()
		return fmt.Errorf("Delete: %s: %w", key, err)
	}
	s.catalog.Delete(entry{key: key})
	delete(s.cache, key)
	s.loads.Forget(key)
	metrics.GraphElements.DeleteLabelValues(key, "nodes")
	metrics.GraphElements.DeleteLabelValues(key, "edges")
	metrics.StoreOperationsTotal.WithLabelValues("delete", "ok").Inc()
	slog.Info("Graph deleted", "key", key)
	return nil
}

// Names returns every key in ascending order.
func (s *Store) Names() []string {
	return s.NamesWithPrefix("")
}

// NamesWithPrefix returns the keys starting with prefix in ascending order.
func (s *Store) NamesWithPrefix(prefix string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []string
	s.catalog.Ascend(entry{key: prefix}, func(e entry) bool {
		if !strings.HasPrefix(e.key, prefix) {
			return false
		}
		out = append(out, e.key)
		return true
	})
	return out
}

// Len returns the number of stored graphs.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog.Len()
}

// Close drops the cache. Files stay on disk. Close is idempotent.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.cache = nil
	slog.Info("Graph store closed", "dir", s.opts.DataDir)
	return nil
}

func setElementGauges(key string, info graph.Info) {
	metrics.GraphElements.WithLabelValues(key, "nodes").Set(float64(info.NumberOfNodes))
	metrics.GraphElements.WithLabelValues(key, "edges").Set(float64(info.NumberOfEdges))
}
