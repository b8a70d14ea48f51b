package store

// Options configures a Store.
type Options struct {
	// DataDir holds one set of region files per stored graph. It is created
	// if missing.
	DataDir string

	// Direct selects the storage mode of graphs loaded from disk. Graphs handed
	// to Put keep their own mode.
	Direct bool

	// CacheLoaded keeps every loaded or stored graph in memory, so repeated
	// Gets return the same immutable instance without touching the disk.
	CacheLoaded bool
}

// DefaultOptions returns options for a store rooted at dataDir with heap
// storage and caching enabled.
func DefaultOptions(dataDir string) Options {
	return Options{
		DataDir:     dataDir,
		Direct:      false,
		CacheLoaded: true,
	}
}
