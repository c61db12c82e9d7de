package cache

// Cache stores fetched content by reference. Implementations must be safe
// for concurrent use; content lives for one process run, no persistence.
type Cache interface {
	// Get returns the cached bytes and true, or nil and false on a miss.
	// Callers must not modify the returned slice.
	Get(key string) ([]byte, bool)

	// Put stores content under key, replacing any earlier value.
	Put(key string, content []byte)
}
