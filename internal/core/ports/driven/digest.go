package driven

// Digester computes content hashes. Swapping the implementation changes
// every chunk id and object address, so a store must keep one digester
// for its lifetime.
type Digester interface {
	// Name identifies the algorithm (e.g. "sha256").
	Name() string

	// Sum returns the lowercase hex digest of data.
	Sum(data []byte) string
}
