package host

import (
	"crypto/sha256"

	"github.com/tetratelabs/wazero"
)

// ---------------------------------------------------------------------------
// ContentStore: compiled modules keyed by the hash of their bytes
// ---------------------------------------------------------------------------

// ContentStore indexes compiled modules by the SHA-256 of their binary, so
// loading the same artifact twice compiles it once. Entries live as long as
// the owning session's runtime. Not safe for concurrent use.
type ContentStore struct {
	modules map[[32]byte]wazero.CompiledModule
}

// NewContentStore creates an empty store.
func NewContentStore() *ContentStore {
	return &ContentStore{modules: make(map[[32]byte]wazero.CompiledModule)}
}

// Digest returns the content hash of a module binary.
func Digest(bin []byte) [32]byte {
	return sha256.Sum256(bin)
}

// Lookup returns the compiled module for h, or nil.
func (cs *ContentStore) Lookup(h [32]byte) wazero.CompiledModule {
	return cs.modules[h]
}

// Index records a compiled module under h.
func (cs *ContentStore) Index(h [32]byte, cm wazero.CompiledModule) {
	cs.modules[h] = cm
}

// Len returns the number of distinct modules held.
func (cs *ContentStore) Len() int {
	return len(cs.modules)
}
