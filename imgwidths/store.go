package imgwidths

import (
	"github.com/hazyhaar/rwd/imgwidths/internal/store"
)

// Store is the SQLite run history.
type Store = store.Store

// RunSummary is one row of the run listing.
type RunSummary = store.RunSummary

// OpenStore opens (or creates) the run history at path.
func OpenStore(path string) (*Store, error) {
	return store.Open(path)
}
