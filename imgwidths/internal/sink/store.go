package sink

import (
	"context"

	"github.com/hazyhaar/rwd/imgwidths/internal/store"
	"github.com/hazyhaar/rwd/imgwidths/measure"
)

// Store records reports in the SQLite run history. The caller owns the
// underlying *store.Store.
type Store struct {
	st *store.Store
}

// NewStore creates a Store sink over an open run history.
func NewStore(st *store.Store) *Store {
	return &Store{st: st}
}

func (s *Store) Name() string { return "store" }

func (s *Store) Send(ctx context.Context, r measure.Report) error {
	return s.st.SaveReport(ctx, &r)
}

func (s *Store) Close() error { return nil }
