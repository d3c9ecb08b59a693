package postgres

import (
	"context"

	"pgtable/pkg/storage"
)

// newRepository is a test hook that points to NewRepository by default.
// Tests may replace this variable to avoid real DB connections.
var newRepository = NewRepository

// wrappedRepo implements storage.Executor by delegating to *Repository, with
// a Close that calls the close function returned by NewRepository.
type wrappedRepo struct {
	*Repository
	closeFn func()
}

var _ storage.Executor = (*wrappedRepo)(nil)

// Close implements storage.Executor.Close.
func (w *wrappedRepo) Close() {
	if w.closeFn != nil {
		w.closeFn()
	}
}

// init registers the "postgres" kind:
//
//	ex, err := storage.New(ctx, storage.Config{Kind: "postgres", DSN: dsn})
func init() {
	storage.Register("postgres", func(ctx context.Context, cfg storage.Config) (storage.Executor, error) {
		r, closeFn, err := newRepository(ctx, Config{
			DSN:      cfg.DSN,
			MaxConns: cfg.MaxConns,
		})
		if err != nil {
			return nil, err
		}
		return &wrappedRepo{Repository: r, closeFn: closeFn}, nil
	})
}
