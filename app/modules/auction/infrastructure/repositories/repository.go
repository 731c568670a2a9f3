package auctiondb

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new auction repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

// resolveDB returns the provided db handle, falling back to the repository's
// default connection if db is nil.
func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

// AcquireXactLock takes a transaction-scoped advisory lock on key. It blocks
// until the lock is free and is released on commit or rollback.
func (r *Impl) AcquireXactLock(ctx context.Context, db bun.IDB, key string) error {
	db = r.resolveDB(db)
	if _, err := db.NewRaw("SELECT pg_advisory_xact_lock(hashtext(?))", key).Exec(ctx); err != nil {
		return fmt.Errorf("auctiondb.AcquireXactLock: %w", mapError(err))
	}
	return nil
}
