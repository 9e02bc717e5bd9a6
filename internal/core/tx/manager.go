// Package tx defines the transaction boundary the domain services depend
// on. The closing engine in particular runs its lock-compute-insert sequence
// through Manager; the concrete pgx implementation lives in
// infrastructure/storage/postgres.
package tx

import (
	"context"
)

// Manager runs a function inside a database transaction. An error from fn
// rolls the transaction back, a nil return commits it. Nested calls reuse
// the transaction already stored in the context, which is what lets a
// closing execute span the rate lookup, the chain-head lock and the batch
// insert as one atomic unit.
type Manager interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ReadOnlyManager extends Manager with read-only transactions. Report
// assembly uses these so a long range scan never takes row locks.
type ReadOnlyManager interface {
	Manager

	// ReadOnly executes fn in a read-only transaction; writes inside fn
	// fail.
	ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}
