package database

import "context"

// Transactor runs fn as one atomic unit of work. Repositories called with the
// ctx handed to fn participate in the same transaction. Nested calls join the
// outer transaction.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
