package repository

import "context"

// Tx exposes the repositories bound to one database transaction.
type Tx interface {
	Orders() OrderRepository
	Products() ProductRepository
}

// UnitOfWork runs fn inside a single transaction. The transaction commits
// when fn returns nil and rolls back otherwise; fn's error is returned as is.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(tx Tx) error) error
}
