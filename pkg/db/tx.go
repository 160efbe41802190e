package db

import (
	"context"
	"errors"
)

// ErrVersionConflict is returned when a version-guarded write finds that the
// record changed after it was read. Callers restart the whole unit of work.
var ErrVersionConflict = errors.New("version conflict: record was modified concurrently")

type TransactionFunc func(ctx context.Context) error

// TransactionManager runs fn as one atomic unit. Implementations never retry
// fn on their own; a conflict surfaces as ErrVersionConflict.
type TransactionManager interface {
	ExecuteTransaction(ctx context.Context, fn TransactionFunc) error
}

type Pinger interface {
	Ping(ctx context.Context) error
}
