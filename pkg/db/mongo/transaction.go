package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"
	"tms/pkg/db"

	"go.mongodb.org/mongo-driver/mongo"
)

const writeConflictCode = 112

type mongoTransactionManager struct {
	client *mongo.Client
}

func NewTransactionManager(client *mongo.Client) db.TransactionManager {
	return &mongoTransactionManager{
		client: client,
	}
}

// ExecuteTransaction commits or aborts explicitly instead of going through
// session.WithTransaction, which would transparently re-run fn on transient
// errors and hide conflicts from the caller.
func (m *mongoTransactionManager) ExecuteTransaction(ctx context.Context, fn db.TransactionFunc) error {
	session, err := m.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(context.WithoutCancel(ctx))

	if err := session.StartTransaction(); err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}

	sessCtx := mongo.NewSessionContext(ctx, session)
	if err := fn(sessCtx); err != nil {
		_ = session.AbortTransaction(context.WithoutCancel(ctx))
		return MapWriteError(err)
	}

	if err := session.CommitTransaction(sessCtx); err != nil {
		_ = session.AbortTransaction(context.WithoutCancel(ctx))
		if mapped := MapWriteError(err); errors.Is(mapped, db.ErrVersionConflict) {
			return mapped
		}
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// MapWriteError turns server-side write conflicts into db.ErrVersionConflict
// and passes every other error through unchanged.
func MapWriteError(err error) error {
	if err == nil || errors.Is(err, db.ErrVersionConflict) {
		return err
	}
	if IsWriteConflict(err) {
		return fmt.Errorf("%w: %v", db.ErrVersionConflict, err)
	}
	return err
}

func IsWriteConflict(err error) bool {
	var serverErr mongo.ServerError
	if !errors.As(err, &serverErr) {
		return false
	}
	return serverErr.HasErrorCode(writeConflictCode) || serverErr.HasErrorLabel("TransientTransactionError")
}

// WithTimeout bounds ctx unless it is a session context, which must be passed
// through untouched to keep the operation inside its transaction.
func WithTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if !hasDeadline {
		return context.WithTimeout(ctx, timeout)
	}

	remaining := time.Until(deadline)
	if remaining < timeout {
		return context.WithTimeout(ctx, remaining)
	}

	return context.WithTimeout(ctx, timeout)
}
