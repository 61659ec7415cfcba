package database

import (
	"context"
	"errors"

	"github.com/felixgeelhaar/lessonboard/internal/shared/application"
)

var errNoTransaction = errors.New("no transaction in context")

type txKey struct{}

type txInfo struct {
	tx    Transaction
	owned bool
}

// ExecutorFromContext returns the transaction carried by ctx, or conn.
// Repositories run every statement through it so they join an open unit of
// work transparently.
func ExecutorFromContext(ctx context.Context, conn Connection) Executor {
	if info, ok := ctx.Value(txKey{}).(txInfo); ok && info.tx != nil {
		return info.tx
	}
	return conn
}

// UnitOfWork opens one transaction per outermost Begin. Nested Begin calls
// reuse it and leave commit and rollback to the owner.
type UnitOfWork struct {
	conn Connection
}

var _ application.UnitOfWork = (*UnitOfWork)(nil)

// NewUnitOfWork creates a unit of work over conn.
func NewUnitOfWork(conn Connection) *UnitOfWork {
	return &UnitOfWork{conn: conn}
}

// Begin starts a transaction unless ctx already carries one.
func (u *UnitOfWork) Begin(ctx context.Context) (context.Context, error) {
	if info, ok := ctx.Value(txKey{}).(txInfo); ok && info.tx != nil {
		return context.WithValue(ctx, txKey{}, txInfo{tx: info.tx}), nil
	}
	tx, err := u.conn.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	return context.WithValue(ctx, txKey{}, txInfo{tx: tx, owned: true}), nil
}

// Commit commits the transaction if this unit owns it.
func (u *UnitOfWork) Commit(ctx context.Context) error {
	info, ok := ctx.Value(txKey{}).(txInfo)
	if !ok {
		return errNoTransaction
	}
	if !info.owned {
		return nil
	}
	return info.tx.Commit(ctx)
}

// Rollback rolls back the transaction if this unit owns it.
func (u *UnitOfWork) Rollback(ctx context.Context) error {
	info, ok := ctx.Value(txKey{}).(txInfo)
	if !ok {
		return errNoTransaction
	}
	if !info.owned {
		return nil
	}
	return info.tx.Rollback(ctx)
}
