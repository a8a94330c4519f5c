package repository

import (
	"context"

	"gorm.io/gorm"
)

// txCtxKey marks the *gorm.DB of an open unit of work inside a context.
type txCtxKey struct{}

// TransactionManager groups repository calls into one unit of work, such as
// a quote with its items or a lead status change with its history row.
type TransactionManager interface {
	// RunInTx commits when fn returns nil and rolls back otherwise. Calls
	// nested under an open unit of work join it instead of opening another.
	RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error
}

type transactionManager struct {
	db *gorm.DB
}

func NewTransactionManager(db *gorm.DB) TransactionManager {
	return &transactionManager{db: db}
}

func (t *transactionManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	if _, open := txFrom(ctx); open {
		return fn(ctx)
	}
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txCtxKey{}, tx))
	})
}

func txFrom(ctx context.Context) (*gorm.DB, bool) {
	tx, ok := ctx.Value(txCtxKey{}).(*gorm.DB)
	return tx, ok
}

// GetDB is how every repository method reaches the database: the open unit
// of work when ctx carries one, rootDB otherwise.
func GetDB(ctx context.Context, rootDB *gorm.DB) *gorm.DB {
	if tx, ok := txFrom(ctx); ok {
		return tx.WithContext(ctx)
	}
	return rootDB.WithContext(ctx)
}
