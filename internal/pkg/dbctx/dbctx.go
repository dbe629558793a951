package dbctx

import (
	"context"

	"gorm.io/gorm"
)

// Context bundles a request context with an optional GORM transaction.
type Context struct {
	Ctx context.Context
	Tx  *gorm.DB
}

// New wraps ctx without a transaction.
func New(ctx context.Context) Context {
	return Context{Ctx: ctx}
}

// DB returns the transaction when one is set, otherwise fallback, bound to
// the context.
func (c Context) DB(fallback *gorm.DB) *gorm.DB {
	tx := c.Tx
	if tx == nil {
		tx = fallback
	}
	ctx := c.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	return tx.WithContext(ctx)
}

// WithTx returns a copy of c bound to tx.
func (c Context) WithTx(tx *gorm.DB) Context {
	return Context{Ctx: c.Ctx, Tx: tx}
}

// FindIn loads the rows of T whose column matches one of values. An empty
// values slice returns no rows without touching the database.
func FindIn[T any, V any](dbc Context, db *gorm.DB, column string, values []V, order string) ([]*T, error) {
	out := []*T{}
	if len(values) == 0 {
		return out, nil
	}
	q := dbc.DB(db).Where(column+" IN ?", values)
	if order != "" {
		q = q.Order(order)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
