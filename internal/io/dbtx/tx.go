// Package dbtx carries an in-flight pgx transaction on a context.Context
// so that a decorator (internal/io/history) and the repository it wraps
// (internal/io/taxon) can share a single commit without the
// pkg/taxon.Repository interface itself growing a transaction parameter.
package dbtx

import (
	"context"

	"github.com/jackc/pgx/v5"
)

type txKey struct{}

// WithTx returns a context carrying tx, overriding any transaction
// already present.
func WithTx(ctx context.Context, tx pgx.Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// FromContext returns the transaction carried by ctx, if any.
func FromContext(ctx context.Context) (pgx.Tx, bool) {
	tx, ok := ctx.Value(txKey{}).(pgx.Tx)
	return tx, ok
}
