// Package repository runs the SQL behind every service.
//
// Queries use pgx named arguments and scan rows with pgx.RowToStructByName.
// Missing rows are returned wrapped with sqlerr.WithTable so the error
// handler can say which entity was not found.
package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrFlowNotEmpty is returned when deleting a flow that still holds tasks.
var ErrFlowNotEmpty = errors.New("flow still has tasks")

// inTx runs fn in a transaction, committing when fn returns nil.
func inTx(ctx context.Context, pool *pgxpool.Pool, fn func(tx pgx.Tx) error) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds an ILIKE pattern matching s anywhere, with the
// wildcards typed by the user taken literally. Queries using it must
// declare ESCAPE '\'.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}
