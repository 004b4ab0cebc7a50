package services

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"quill/internal/logging"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const maxTxAttempts = 3

var txLog = logging.New("tx")

// RunInTransaction runs fn inside one transaction and reruns it when the
// database reports a serialization failure, a deadlock or a lost unique-key
// race. fn must only touch the database through tx.
func RunInTransaction(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	var opts []*sql.TxOptions
	if db.Dialector.Name() == "postgres" {
		opts = append(opts, &sql.TxOptions{Isolation: sql.LevelSerializable})
	}

	var err error
	for attempt := 1; attempt <= maxTxAttempts; attempt++ {
		err = db.WithContext(ctx).Transaction(fn, opts...)
		if err == nil || !isRetryable(err) {
			return err
		}
		txLog.Warn("transaction conflict, retrying", slog.Int("attempt", attempt), slog.Any("error", err))
	}
	return err
}

func isRetryable(err error) bool {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01": // serialization_failure, deadlock_detected
			return true
		}
	}
	return false
}

// forUpdate row-locks the next query on postgres. SQLite serializes writers
// on its own and its dialect drops the clause.
func forUpdate(tx *gorm.DB) *gorm.DB {
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// isOwner guards every update and delete of a post or comment.
func isOwner(ownerID, callerID string) bool {
	return ownerID != "" && ownerID == callerID
}
