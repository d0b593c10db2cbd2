// Copyright (c) 2026 Novika. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors.
//
// # Classification
//
// Two SQLSTATE classes matter to the catalog engine:
//
//   - no rows: the queried record does not exist (or is retired and
//     therefore invisible to live-scoped queries) — mapped to NOT_FOUND.
//   - 23505 unique_violation: the storage-level backstop for the
//     check-then-act race fired; translated into the same CONFLICT shape as
//     the application-level pre-check so racing editors see a friendly
//     duplicate error instead of an infrastructure fault.
//
// Everything else is an infrastructure failure and becomes INTERNAL_ERROR.
package dberr

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/taibuivan/novika/internal/platform/apperr"
)

var (
	// ErrNotFound is a standard error returned when a queried row doesn't exist.
	ErrNotFound = apperr.NotFound("Resource")
)

// Wrap inspects a database error and wraps it into a meaningful [apperr.AppError].
// It hides internal database details from the client while classifying the error type.
func Wrap(err error, action string) error {
	if err == nil {
		return nil
	}

	// 1. Not Found mapping
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}

	// 2. Unique-constraint backstop: report as a duplicate, not a fault.
	if IsUniqueViolation(err) {
		return apperr.Conflict("A record with the same identifying value already exists")
	}

	// 3. Unknown query errors become Internal Server Errors
	return apperr.Internal(err)
}

// IsUniqueViolation reports whether err is a Postgres 23505 unique_violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
