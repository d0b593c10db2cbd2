// Copyright (c) 2026 Novika. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package drift degrades live-record filters gracefully while the database
schema is mid-migration.

Every integrity check in the catalog filters on "retirement timestamp is
null". During a progressive schema rollout the retirement column may not
exist yet on every table; instead of failing those queries outright, the
guard drops the predicate for the affected table and treats every row as
live. This is a deliberate resilience policy — availability over strict
invariant enforcement inside the migration window — not a correctness
guarantee.

# Capability Probe

The column inventory is probed once at startup from information_schema and
cached for the process lifetime, avoiding a failed-query round-trip on every
check. A table that gains the column only becomes visible to the guard after
a restart, which is acceptable: rollouts restart the fleet anyway.
*/
package drift

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
)

// RetirementColumn is the soft-retirement marker column every catalog table
// is expected to carry once fully migrated.
const RetirementColumn = "retiredat"

// Guard answers whether a table's retirement column is available and builds
// the matching SQL predicate.
//
// # Concurrency
//
// The capability map is written once at construction and only read
// afterwards, so a Guard is safe for concurrent use without locking.
type Guard struct {
	hasRetirement map[string]bool
	logger        *slog.Logger
}

// New constructs a Guard from a pre-computed capability map
// (schema-qualified table name → retirement column present).
//
// Intended for tests and for wiring fakes; production code uses [Probe].
func New(hasRetirement map[string]bool, logger *slog.Logger) *Guard {
	if logger == nil {
		logger = slog.Default()
	}
	return &Guard{hasRetirement: hasRetirement, logger: logger}
}

// Probe inspects information_schema once and returns a Guard covering the
// given schema-qualified tables.
//
// Tables missing the retirement column are logged at WARN so the degraded
// window is visible in operations.
func Probe(ctx context.Context, pool *pgxpool.Pool, logger *slog.Logger, tables ...string) (*Guard, error) {
	query := `
		SELECT table_schema || '.' || table_name
		FROM information_schema.columns
		WHERE column_name = $1
	`

	rows, err := pool.Query(ctx, query, RetirementColumn)
	if err != nil {
		return nil, fmt.Errorf("drift: capability probe failed: %w", err)
	}
	defer rows.Close()

	migrated := make(map[string]bool)
	for rows.Next() {
		var table string
		if err := rows.Scan(&table); err != nil {
			return nil, fmt.Errorf("drift: capability probe scan failed: %w", err)
		}
		migrated[table] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("drift: capability probe failed: %w", err)
	}

	hasRetirement := make(map[string]bool, len(tables))
	for _, table := range tables {
		hasRetirement[table] = migrated[table]
		if !migrated[table] {
			logger.Warn("schema_drift_degraded",
				slog.String("table", table),
				slog.String("column", RetirementColumn),
			)
		}
	}

	return &Guard{hasRetirement: hasRetirement, logger: logger}, nil
}

// HasRetirement reports whether the table carries the retirement column.
//
// Unknown tables are assumed migrated: the guard only ever loosens filters
// for tables it has positively observed as lagging.
func (g *Guard) HasRetirement(table string) bool {
	migrated, known := g.hasRetirement[table]
	if !known {
		return true
	}
	return migrated
}

// Live returns the SQL predicate selecting live (non-retired) rows of table,
// or the always-true predicate when the retirement column is missing and
// every row must be treated as live.
//
// The result is a complete boolean expression, safe to place after WHERE or
// AND without further quoting.
func (g *Guard) Live(table string) string {
	return g.LiveAlias(table, "")
}

// LiveAlias is [Guard.Live] with a table alias prefix for joined queries.
func (g *Guard) LiveAlias(table, alias string) string {
	if !g.HasRetirement(table) {
		return "TRUE"
	}
	if alias != "" {
		return fmt.Sprintf("%s.%s IS NULL", alias, RetirementColumn)
	}
	return fmt.Sprintf("%s IS NULL", RetirementColumn)
}
