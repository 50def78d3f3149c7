package postgres

import "github.com/Masterminds/squirrel"

// Builder returns a squirrel statement builder using PostgreSQL placeholders.
func Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// LockKey returns SQL that takes a transaction-scoped advisory lock on the
// hashed value of its single text argument.
const LockKey = `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`
