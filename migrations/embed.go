// Package migrations holds the goose SQL migrations for the engine's tables.
package migrations

import "embed"

// FS contains the embedded PostgreSQL migrations.
//
//go:embed *.sql
var FS embed.FS
