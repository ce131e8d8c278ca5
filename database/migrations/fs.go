// Package migrations holds the database schema as embedded goose
// migrations, applied automatically on startup.
package migrations

import "embed"

// FS contains the SQL migration files.
//
//go:embed *.sql
var FS embed.FS
