// Package migrations embeds SQL migration files for the SQLite store.
package migrations

import "embed"

// FS contains the numbered NNN_name.up.sql and .down.sql files.
//
//go:embed *.sql
var FS embed.FS
