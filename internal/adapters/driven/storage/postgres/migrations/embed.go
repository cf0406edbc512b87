// Package migrations holds the versioned Postgres schema.
package migrations

import "embed"

// FS contains the NNN_name.up.sql and NNN_name.down.sql files.
//
//go:embed *.sql
var FS embed.FS
