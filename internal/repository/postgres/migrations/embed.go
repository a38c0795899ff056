// Package migrations holds the Postgres schema for tasks.
package migrations

import "embed"

// FS contains the numbered *.up.sql and *.down.sql files.
//
//go:embed *.sql
var FS embed.FS
