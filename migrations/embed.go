// Package migrations carries the schema scripts applied by cmd/migrate and,
// when enabled, by the server at startup.
package migrations

import "embed"

// FS holds the versioned migration scripts
//
//go:embed *.sql
var FS embed.FS
