// Package migrations holds the SQL schema of the session store
package migrations

import "embed"

// FS contains every migration file, applied in file name order
//
//go:embed *.sql
var FS embed.FS
