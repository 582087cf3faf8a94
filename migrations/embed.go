// Package migrations carries the versioned schema as an embedded filesystem
// so the server and the migrate CLI never depend on the working directory.
package migrations

import "embed"

// FS holds every *.up.sql and *.down.sql file in this directory.
//
//go:embed *.sql
var FS embed.FS
