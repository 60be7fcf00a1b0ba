// Package migrations embeds the PostgreSQL schema migrations.
package migrations

import "embed"

// FS holds every *.sql migration, named <version>_<name>.<up|down>.sql
//
//go:embed *.sql
var FS embed.FS
