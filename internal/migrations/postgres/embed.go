// Package pgmigrations embeds the PostgreSQL schema migrations applied by
// the repository manager through goose.
package pgmigrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
