// Package sqlitemigrations embeds the SQLite schema migrations applied by
// the repository manager through goose.
package sqlitemigrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
