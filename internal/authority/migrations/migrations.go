// Package migrations embeds the goose migration scripts for the authority
// PostgreSQL schema.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
