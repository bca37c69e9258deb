// Package migrations embeds the goose migration files for the run catalog.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
