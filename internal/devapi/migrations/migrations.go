// Package migrations embeds the goose migrations of the development API
// database.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
