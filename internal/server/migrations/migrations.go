// Package migrations embeds the goose SQL migrations for the release data
// schema.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
