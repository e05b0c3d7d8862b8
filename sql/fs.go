// Package sql embeds the record store schema migrations.
package sql

import "embed"

//go:embed schema/*.sql
var MigrationsFS embed.FS
