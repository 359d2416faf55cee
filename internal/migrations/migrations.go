// Package migrations embeds the PostgreSQL schema migrations.
package migrations

import "embed"

// FS holds the *.sql migration files
//
//go:embed *.sql
var FS embed.FS

// Dir is the directory inside FS that holds the migrations
const Dir = "."
