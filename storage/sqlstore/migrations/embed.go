// Package migrations embeds the SQL migration files for each supported dialect.
package migrations

import "embed"

// FS contains all SQL migration files embedded at compile time, one
// directory per dialect.
//
//go:embed sqlite/*.sql mysql/*.sql
var FS embed.FS
