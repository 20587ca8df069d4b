// Package migrations embeds the archive schema migrations for each
// supported database.
package migrations

import "embed"

//go:embed sqlite/*.sql postgres/*.sql
var FS embed.FS
