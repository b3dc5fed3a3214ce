// Package migrations holds the SQL schema for the fluentz database and
// applies it in filename order.
package migrations

import "embed"

// FS contains the *.sql migration files.
//
//go:embed *.sql
var FS embed.FS
