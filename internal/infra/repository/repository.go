// Package repository implements the write-side persistence ports over
// PostgreSQL. Every repository operates on a db.DBTX so the same code runs
// inside a transaction or on the pool.
package repository

import (
	sq "github.com/Masterminds/squirrel"
)

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
