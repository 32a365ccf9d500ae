package db

import "errors"

// ErrNotFound wraps pgx.ErrNoRows at the query layer so handlers can map
// missing rows to 404 without importing pgx.
var ErrNotFound = errors.New("not found")
