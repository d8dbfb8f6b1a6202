// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store is the persistence layer. Each store wraps a *sql.DB and
// owns the queries for one table. Lookups return (nil, nil) when the row
// does not exist.
package store

import (
	"database/sql"
	"errors"
)

// ErrForbidden is returned when a caller tries to act on a blog it does
// not own.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a unique slug is already taken.
var ErrConflict = errors.New("already exists")

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// noRows reports whether err is sql.ErrNoRows.
func noRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
