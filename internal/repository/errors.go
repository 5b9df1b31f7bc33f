// Package repository implements the MySQL-backed persistence layer for
// users, refresh tokens, craftsman profiles and ratings. Sentinel errors
// defined here are shared across repositories so handlers can translate
// failure classes into HTTP statuses without string matching.
package repository

import "errors"

// ErrConflict is returned when an insert or update collides with existing
// state, such as creating a second profile for the same user. Handlers
// translate it into HTTP 409.
var ErrConflict = errors.New("conflict")
