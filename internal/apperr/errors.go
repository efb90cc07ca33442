// Package apperr holds the sentinel errors shared by the content store and its transports.
package apperr

import "errors"

var (
	ErrInvalid  = errors.New("invalid input")
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)
