// Package apperr defines the sentinel error taxonomy shared across the app.
package apperr

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrAlreadyExists    = errors.New("already exists")
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidArchive   = errors.New("invalid archive")
	ErrVaultLocked      = errors.New("vault locked")
)
