package domain

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrDuplicateEmail     = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrValidation         = errors.New("validation failed")
	ErrDecode             = errors.New("image could not be read")
	ErrConflict           = errors.New("concurrent modification")
	ErrStorageUnavailable = errors.New("storage unavailable")
)
