package auth

import "errors"

var (
	ErrInvalidPassword = errors.New("invalid password")
	ErrNotConfigured   = errors.New("login password is not configured")
)
