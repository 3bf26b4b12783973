package domain

import "errors"

var (
	ErrInvalidCredentials = errors.New("email and password are required")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrInvalidRole        = errors.New("invalid role")
	ErrInvalidGoogleToken = errors.New("invalid google token")
	ErrUnauthorized       = errors.New("unauthorized action")
)
