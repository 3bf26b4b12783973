package domain

import "errors"

var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrDuplicateID          = errors.New("notification id already exists")
	ErrMissingID            = errors.New("notification id is required")
	ErrMissingTitle         = errors.New("notification title is required")
	ErrInvalidType          = errors.New("invalid notification type")
	ErrInvalidCategory      = errors.New("invalid notification category")
	ErrInvalidChannel       = errors.New("invalid notification channel")
	ErrInvalidFilter        = errors.New("invalid notification filter")
)
