package domain

import "errors"

var (
	ErrInvalidKey   = errors.New("invalid storage key")
	ErrInvalidImage = errors.New("unsupported or corrupt image")
	ErrNotExist     = errors.New("file does not exist")
)

// File describes a stored object.
type File struct {
	Key         string `json:"key"`
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}
