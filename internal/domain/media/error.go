package media

import "errors"

var (
	ErrNotFound    = errors.New("image not found")
	ErrEmptyUpload = errors.New("empty upload")
	ErrInvalidKey  = errors.New("invalid image key")
	ErrTooLarge    = errors.New("image too large")
)
