package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound    = errors.New("item not found")
	ErrInvalidID   = errors.New("invalid item id")
	ErrUnavailable = errors.New("store unavailable")
	ErrClosed      = errors.New("store closed")
)
