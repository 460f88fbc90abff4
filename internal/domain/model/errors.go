package model

import "errors"

// Sentinel kinds for item input errors.
var (
	ErrInvalidItem = errors.New("invalid item")
	ErrInvalidBody = errors.New("invalid request body")
)
