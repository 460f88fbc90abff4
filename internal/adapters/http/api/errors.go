package api

import "errors"

// ErrUnsupportedMedia is returned for request bodies that are not JSON.
var ErrUnsupportedMedia = errors.New("content type must be application/json")
