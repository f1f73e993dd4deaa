package domain

import "errors"

var (
	ErrNegativeLimit = errors.New("limit must be non-negative")
)
