package domain

import "errors"

var (
	// ErrNotFound signals a lookup of an unknown crop or farm id.
	ErrNotFound = errors.New("not found")

	// ErrInvalidProfile signals a farm that carries neither a soil type nor
	// a pH level, leaving nothing to score against reference ranges.
	ErrInvalidProfile = errors.New("invalid farm profile")

	// ErrInvalidInput signals a weather profile with physically impossible
	// values.
	ErrInvalidInput = errors.New("invalid input")
)
