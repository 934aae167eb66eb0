package common

import "errors"

var (
	// repository specific errors
	ErrorNotFound = errors.New("not found")

	// token specific errors
	ErrInvalidToken = errors.New("invalid token")
)
