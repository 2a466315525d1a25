package grid

import "errors"

var (
	ErrOpen         = errors.New("cannot open grid container")
	ErrUnrecognized = errors.New("unrecognized grid container")
	ErrNotFound     = errors.New("grid not found")
	ErrDecode       = errors.New("grid decode failure")
)
