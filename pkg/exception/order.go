package exception

import "errors"

var (
	ErrOrderNotFound     = errors.New("order: not found")
	ErrDuplicateOrder    = errors.New("order: already exists")
	ErrInvalidTransition = errors.New("order: invalid state transition")
)
