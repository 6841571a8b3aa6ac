package exception

import "errors"

var (
	ErrClassifyUnknownType          = errors.New("classify: unknown message type")
	ErrClassifyMissingRequiredField = errors.New("classify: missing required field")
)
