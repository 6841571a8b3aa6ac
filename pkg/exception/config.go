package exception

import "errors"

// Config errors
var (
	ErrConfigInvalidThreshold = errors.New("config: spread threshold must be > 0")
	ErrConfigUnknownSink      = errors.New("config: unknown sink driver")
	ErrConfigInvalidDecimal   = errors.New("config: invalid decimal")
	ErrConfigInvalidLimit     = errors.New("config: invalid risk limit")
)
