package exception

import "errors"

var (
	ErrDecodeEmpty          = errors.New("decode: empty input")
	ErrDecodeMalformedToken = errors.New("decode: malformed token")
)
