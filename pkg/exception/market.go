package exception

import "errors"

var (
	ErrSnapshotNotFound = errors.New("market: snapshot not found")
)
