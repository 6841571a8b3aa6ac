package obs

import (
	"sync/atomic"
	"time"
)

// Sequence hands out monotonically increasing record numbers.
type Sequence struct {
	next atomic.Uint64
}

// NewSequence returns a sequence starting after seed. A zero seed uses the wall clock.
func NewSequence(seed uint64) *Sequence {
	if seed == 0 {
		seed = uint64(time.Now().UTC().UnixNano())
	}
	s := &Sequence{}
	s.next.Store(seed)
	return s
}

// Next returns the next number.
func (s *Sequence) Next() uint64 {
	if s == nil {
		return 0
	}
	return s.next.Add(1)
}
