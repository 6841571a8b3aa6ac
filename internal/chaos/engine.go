package chaos

import (
	"math/rand"
	"time"

	"marketspread/internal/bus"
	"marketspread/pkg/exception"

	"github.com/yanun0323/errors"
)

// Config controls chaos injection behavior.
type Config struct {
	Seed          int64
	DropRate      float64
	DuplicateRate float64
	ReorderWindow int
	MaxDelay      time.Duration
}

// Engine drops, duplicates, reorders and delays inbound records. With MaxDelay
// set, buffered records leave in delayed RecvTs order, otherwise in random order.
// It is not safe for concurrent use.
type Engine struct {
	cfg     Config
	rng     *rand.Rand
	pending []bus.Inbound
}

// NewEngine creates a chaos engine with validation.
func NewEngine(cfg Config) (*Engine, error) {
	if cfg.ReorderWindow <= 0 {
		cfg.ReorderWindow = 1
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UTC().UnixNano()
	}
	return &Engine{
		cfg: cfg,
		rng: rand.New(rand.NewSource(cfg.Seed)),
	}, nil
}

// Validate ensures the config is within supported ranges.
func (c Config) Validate() error {
	if c.DropRate < 0 || c.DropRate > 1 {
		return errors.Wrapf(exception.ErrInvalidArgument, "dropRate must be between 0 and 1, got %v", c.DropRate)
	}
	if c.DuplicateRate < 0 || c.DuplicateRate > 1 {
		return errors.Wrapf(exception.ErrInvalidArgument, "duplicateRate must be between 0 and 1, got %v", c.DuplicateRate)
	}
	if c.ReorderWindow <= 0 {
		return errors.Wrapf(exception.ErrInvalidArgument, "reorderWindow must be >= 1, got %d", c.ReorderWindow)
	}
	if c.MaxDelay < 0 {
		return errors.Wrapf(exception.ErrInvalidArgument, "maxDelay must be >= 0, got %s", c.MaxDelay)
	}
	return nil
}

// Process applies chaos to a single record and returns the records to emit now.
func (e *Engine) Process(in bus.Inbound) []bus.Inbound {
	if e == nil {
		return []bus.Inbound{in}
	}
	if e.shouldDrop() {
		return nil
	}
	in = e.applyDelay(in)
	if e.cfg.ReorderWindow <= 1 {
		return e.applyDuplicate(in)
	}
	e.pending = append(e.pending, in)
	if len(e.pending) < e.cfg.ReorderWindow {
		return nil
	}
	return e.applyDuplicate(e.take())
}

// Flush returns any buffered records after processing completes.
func (e *Engine) Flush() []bus.Inbound {
	if e == nil || len(e.pending) == 0 {
		return nil
	}
	out := make([]bus.Inbound, 0, len(e.pending))
	for len(e.pending) > 0 {
		out = append(out, e.applyDuplicate(e.take())...)
	}
	return out
}

func (e *Engine) take() bus.Inbound {
	idx := 0
	if e.cfg.MaxDelay > 0 {
		for i := 1; i < len(e.pending); i++ {
			if e.pending[i].RecvTs < e.pending[idx].RecvTs {
				idx = i
			}
		}
	} else {
		idx = e.rng.Intn(len(e.pending))
	}
	in := e.pending[idx]
	e.pending = append(e.pending[:idx], e.pending[idx+1:]...)
	return in
}

func (e *Engine) shouldDrop() bool {
	return e.cfg.DropRate > 0 && e.rng.Float64() < e.cfg.DropRate
}

func (e *Engine) applyDuplicate(in bus.Inbound) []bus.Inbound {
	out := []bus.Inbound{in}
	if e.cfg.DuplicateRate > 0 && e.rng.Float64() < e.cfg.DuplicateRate {
		out = append(out, in)
	}
	return out
}

func (e *Engine) applyDelay(in bus.Inbound) bus.Inbound {
	maxDelay := e.cfg.MaxDelay.Nanoseconds()
	if maxDelay <= 0 || in.RecvTs <= 0 {
		return in
	}
	in.RecvTs += e.rng.Int63n(maxDelay + 1)
	return in
}
