package market

import (
	"sort"
	"sync"
	"sync/atomic"

	"marketspread/internal/schema"
	"marketspread/pkg/exception"
	"marketspread/pkg/shard"

	"github.com/shopspring/decimal"
)

// DefaultSpreadThreshold halts new orders once offer - bid reaches 0.05.
var DefaultSpreadThreshold = decimal.New(5, -2)

// Config controls store sizing and the halt threshold. A zero or negative
// SpreadThreshold falls back to DefaultSpreadThreshold.
type Config struct {
	SpreadThreshold decimal.Decimal
	Shards          int
}

// Store keeps the latest quote snapshot per symbol.
//
// Symbols are striped over shards whose lock only guards membership. Each
// symbol owns an atomic pointer to an immutable snapshot, so a reader always
// sees a whole snapshot and updates to different symbols never contend.
type Store struct {
	shards    []storeShard
	threshold atomic.Pointer[decimal.Decimal]
}

type storeShard struct {
	mu      sync.RWMutex
	symbols map[string]*atomic.Pointer[schema.QuoteSnapshot]
}

// NewStore creates an empty store.
func NewStore(cfg Config) *Store {
	n := shard.Count(cfg.Shards)
	s := &Store{shards: make([]storeShard, n)}
	for i := range s.shards {
		s.shards[i].symbols = make(map[string]*atomic.Pointer[schema.QuoteSnapshot])
	}
	threshold := cfg.SpreadThreshold
	if threshold.Sign() <= 0 {
		threshold = DefaultSpreadThreshold
	}
	s.threshold.Store(&threshold)
	return s
}

// SpreadThreshold returns the threshold applied to new quotes.
func (s *Store) SpreadThreshold() decimal.Decimal {
	return *s.threshold.Load()
}

// SetSpreadThreshold replaces the threshold, which must be positive. Existing snapshots keep the halt
// flag computed when their quote arrived.
func (s *Store) SetSpreadThreshold(threshold decimal.Decimal) error {
	if threshold.Sign() <= 0 {
		return exception.ErrInvalidArgument
	}
	s.threshold.Store(&threshold)
	return nil
}

// UpdateQuote replaces the snapshot of the quote's symbol and returns it.
func (s *Store) UpdateQuote(q schema.Quote) schema.QuoteSnapshot {
	slot := s.slot(q.Symbol)
	threshold := s.SpreadThreshold()
	for {
		prev := slot.Load()
		var seq uint64 = 1
		if prev != nil {
			seq = prev.Seq + 1
		}
		next := schema.NewQuoteSnapshot(q, threshold, seq)
		if slot.CompareAndSwap(prev, &next) {
			return next
		}
	}
}

// ReadSnapshot returns the latest snapshot of symbol, or
// exception.ErrSnapshotNotFound when no quote has been seen for it.
func (s *Store) ReadSnapshot(symbol string) (schema.QuoteSnapshot, error) {
	sh := &s.shards[shard.Index(symbol, len(s.shards))]
	sh.mu.RLock()
	slot := sh.symbols[symbol]
	sh.mu.RUnlock()
	if slot == nil {
		return schema.QuoteSnapshot{}, exception.ErrSnapshotNotFound
	}
	snap := slot.Load()
	if snap == nil {
		return schema.QuoteSnapshot{}, exception.ErrSnapshotNotFound
	}
	return *snap, nil
}

// Len returns the number of symbols with a snapshot.
func (s *Store) Len() int {
	n := 0
	for i := range s.shards {
		sh := &s.shards[i]
		sh.mu.RLock()
		for _, slot := range sh.symbols {
			if slot.Load() != nil {
				n++
			}
		}
		sh.mu.RUnlock()
	}
	return n
}

// Symbols returns every symbol with a snapshot, sorted.
func (s *Store) Symbols() []string {
	out := make([]string, 0)
	for i := range s.shards {
		sh := &s.shards[i]
		sh.mu.RLock()
		for symbol, slot := range sh.symbols {
			if slot.Load() != nil {
				out = append(out, symbol)
			}
		}
		sh.mu.RUnlock()
	}
	sort.Strings(out)
	return out
}

func (s *Store) slot(symbol string) *atomic.Pointer[schema.QuoteSnapshot] {
	sh := &s.shards[shard.Index(symbol, len(s.shards))]
	sh.mu.RLock()
	slot := sh.symbols[symbol]
	sh.mu.RUnlock()
	if slot != nil {
		return slot
	}

	sh.mu.Lock()
	defer sh.mu.Unlock()
	slot = sh.symbols[symbol]
	if slot == nil {
		slot = new(atomic.Pointer[schema.QuoteSnapshot])
		sh.symbols[symbol] = slot
	}
	return slot
}
