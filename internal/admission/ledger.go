package admission

import (
	"sync"

	"marketspread/internal/schema"
	"marketspread/pkg/exception"
	"marketspread/pkg/shard"
)

// Ledger is the dedup ledger: every order id it has seen, with its admission state.
// Ids are striped over independently locked shards.
type Ledger struct {
	shards []ledgerShard
}

type ledgerShard struct {
	mu     sync.Mutex
	orders map[string]*schema.OrderRecord
}

// NewLedger creates an empty ledger.
func NewLedger(shards int) *Ledger {
	n := shard.Count(shards)
	l := &Ledger{shards: make([]ledgerShard, n)}
	for i := range l.shards {
		l.shards[i].orders = make(map[string]*schema.OrderRecord)
	}
	return l
}

// Reserve inserts rec as Pending. It fails with exception.ErrDuplicateOrder
// when the id is already known, leaving the existing entry untouched.
func (l *Ledger) Reserve(rec schema.OrderRecord) error {
	sh := l.shard(rec.OrderID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	if _, ok := sh.orders[rec.OrderID]; ok {
		return exception.ErrDuplicateOrder
	}
	rec.Status = schema.OrderStatusPending
	rec.Reason = schema.RejectReasonNone
	sh.orders[rec.OrderID] = &rec
	return nil
}

// Finalize moves a Pending entry to a terminal status, exactly once.
func (l *Ledger) Finalize(orderID string, status schema.OrderStatus, reason schema.RejectReason) (schema.OrderRecord, error) {
	if !status.IsTerminal() {
		return schema.OrderRecord{}, exception.ErrInvalidTransition
	}

	sh := l.shard(orderID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	rec, ok := sh.orders[orderID]
	if !ok {
		return schema.OrderRecord{}, exception.ErrOrderNotFound
	}
	if rec.Status != schema.OrderStatusPending {
		return *rec, exception.ErrInvalidTransition
	}
	rec.Status = status
	rec.Reason = reason
	return *rec, nil
}

// Record returns a copy of the entry for orderID.
func (l *Ledger) Record(orderID string) (schema.OrderRecord, error) {
	sh := l.shard(orderID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	rec, ok := sh.orders[orderID]
	if !ok {
		return schema.OrderRecord{}, exception.ErrOrderNotFound
	}
	return *rec, nil
}

// Len returns the number of known order ids.
func (l *Ledger) Len() int {
	n := 0
	for i := range l.shards {
		sh := &l.shards[i]
		sh.mu.Lock()
		n += len(sh.orders)
		sh.mu.Unlock()
	}
	return n
}

// Counts returns the number of entries per status.
func (l *Ledger) Counts() map[schema.OrderStatus]int {
	out := make(map[schema.OrderStatus]int, 3)
	for i := range l.shards {
		sh := &l.shards[i]
		sh.mu.Lock()
		for _, rec := range sh.orders {
			out[rec.Status]++
		}
		sh.mu.Unlock()
	}
	return out
}

func (l *Ledger) shard(orderID string) *ledgerShard {
	return &l.shards[shard.Index(orderID, len(l.shards))]
}
