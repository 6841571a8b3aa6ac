package admission

import (
	"marketspread/internal/risk"
	"marketspread/internal/schema"
)

// SnapshotReader is the read side of the market store.
type SnapshotReader interface {
	ReadSnapshot(symbol string) (schema.QuoteSnapshot, error)
}

// Engine decides whether new orders are accepted.
type Engine struct {
	ledger *Ledger
	market SnapshotReader
	risk   *risk.Engine
}

// NewEngine wires the engine to its ledger, market view and risk limits.
func NewEngine(market SnapshotReader, riskEngine *risk.Engine, ledger *Ledger) *Engine {
	if ledger == nil {
		ledger = NewLedger(0)
	}
	if riskEngine == nil {
		riskEngine = risk.NewEngine(risk.Config{})
	}
	return &Engine{
		ledger: ledger,
		market: market,
		risk:   riskEngine,
	}
}

// Ledger exposes the dedup ledger for read-back.
func (e *Engine) Ledger() *Ledger {
	return e.ledger
}

// UpdateRisk swaps the risk limits used by later decisions. It reports false
// when cfg is older than the limits in force.
func (e *Engine) UpdateRisk(cfg risk.Config) bool {
	return e.risk.Update(cfg)
}

// Risk returns the risk limits in force.
func (e *Engine) Risk() risk.Config {
	return e.risk.Config()
}

// Admit evaluates one order. The order id is reserved before the market is
// read, so of several concurrent orders sharing an id exactly one is evaluated
// and the rest are rejected as duplicates.
func (e *Engine) Admit(order schema.Order) schema.Decision {
	rec := schema.NewOrderRecord(order)
	if err := e.ledger.Reserve(rec); err != nil {
		rec.Status = schema.OrderStatusRejected
		rec.Reason = schema.RejectReasonDuplicateOrder
		return schema.Decision{Record: rec}
	}

	snap, err := e.market.ReadSnapshot(order.Symbol)
	if err != nil {
		return e.finalize(rec, schema.RejectReasonNoMarket, nil)
	}

	return e.finalize(rec, e.risk.Evaluate(order, snap), &snap)
}

func (e *Engine) finalize(rec schema.OrderRecord, reason schema.RejectReason, snap *schema.QuoteSnapshot) schema.Decision {
	status := schema.OrderStatusAccepted
	if reason != schema.RejectReasonNone {
		status = schema.OrderStatusRejected
	}

	final, err := e.ledger.Finalize(rec.OrderID, status, reason)
	if err != nil {
		// only the reserving call finalizes an id
		rec.Status = status
		rec.Reason = reason
		final = rec
	}
	return schema.Decision{Record: final, Snapshot: snap}
}
