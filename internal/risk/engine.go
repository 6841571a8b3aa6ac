package risk

import (
	"sync/atomic"

	"marketspread/internal/schema"

	"github.com/shopspring/decimal"
)

var bpsDenominator = decimal.NewFromInt(10_000)

// Config defines the pre-trade limits. Zero values disable a limit; the spread
// halt carried by the snapshot is always enforced.
type Config struct {
	Version              uint16
	KillSwitch           bool
	MaxOrderQty          decimal.Decimal
	MaxOrderNotional     decimal.Decimal
	MaxPriceDeviationBps int64
}

// Engine evaluates orders against a market snapshot.
type Engine struct {
	cfg atomic.Pointer[Config]
}

// NewEngine creates a risk engine with the given limits.
func NewEngine(cfg Config) *Engine {
	e := &Engine{}
	e.cfg.Store(&cfg)
	return e
}

// Config returns the limits currently in force.
func (e *Engine) Config() Config {
	return *e.cfg.Load()
}

// Update swaps the limits and reports whether they were applied. A config whose
// non-zero Version is older than the current one is ignored. In-flight
// evaluations finish with the limits they loaded.
func (e *Engine) Update(cfg Config) bool {
	for {
		cur := e.cfg.Load()
		if cfg.Version != 0 && cfg.Version < cur.Version {
			return false
		}
		if e.cfg.CompareAndSwap(cur, &cfg) {
			return true
		}
	}
}

// Evaluate returns the first failed check, or schema.RejectReasonNone.
func (e *Engine) Evaluate(order schema.Order, snap schema.QuoteSnapshot) schema.RejectReason {
	cfg := e.cfg.Load()

	if snap.HaltNewOrders {
		return schema.RejectReasonSpreadHalt
	}

	if cfg.KillSwitch {
		return schema.RejectReasonKillSwitch
	}

	if cfg.MaxOrderQty.IsPositive() && order.Quantity.GreaterThan(cfg.MaxOrderQty) {
		return schema.RejectReasonMaxQty
	}

	if cfg.MaxOrderNotional.IsPositive() {
		notional := order.Price.Mul(order.Quantity).Abs()
		if notional.GreaterThan(cfg.MaxOrderNotional) {
			return schema.RejectReasonMaxNotional
		}
	}

	if cfg.MaxPriceDeviationBps > 0 && exceedsDeviation(order.Price, snap.Mid, cfg.MaxPriceDeviationBps) {
		return schema.RejectReasonPriceBand
	}

	return schema.RejectReasonNone
}

func exceedsDeviation(price, ref decimal.Decimal, bps int64) bool {
	if !price.IsPositive() || !ref.IsPositive() {
		return false
	}
	diff := price.Sub(ref).Abs()
	return diff.Mul(bpsDenominator).GreaterThan(ref.Mul(decimal.NewFromInt(bps)))
}
