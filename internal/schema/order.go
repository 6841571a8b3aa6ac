package schema

import "github.com/shopspring/decimal"

// OrderStatus is the admission state of an order in the ledger.
type OrderStatus uint16

const (
	OrderStatusUnknown OrderStatus = iota
	OrderStatusPending
	OrderStatusAccepted
	OrderStatusRejected
)

func (s OrderStatus) String() string {
	switch s {
	case OrderStatusPending:
		return "pending"
	case OrderStatusAccepted:
		return "accepted"
	case OrderStatusRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// IsTerminal reports whether no further transition is allowed.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusAccepted || s == OrderStatusRejected
}

// RejectReason is a coarse reason code for a rejected order.
type RejectReason uint16

const (
	RejectReasonNone RejectReason = iota
	RejectReasonDuplicateOrder
	RejectReasonNoMarket
	RejectReasonSpreadHalt
	RejectReasonKillSwitch
	RejectReasonMaxQty
	RejectReasonMaxNotional
	RejectReasonPriceBand
)

// MaxRejectReason is the highest defined reason code.
const MaxRejectReason = RejectReasonPriceBand

func (r RejectReason) String() string {
	switch r {
	case RejectReasonNone:
		return "none"
	case RejectReasonDuplicateOrder:
		return "duplicate_order"
	case RejectReasonNoMarket:
		return "no_market"
	case RejectReasonSpreadHalt:
		return "spread_halt"
	case RejectReasonKillSwitch:
		return "kill_switch"
	case RejectReasonMaxQty:
		return "max_qty"
	case RejectReasonMaxNotional:
		return "max_notional"
	case RejectReasonPriceBand:
		return "price_band"
	default:
		return "unknown"
	}
}

// OrderRecord is the ledger's view of an order.
type OrderRecord struct {
	OrderID       string
	ClientID      string
	MessageID     string
	Symbol        string
	Side          OrderSide
	Quantity      decimal.Decimal
	Price         decimal.Decimal
	SubmittedTime string
	Status        OrderStatus
	Reason        RejectReason
}

// NewOrderRecord builds a pending record from an order message.
func NewOrderRecord(o Order) OrderRecord {
	return OrderRecord{
		OrderID:       o.OrderID,
		ClientID:      o.ClientID,
		MessageID:     o.MessageID,
		Symbol:        o.Symbol,
		Side:          o.Side,
		Quantity:      o.Quantity,
		Price:         o.Price,
		SubmittedTime: o.MessageTime,
		Status:        OrderStatusPending,
	}
}

// Decision is the outcome of admitting one order. Snapshot is the market state
// the decision was computed against, nil when none was read.
type Decision struct {
	Record   OrderRecord
	Snapshot *QuoteSnapshot
}

// Accepted reports whether the order was admitted.
func (d Decision) Accepted() bool {
	return d.Record.Status == OrderStatusAccepted
}

// Reason returns the rejection reason, RejectReasonNone for accepted orders.
func (d Decision) Reason() RejectReason {
	return d.Record.Reason
}
