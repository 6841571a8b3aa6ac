package schema

import "github.com/shopspring/decimal"

// MessageKind identifies one of the message variants.
type MessageKind uint16

const (
	MessageKindUnknown MessageKind = iota
	MessageKindQuote
	MessageKindOrder
	MessageKindFill
	MessageKindHeartbeat
)

func (k MessageKind) String() string {
	switch k {
	case MessageKindQuote:
		return "quote"
	case MessageKindOrder:
		return "order"
	case MessageKindFill:
		return "fill"
	case MessageKindHeartbeat:
		return "heartbeat"
	default:
		return "unknown"
	}
}

// Message is the closed set of classified messages: Quote, Order, Fill and Heartbeat.
type Message interface {
	Kind() MessageKind
	message()
}

// Header carries the optional fields common to every variant.
type Header struct {
	MessageID   string
	ClientID    string
	MessageTime string
}

// Quote is a best bid/offer update for a symbol.
type Quote struct {
	Header
	Symbol string
	Bid    decimal.Decimal
	Offer  decimal.Decimal
}

// Order is a new order submitted for admission.
type Order struct {
	Header
	OrderID  string
	Symbol   string
	Side     OrderSide
	Quantity decimal.Decimal
	Price    decimal.Decimal
}

// Fill is an execution report. The admission core does not act on it.
type Fill struct {
	Header
	OrderID  string
	Symbol   string
	Side     OrderSide
	Quantity decimal.Decimal
	Price    decimal.Decimal
}

// Heartbeat is a session keep-alive.
type Heartbeat struct {
	Header
}

func (Quote) Kind() MessageKind     { return MessageKindQuote }
func (Order) Kind() MessageKind     { return MessageKindOrder }
func (Fill) Kind() MessageKind      { return MessageKindFill }
func (Heartbeat) Kind() MessageKind { return MessageKindHeartbeat }

func (Quote) message()     {}
func (Order) message()     {}
func (Fill) message()      {}
func (Heartbeat) message() {}

// OrderSide is the FIX side code (tag 54).
type OrderSide int64

const (
	OrderSideUnknown OrderSide = 0
	OrderSideBuy     OrderSide = 1
	OrderSideSell    OrderSide = 2
)

func (s OrderSide) String() string {
	switch s {
	case OrderSideBuy:
		return "buy"
	case OrderSideSell:
		return "sell"
	default:
		return "unknown"
	}
}
