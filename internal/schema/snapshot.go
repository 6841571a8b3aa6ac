package schema

import "github.com/shopspring/decimal"

// QuoteSnapshot is the latest market state for one symbol. It is never mutated
// after it is published by the market store.
type QuoteSnapshot struct {
	Symbol          string
	MessageID       string
	LastMessageTime string
	Bid             decimal.Decimal
	Offer           decimal.Decimal
	Mid             decimal.Decimal
	Spread          decimal.Decimal
	HaltNewOrders   bool
	Seq             uint64
}

var half = decimal.New(5, -1)

// NewQuoteSnapshot derives mid, spread and the halt flag from a quote.
func NewQuoteSnapshot(q Quote, spreadThreshold decimal.Decimal, seq uint64) QuoteSnapshot {
	spread := q.Offer.Sub(q.Bid)
	return QuoteSnapshot{
		Symbol:          q.Symbol,
		MessageID:       q.MessageID,
		LastMessageTime: q.MessageTime,
		Bid:             q.Bid,
		Offer:           q.Offer,
		Mid:             q.Bid.Add(q.Offer).Mul(half),
		Spread:          spread,
		HaltNewOrders:   spread.GreaterThanOrEqual(spreadThreshold),
		Seq:             seq,
	}
}

// Consistent reports whether mid and spread agree with bid and offer.
func (s QuoteSnapshot) Consistent() bool {
	return s.Mid.Equal(s.Bid.Add(s.Offer).Mul(half)) && s.Spread.Equal(s.Offer.Sub(s.Bid))
}
