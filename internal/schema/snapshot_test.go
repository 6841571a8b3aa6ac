package schema

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestNewQuoteSnapshot(t *testing.T) {
	testCases := []struct {
		desc      string
		bid       string
		offer     string
		threshold string
		mid       string
		halt      bool
	}{
		{"wide spread halts", "10.00", "10.10", "0.05", "10.05", true},
		{"spread equal to threshold halts", "10.00", "10.05", "0.05", "10.025", true},
		{"tight spread trades", "252.80", "252.90", "0.25", "252.85", false},
		{"crossed market trades", "10.10", "10.00", "0.05", "10.05", false},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			q := Quote{
				Header: Header{MessageID: "m1", MessageTime: "20151204-14:30:00.000"},
				Symbol: "TSLA",
				Bid:    decimal.RequireFromString(tc.bid),
				Offer:  decimal.RequireFromString(tc.offer),
			}
			snap := NewQuoteSnapshot(q, decimal.RequireFromString(tc.threshold), 7)

			assert.Equal(t, "TSLA", snap.Symbol)
			assert.Equal(t, "m1", snap.MessageID)
			assert.Equal(t, "20151204-14:30:00.000", snap.LastMessageTime)
			assert.Equal(t, uint64(7), snap.Seq)
			assert.Truef(t, snap.Mid.Equal(decimal.RequireFromString(tc.mid)), "mid %s", snap.Mid)
			assert.Equal(t, tc.halt, snap.HaltNewOrders)
			assert.True(t, snap.Consistent())
		})
	}
}

func TestDecisionAccessors(t *testing.T) {
	d := Decision{Record: OrderRecord{Status: OrderStatusRejected, Reason: RejectReasonNoMarket}}
	assert.False(t, d.Accepted())
	assert.Equal(t, RejectReasonNoMarket, d.Reason())
	assert.Equal(t, "no_market", d.Reason().String())

	d = Decision{Record: OrderRecord{Status: OrderStatusAccepted}}
	assert.True(t, d.Accepted())
	assert.True(t, d.Record.Status.IsTerminal())
	assert.False(t, OrderStatusPending.IsTerminal())
}

func TestMessageKinds(t *testing.T) {
	var msgs = []Message{Quote{}, Order{}, Fill{}, Heartbeat{}}
	kinds := make([]string, 0, len(msgs))
	for _, m := range msgs {
		kinds = append(kinds, m.Kind().String())
	}
	assert.Equal(t, []string{"quote", "order", "fill", "heartbeat"}, kinds)
}
