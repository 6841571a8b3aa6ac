package risk

import (
	"testing"

	"marketspread/internal/schema"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestEvaluate(t *testing.T) {
	trading := schema.QuoteSnapshot{Symbol: "TSLA", Bid: d("252.80"), Offer: d("252.90"), Mid: d("252.85")}
	halted := trading
	halted.HaltNewOrders = true

	order := schema.Order{OrderID: "s0XCIa", Symbol: "TSLA", Side: schema.OrderSideBuy, Quantity: d("4000"), Price: d("252.85")}

	testCases := []struct {
		desc     string
		cfg      Config
		snap     schema.QuoteSnapshot
		order    schema.Order
		expected schema.RejectReason
	}{
		{"no limits", Config{}, trading, order, schema.RejectReasonNone},
		{"spread halt", Config{}, halted, order, schema.RejectReasonSpreadHalt},
		{"spread halt wins over kill switch", Config{KillSwitch: true}, halted, order, schema.RejectReasonSpreadHalt},
		{"kill switch", Config{KillSwitch: true}, trading, order, schema.RejectReasonKillSwitch},
		{"max qty", Config{MaxOrderQty: d("1000")}, trading, order, schema.RejectReasonMaxQty},
		{"max qty equal passes", Config{MaxOrderQty: d("4000")}, trading, order, schema.RejectReasonNone},
		{"max notional", Config{MaxOrderNotional: d("1000000")}, trading, order, schema.RejectReasonMaxNotional},
		{"max notional passes", Config{MaxOrderNotional: d("1011400")}, trading, order, schema.RejectReasonNone},
		{"price band", Config{MaxPriceDeviationBps: 10}, trading, schema.Order{Quantity: d("1"), Price: d("260")}, schema.RejectReasonPriceBand},
		{"price band passes", Config{MaxPriceDeviationBps: 10}, trading, schema.Order{Quantity: d("1"), Price: d("253")}, schema.RejectReasonNone},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			e := NewEngine(tc.cfg)
			assert.Equal(t, tc.expected, e.Evaluate(tc.order, tc.snap))
		})
	}
}

func TestUpdate(t *testing.T) {
	e := NewEngine(Config{Version: 1})
	order := schema.Order{Quantity: d("1"), Price: d("1")}
	snap := schema.QuoteSnapshot{Mid: d("1")}

	assert.Equal(t, schema.RejectReasonNone, e.Evaluate(order, snap))

	assert.True(t, e.Update(Config{Version: 2, KillSwitch: true}))
	assert.Equal(t, uint16(2), e.Config().Version)
	assert.Equal(t, schema.RejectReasonKillSwitch, e.Evaluate(order, snap))
}

func TestUpdateIgnoresOlderVersion(t *testing.T) {
	e := NewEngine(Config{Version: 5, KillSwitch: true})

	assert.False(t, e.Update(Config{Version: 4}))
	assert.Equal(t, uint16(5), e.Config().Version)
	assert.True(t, e.Config().KillSwitch)

	assert.True(t, e.Update(Config{Version: 5}), "same version is reapplied")
	assert.False(t, e.Config().KillSwitch)

	assert.True(t, e.Update(Config{}), "unversioned config always applies")
	assert.Equal(t, uint16(0), e.Config().Version)
}
