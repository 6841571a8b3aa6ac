package mdg

import (
	"strconv"
	"time"

	"marketspread/internal/codec"
	"marketspread/internal/schema"
	"marketspread/pkg/exception"

	"github.com/shopspring/decimal"
	"github.com/yanun0323/errors"
)

// MessageTimeLayout is the wire layout of the message_time field.
const MessageTimeLayout = "20060102-15:04:05.000"

// Config shapes the synthetic feed.
type Config struct {
	Symbols   []string
	ClientID  string
	BasePrice decimal.Decimal
	Tick      decimal.Decimal
	Spread    decimal.Decimal
	OrderQty  decimal.Decimal
	// OrderEvery emits one order after every OrderEvery quotes. Zero disables orders.
	OrderEvery int
}

// Generator creates a deterministic stream of quote and order records.
type Generator struct {
	cfg    Config
	index  int
	quotes int
	orders int
	mids   map[string]decimal.Decimal
}

// NewGenerator validates cfg and returns a generator.
func NewGenerator(cfg Config) (*Generator, error) {
	if len(cfg.Symbols) == 0 {
		return nil, errors.Wrap(exception.ErrInvalidArgument, "generator needs at least one symbol")
	}
	if !cfg.BasePrice.IsPositive() {
		return nil, errors.Wrapf(exception.ErrInvalidArgument, "base price must be > 0, got %s", cfg.BasePrice)
	}
	if cfg.Spread.IsNegative() {
		cfg.Spread = decimal.Zero
	}
	if !cfg.OrderQty.IsPositive() {
		cfg.OrderQty = decimal.NewFromInt(1)
	}
	if cfg.ClientID == "" {
		cfg.ClientID = "LOADGEN"
	}
	return &Generator{
		cfg:  cfg,
		mids: make(map[string]decimal.Decimal, len(cfg.Symbols)),
	}, nil
}

// Next creates the next raw record in sequence.
func (g *Generator) Next(now time.Time) []byte {
	if g.cfg.OrderEvery > 0 && g.quotes > 0 && g.quotes%g.cfg.OrderEvery == 0 && g.orders < g.quotes/g.cfg.OrderEvery {
		return g.nextOrder(now)
	}
	return g.nextQuote(now)
}

// Quotes returns how many quotes were generated.
func (g *Generator) Quotes() int {
	return g.quotes
}

// Orders returns how many orders were generated.
func (g *Generator) Orders() int {
	return g.orders
}

func (g *Generator) nextQuote(now time.Time) []byte {
	symbol := g.cfg.Symbols[g.index]
	g.index = (g.index + 1) % len(g.cfg.Symbols)
	g.quotes++

	bid := g.cfg.BasePrice.Add(g.cfg.Tick.Mul(decimal.NewFromInt(int64(g.quotes % 10))))
	offer := bid.Add(g.cfg.Spread)
	g.mids[symbol] = bid.Add(offer).Div(decimal.NewFromInt(2))

	return codec.NewBuilder().
		Str(codec.TagMsgType, "S").
		Str(codec.TagMessageID, "q-"+strconv.Itoa(g.quotes)).
		Str(codec.TagSymbol, symbol).
		Str(codec.TagMessageTime, now.UTC().Format(MessageTimeLayout)).
		Dec(codec.TagBid, bid).
		Dec(codec.TagOffer, offer).
		Bytes()
}

func (g *Generator) nextOrder(now time.Time) []byte {
	g.orders++
	// the most recently quoted symbol
	symbol := g.cfg.Symbols[(g.index+len(g.cfg.Symbols)-1)%len(g.cfg.Symbols)]
	side := schema.OrderSideBuy
	if g.orders%2 == 0 {
		side = schema.OrderSideSell
	}

	return codec.NewBuilder().
		Str(codec.TagMsgType, "D").
		Str(codec.TagMessageID, "o-"+strconv.Itoa(g.orders)).
		Str(codec.TagClientID, g.cfg.ClientID).
		Str(codec.TagOrderID, g.cfg.ClientID+"-"+strconv.Itoa(g.orders)).
		Str(codec.TagSymbol, symbol).
		Int(codec.TagSide, int64(side)).
		Dec(codec.TagOrderQty, g.cfg.OrderQty).
		Dec(codec.TagPrice, g.mids[symbol]).
		Str(codec.TagMessageTime, now.UTC().Format(MessageTimeLayout)).
		Bytes()
}
