package sink

import (
	"context"

	"marketspread/internal/schema"

	"github.com/yanun0323/logs"
)

// Sink persists or forwards admission decisions.
type Sink interface {
	Record(ctx context.Context, decision schema.Decision) error
	Close() error
}

// Nop discards decisions.
type Nop struct{}

func (Nop) Record(context.Context, schema.Decision) error { return nil }
func (Nop) Close() error                                  { return nil }

// Log writes one line per decision.
type Log struct{}

func (Log) Record(_ context.Context, d schema.Decision) error {
	rec := d.Record
	if d.Accepted() {
		logs.Infof("order %s accepted: client=%s symbol=%s side=%s qty=%s price=%s",
			rec.OrderID, rec.ClientID, rec.Symbol, rec.Side, rec.Quantity, rec.Price)
		return nil
	}
	logs.Infof("order %s rejected (%s): client=%s symbol=%s side=%s qty=%s price=%s",
		rec.OrderID, rec.Reason, rec.ClientID, rec.Symbol, rec.Side, rec.Quantity, rec.Price)
	return nil
}

func (Log) Close() error { return nil }
