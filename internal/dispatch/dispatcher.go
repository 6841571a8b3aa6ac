package dispatch

import (
	"time"

	"marketspread/internal/admission"
	"marketspread/internal/codec"
	"marketspread/internal/market"
	"marketspread/internal/message"
	"marketspread/internal/obs"
	"marketspread/internal/schema"
	"marketspread/pkg/exception"
)

// Outcome reports what handling one raw record did.
type Outcome struct {
	Kind     schema.OutcomeKind
	Message  schema.Message
	Snapshot *schema.QuoteSnapshot
	Decision *schema.Decision
	Err      error
}

// Dispatcher routes raw records through decode, classify and the market or admission path.
// Handle is safe for concurrent use.
type Dispatcher struct {
	market    *market.Store
	admission *admission.Engine
	metrics   *obs.Metrics
}

// New creates a dispatcher over the given store and engine. metrics may be nil.
func New(store *market.Store, engine *admission.Engine, metrics *obs.Metrics) *Dispatcher {
	return &Dispatcher{
		market:    store,
		admission: engine,
		metrics:   metrics,
	}
}

// Market returns the market store.
func (d *Dispatcher) Market() *market.Store {
	return d.market
}

// Admission returns the admission engine.
func (d *Dispatcher) Admission() *admission.Engine {
	return d.admission
}

// Handle processes one record. A record that fails to decode or classify
// yields OutcomeRejected and leaves all shared state untouched.
func (d *Dispatcher) Handle(raw []byte) Outcome {
	start := time.Now()
	out := d.handle(raw)
	d.metrics.ObserveOutcome(out.Kind, time.Since(start))
	return out
}

func (d *Dispatcher) handle(raw []byte) Outcome {
	wire, err := codec.Decode(raw)
	if err != nil {
		d.metrics.IncDecodeFailure()
		return Outcome{Kind: schema.OutcomeRejected, Err: err}
	}

	msg, err := message.Classify(wire)
	if err != nil {
		d.metrics.IncClassifyFailure()
		return Outcome{Kind: schema.OutcomeRejected, Err: err}
	}
	d.metrics.ObserveMessage(msg.Kind())

	switch m := msg.(type) {
	case schema.Quote:
		snap := d.market.UpdateQuote(m)
		return Outcome{Kind: schema.OutcomeUpdated, Message: m, Snapshot: &snap}
	case schema.Order:
		start := time.Now()
		decision := d.admission.Admit(m)
		d.metrics.ObserveDecision(decision.Reason(), time.Since(start))
		return Outcome{Kind: schema.OutcomeDecided, Message: m, Snapshot: decision.Snapshot, Decision: &decision}
	case schema.Fill, schema.Heartbeat:
		return Outcome{Kind: schema.OutcomeIgnored, Message: m}
	default:
		return Outcome{Kind: schema.OutcomeRejected, Err: exception.ErrClassifyUnknownType}
	}
}
