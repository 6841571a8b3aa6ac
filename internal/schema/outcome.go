package schema

// OutcomeKind classifies what handling one raw record did.
type OutcomeKind uint8

const (
	// OutcomeRejected means the record could not be decoded or classified.
	OutcomeRejected OutcomeKind = iota
	// OutcomeUpdated means a quote replaced the symbol's snapshot.
	OutcomeUpdated
	// OutcomeDecided means an order received an admission decision.
	OutcomeDecided
	// OutcomeIgnored means the message was valid but needs no action.
	OutcomeIgnored
)

// MaxOutcomeKind is the highest defined outcome.
const MaxOutcomeKind = OutcomeIgnored

// MaxMessageKind is the highest defined message kind.
const MaxMessageKind = MessageKindHeartbeat

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeRejected:
		return "rejected"
	case OutcomeUpdated:
		return "updated"
	case OutcomeDecided:
		return "decided"
	case OutcomeIgnored:
		return "ignored"
	default:
		return "unknown"
	}
}
