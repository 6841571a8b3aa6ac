package obs

import (
	"sync/atomic"
	"time"

	"marketspread/internal/schema"
)

const (
	maxMessageKind  = int(schema.MaxMessageKind)
	maxOutcomeKind  = int(schema.MaxOutcomeKind)
	maxRejectReason = int(schema.MaxRejectReason)
)

// Metrics collects lightweight counters and latency stats.
type Metrics struct {
	messageCounts [maxMessageKind + 1]uint64
	outcomeCounts [maxOutcomeKind + 1]uint64
	reasonCounts  [maxRejectReason + 1]uint64

	decodeFailures   uint64
	classifyFailures uint64
	queueDrops       uint64
	queueClosed      uint64
	sinkFailures     uint64

	queueLatency  LatencyStats
	handleLatency LatencyStats
	admitLatency  LatencyStats
}

// LatencyStats aggregates duration samples in nanoseconds.
type LatencyStats struct {
	count uint64
	sum   uint64
	min   uint64
	max   uint64
}

// LatencySnapshot is a point-in-time view of latency stats.
type LatencySnapshot struct {
	Count uint64
	Min   time.Duration
	Max   time.Duration
	Avg   time.Duration
}

// Snapshot captures the current metrics values.
type Snapshot struct {
	MessageCounts    map[schema.MessageKind]uint64
	OutcomeCounts    map[schema.OutcomeKind]uint64
	RejectCounts     map[schema.RejectReason]uint64
	DecodeFailures   uint64
	ClassifyFailures uint64
	QueueDrops       uint64
	QueueClosed      uint64
	SinkFailures     uint64
	QueueLatency     LatencySnapshot
	HandleLatency    LatencySnapshot
	AdmitLatency     LatencySnapshot
}

// NewMetrics allocates a metrics container.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// ObserveMessage counts a classified message.
func (m *Metrics) ObserveMessage(kind schema.MessageKind) {
	if m == nil {
		return
	}
	inc(m.messageCounts[:], int(kind))
}

// ObserveOutcome counts one handled record and its latency.
func (m *Metrics) ObserveOutcome(kind schema.OutcomeKind, d time.Duration) {
	if m == nil {
		return
	}
	inc(m.outcomeCounts[:], int(kind))
	m.handleLatency.Observe(d)
}

// ObserveDecision counts the decision reason and admission latency.
// Accepted orders are counted under schema.RejectReasonNone.
func (m *Metrics) ObserveDecision(reason schema.RejectReason, d time.Duration) {
	if m == nil {
		return
	}
	inc(m.reasonCounts[:], int(reason))
	m.admitLatency.Observe(d)
}

// ObserveQueueWait records how long a record waited between receipt and handling.
func (m *Metrics) ObserveQueueWait(d time.Duration) {
	if m == nil {
		return
	}
	m.queueLatency.Observe(d)
}

// IncDecodeFailure records a record that failed to decode.
func (m *Metrics) IncDecodeFailure() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.decodeFailures, 1)
}

// IncClassifyFailure records a decoded record that failed to classify.
func (m *Metrics) IncClassifyFailure() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.classifyFailures, 1)
}

// IncQueueDrop records a queue drop.
func (m *Metrics) IncQueueDrop() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.queueDrops, 1)
}

// IncQueueClosed records a closed-queue publish attempt.
func (m *Metrics) IncQueueClosed() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.queueClosed, 1)
}

// IncSinkFailure records a decision the sink failed to persist.
func (m *Metrics) IncSinkFailure() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.sinkFailures, 1)
}

// Snapshot returns a copy of the current metrics values.
func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	messages := make(map[schema.MessageKind]uint64)
	for i := range m.messageCounts {
		if v := atomic.LoadUint64(&m.messageCounts[i]); v > 0 {
			messages[schema.MessageKind(i)] = v
		}
	}
	outcomes := make(map[schema.OutcomeKind]uint64)
	for i := range m.outcomeCounts {
		if v := atomic.LoadUint64(&m.outcomeCounts[i]); v > 0 {
			outcomes[schema.OutcomeKind(i)] = v
		}
	}
	reasons := make(map[schema.RejectReason]uint64)
	for i := range m.reasonCounts {
		if v := atomic.LoadUint64(&m.reasonCounts[i]); v > 0 {
			reasons[schema.RejectReason(i)] = v
		}
	}
	return Snapshot{
		MessageCounts:    messages,
		OutcomeCounts:    outcomes,
		RejectCounts:     reasons,
		DecodeFailures:   atomic.LoadUint64(&m.decodeFailures),
		ClassifyFailures: atomic.LoadUint64(&m.classifyFailures),
		QueueDrops:       atomic.LoadUint64(&m.queueDrops),
		QueueClosed:      atomic.LoadUint64(&m.queueClosed),
		SinkFailures:     atomic.LoadUint64(&m.sinkFailures),
		QueueLatency:     m.queueLatency.Snapshot(),
		HandleLatency:    m.handleLatency.Snapshot(),
		AdmitLatency:     m.admitLatency.Snapshot(),
	}
}

func inc(counters []uint64, idx int) {
	if idx >= 0 && idx < len(counters) {
		atomic.AddUint64(&counters[idx], 1)
	}
}

// Observe records a duration sample.
func (l *LatencyStats) Observe(d time.Duration) {
	if d < 0 {
		return
	}
	nanos := uint64(d)
	atomic.AddUint64(&l.count, 1)
	atomic.AddUint64(&l.sum, nanos)

	for {
		cur := atomic.LoadUint64(&l.min)
		if cur != 0 && nanos >= cur {
			break
		}
		if atomic.CompareAndSwapUint64(&l.min, cur, nanos) {
			break
		}
	}

	for {
		cur := atomic.LoadUint64(&l.max)
		if nanos <= cur {
			break
		}
		if atomic.CompareAndSwapUint64(&l.max, cur, nanos) {
			break
		}
	}
}

// Snapshot returns the aggregated latency stats.
func (l *LatencyStats) Snapshot() LatencySnapshot {
	count := atomic.LoadUint64(&l.count)
	if count == 0 {
		return LatencySnapshot{}
	}
	return LatencySnapshot{
		Count: count,
		Min:   time.Duration(atomic.LoadUint64(&l.min)),
		Max:   time.Duration(atomic.LoadUint64(&l.max)),
		Avg:   time.Duration(atomic.LoadUint64(&l.sum) / count),
	}
}
