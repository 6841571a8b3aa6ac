package obs

import (
	"sync"
	"testing"
	"time"

	"marketspread/internal/schema"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsNilSafe(t *testing.T) {
	var m *Metrics
	m.ObserveMessage(schema.MessageKindQuote)
	m.ObserveOutcome(schema.OutcomeUpdated, time.Millisecond)
	m.ObserveDecision(schema.RejectReasonNone, time.Millisecond)
	m.IncDecodeFailure()
	m.IncClassifyFailure()
	m.IncQueueDrop()
	m.IncQueueClosed()
	m.IncSinkFailure()
	m.ObserveQueueWait(time.Millisecond)
	assert.Equal(t, Snapshot{}, m.Snapshot())
}

func TestMetricsSnapshot(t *testing.T) {
	m := NewMetrics()
	m.ObserveMessage(schema.MessageKindQuote)
	m.ObserveMessage(schema.MessageKindOrder)
	m.ObserveMessage(schema.MessageKindOrder)
	m.ObserveMessage(schema.MessageKind(99))
	m.ObserveOutcome(schema.OutcomeDecided, 2*time.Millisecond)
	m.ObserveOutcome(schema.OutcomeDecided, 4*time.Millisecond)
	m.ObserveDecision(schema.RejectReasonSpreadHalt, time.Millisecond)
	m.IncDecodeFailure()
	m.IncQueueDrop()
	m.ObserveQueueWait(5 * time.Millisecond)

	snap := m.Snapshot()
	assert.Equal(t, uint64(1), snap.MessageCounts[schema.MessageKindQuote])
	assert.Equal(t, uint64(2), snap.MessageCounts[schema.MessageKindOrder])
	assert.Len(t, snap.MessageCounts, 2)
	assert.Equal(t, uint64(2), snap.OutcomeCounts[schema.OutcomeDecided])
	assert.Equal(t, uint64(1), snap.RejectCounts[schema.RejectReasonSpreadHalt])
	assert.Equal(t, uint64(1), snap.DecodeFailures)
	assert.Equal(t, uint64(1), snap.QueueDrops)
	assert.Equal(t, 5*time.Millisecond, snap.QueueLatency.Max)

	assert.Equal(t, uint64(2), snap.HandleLatency.Count)
	assert.Equal(t, 2*time.Millisecond, snap.HandleLatency.Min)
	assert.Equal(t, 4*time.Millisecond, snap.HandleLatency.Max)
	assert.Equal(t, 3*time.Millisecond, snap.HandleLatency.Avg)
}

func TestLatencyStatsConcurrent(t *testing.T) {
	var l LatencyStats
	var wg sync.WaitGroup
	for i := 1; i <= 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			l.Observe(time.Duration(i) * time.Microsecond)
		}(i)
	}
	wg.Wait()
	l.Observe(-time.Second)

	snap := l.Snapshot()
	assert.Equal(t, uint64(100), snap.Count)
	assert.Equal(t, time.Microsecond, snap.Min)
	assert.Equal(t, 100*time.Microsecond, snap.Max)
}

func TestCollector(t *testing.T) {
	m := NewMetrics()
	m.ObserveDecision(schema.RejectReasonNoMarket, time.Millisecond)
	m.ObserveDecision(schema.RejectReasonNoMarket, time.Millisecond)

	reg := prometheus.NewRegistry()
	require.NoError(t, reg.Register(NewCollector(m)))

	mfs, err := reg.Gather()
	require.NoError(t, err)

	found := false
	for _, mf := range mfs {
		if mf.GetName() != "marketspread_decisions_total" {
			continue
		}
		for _, metric := range mf.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "reason" && label.GetValue() == "no_market" {
					found = true
					assert.Equal(t, float64(2), metric.GetCounter().GetValue())
				}
			}
		}
	}
	assert.True(t, found, "no_market decisions not exported")
}

func TestSequence(t *testing.T) {
	s := NewSequence(10)
	assert.Equal(t, uint64(11), s.Next())
	assert.Equal(t, uint64(12), s.Next())

	var nilSeq *Sequence
	assert.Equal(t, uint64(0), nilSeq.Next())
}
