package obs

import (
	"errors"
	"net/http"

	"marketspread/internal/schema"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/yanun0323/logs"
)

const namespace = "marketspread"

var (
	messagesDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "", "messages_total"),
		"Classified messages by kind.", []string{"kind"}, nil)
	outcomesDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "", "outcomes_total"),
		"Handled records by outcome.", []string{"outcome"}, nil)
	decisionsDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "", "decisions_total"),
		"Order decisions by reject reason, none for accepted.", []string{"reason"}, nil)
	failuresDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "", "failures_total"),
		"Records and decisions lost along the pipeline.", []string{"stage"}, nil)
	latencyDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "", "latency_seconds"),
		"Latency aggregates per stage.", []string{"stage", "stat"}, nil)
)

// Collector exports a Metrics snapshot to Prometheus on every scrape.
type Collector struct {
	metrics *Metrics
}

// NewCollector wraps m as a prometheus.Collector.
func NewCollector(m *Metrics) *Collector {
	return &Collector{metrics: m}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- messagesDesc
	ch <- outcomesDesc
	ch <- decisionsDesc
	ch <- failuresDesc
	ch <- latencyDesc
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	snap := c.metrics.Snapshot()

	for k := schema.MessageKind(0); k <= schema.MaxMessageKind; k++ {
		ch <- prometheus.MustNewConstMetric(messagesDesc, prometheus.CounterValue, float64(snap.MessageCounts[k]), k.String())
	}
	for k := schema.OutcomeKind(0); k <= schema.MaxOutcomeKind; k++ {
		ch <- prometheus.MustNewConstMetric(outcomesDesc, prometheus.CounterValue, float64(snap.OutcomeCounts[k]), k.String())
	}
	for r := schema.RejectReason(0); r <= schema.MaxRejectReason; r++ {
		ch <- prometheus.MustNewConstMetric(decisionsDesc, prometheus.CounterValue, float64(snap.RejectCounts[r]), r.String())
	}

	failures := map[string]uint64{
		"decode":       snap.DecodeFailures,
		"classify":     snap.ClassifyFailures,
		"queue_drop":   snap.QueueDrops,
		"queue_closed": snap.QueueClosed,
		"sink":         snap.SinkFailures,
	}
	for stage, v := range failures {
		ch <- prometheus.MustNewConstMetric(failuresDesc, prometheus.CounterValue, float64(v), stage)
	}

	collectLatency(ch, "queue", snap.QueueLatency)
	collectLatency(ch, "handle", snap.HandleLatency)
	collectLatency(ch, "admit", snap.AdmitLatency)
}

func collectLatency(ch chan<- prometheus.Metric, stage string, l LatencySnapshot) {
	ch <- prometheus.MustNewConstMetric(latencyDesc, prometheus.GaugeValue, l.Min.Seconds(), stage, "min")
	ch <- prometheus.MustNewConstMetric(latencyDesc, prometheus.GaugeValue, l.Max.Seconds(), stage, "max")
	ch <- prometheus.MustNewConstMetric(latencyDesc, prometheus.GaugeValue, l.Avg.Seconds(), stage, "avg")
}

// Serve exposes reg on addr under /metrics. The server runs until closed.
func Serve(addr string, reg *prometheus.Registry) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logs.Errorf("metrics server on %s stopped, err: %+v", addr, err)
		}
	}()
	return srv
}
