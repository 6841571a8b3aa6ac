package main

import (
	"bufio"
	"bytes"
	"context"
	"flag"
	"io"
	"os"
	"sync"
	"time"

	"marketspread/internal/admission"
	"marketspread/internal/bus"
	"marketspread/internal/dispatch"
	"marketspread/internal/market"
	"marketspread/internal/obs"
	"marketspread/internal/ops"
	"marketspread/internal/risk"
	"marketspread/internal/schema"
	"marketspread/internal/sink"
	"marketspread/pkg/exception"
	"marketspread/pkg/scanner"

	pyroscope "github.com/grafana/pyroscope-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"
	"github.com/yanun0323/pkg/sys"
)

const maxRecordSize = 1 << 20

type options struct {
	configPath   string
	configReload time.Duration
	envFile      string
	workers      int
	pipe         bool
	hold         bool
	dropWhenFull bool
	inputs       []string
}

func main() {
	var opt options
	flag.StringVar(&opt.configPath, "config", "", "Path to JSON or YAML config")
	flag.DurationVar(&opt.configReload, "config-reload-interval", 2*time.Second, "Config reload interval (0=disable)")
	flag.StringVar(&opt.envFile, "env-file", ".env", "Dotenv file with MARKETSPREAD_* overrides")
	flag.IntVar(&opt.workers, "workers", 0, "Worker count (0=config)")
	flag.BoolVar(&opt.pipe, "pipe", false, "Records use '|' instead of SOH between fields")
	flag.BoolVar(&opt.hold, "hold", false, "Keep serving metrics after input ends until shutdown")
	flag.BoolVar(&opt.dropWhenFull, "drop-when-full", false, "Drop records instead of waiting when the queue is full")
	flag.Parse()
	opt.inputs = flag.Args()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-sys.Shutdown():
			logs.Info("shutdown signal received")
			cancel()
		case <-ctx.Done():
		}
	}()

	if err := run(ctx, opt); err != nil {
		logs.Errorf("marketspread failed, err: %+v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opt options) error {
	var watcher *ops.Watcher
	if opt.configPath != "" && opt.configReload > 0 {
		w, err := ops.NewWatcher(opt.configPath, opt.configReload)
		if err != nil {
			return err
		}
		watcher = w
	}

	loaded, env, err := loadConfig(opt.configPath, opt.envFile)
	if err != nil {
		return err
	}
	if opt.workers > 0 {
		loaded.Workers = opt.workers
	}

	if loaded.Profiling.Enabled {
		profiler, err := startProfiler(loaded.Profiling)
		if err != nil {
			return err
		}
		defer func() {
			_ = profiler.Stop()
		}()
	}

	metrics := obs.NewMetrics()
	if loaded.Metrics.Addr != "" {
		reg := prometheus.NewRegistry()
		reg.MustRegister(obs.NewCollector(metrics))
		srv := obs.Serve(loaded.Metrics.Addr, reg)
		defer srv.Close()
		logs.Infof("metrics served on %s/metrics", loaded.Metrics.Addr)
	}

	store := market.NewStore(loaded.Market)
	engine := admission.NewEngine(store, risk.NewEngine(loaded.Risk), admission.NewLedger(loaded.LedgerShards))
	dispatcher := dispatch.New(store, engine, metrics)

	if watcher != nil {
		go watcher.Run(ctx, func(next ops.Loaded) {
			next, err := ops.ApplyEnv(next, env)
			if err != nil {
				logs.Errorf("config env override failed, err: %+v", err)
				return
			}
			if err := store.SetSpreadThreshold(next.Market.SpreadThreshold); err != nil {
				logs.Errorf("set spread threshold failed, err: %+v", err)
				return
			}
			if !engine.UpdateRisk(next.Risk) {
				logs.Errorf("risk config v%d older than v%d, ignored", next.Risk.Version, engine.Risk().Version)
			}
		})
	}

	out, err := openSink(loaded.Sink)
	if err != nil {
		return err
	}
	defer out.Close()

	queue := bus.NewQueue(loaded.QueueSize)
	var wg sync.WaitGroup
	for i := 0; i < loaded.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			queue.Run(ctx, func(in bus.Inbound) {
				handle(ctx, dispatcher, out, metrics, in)
			})
		}()
	}

	start := time.Now()
	rd := &reader{
		queue:        queue,
		seq:          obs.NewSequence(0),
		metrics:      metrics,
		pipe:         opt.pipe,
		dropWhenFull: opt.dropWhenFull,
	}
	readErr := rd.readInputs(ctx, opt.inputs)
	queue.Close()
	wg.Wait()

	logSummary(metrics.Snapshot(), engine.Ledger().Counts(), store, time.Since(start))
	if readErr != nil {
		return readErr
	}

	if opt.hold {
		logs.Info("input done, holding until shutdown")
		<-ctx.Done()
	}
	return nil
}

func loadConfig(path, envFile string) (ops.Loaded, map[string]string, error) {
	loaded := ops.Default()
	if path != "" {
		var err error
		loaded, err = ops.Load(path)
		if err != nil {
			return ops.Loaded{}, nil, err
		}
	}
	env, err := ops.ReadEnv(envFile)
	if err != nil {
		return ops.Loaded{}, nil, err
	}
	loaded, err = ops.ApplyEnv(loaded, env)
	if err != nil {
		return ops.Loaded{}, nil, errors.Wrap(err, "apply env overrides")
	}
	return loaded, env, nil
}

func openSink(cfg ops.SinkConfig) (sink.Sink, error) {
	switch cfg.Driver {
	case ops.SinkPostgres:
		pg, err := sink.OpenPostgres(cfg.Postgres)
		if err != nil {
			return nil, err
		}
		return pg, nil
	case ops.SinkNone:
		return sink.Nop{}, nil
	default:
		return sink.Log{}, nil
	}
}

func handle(ctx context.Context, d *dispatch.Dispatcher, out sink.Sink, metrics *obs.Metrics, in bus.Inbound) {
	if in.RecvTs > 0 {
		metrics.ObserveQueueWait(time.Duration(time.Now().UnixNano() - in.RecvTs))
	}
	res := d.Handle(in.Raw)
	switch res.Kind {
	case schema.OutcomeRejected:
		logs.Errorf("record %d dropped, err: %+v", in.Seq, res.Err)
	case schema.OutcomeDecided:
		if err := out.Record(ctx, *res.Decision); err != nil {
			metrics.IncSinkFailure()
			logs.Errorf("record decision %s failed, err: %+v", res.Decision.Record.OrderID, err)
		}
	}
}

// reader feeds newline separated records into the queue.
type reader struct {
	queue        *bus.Queue
	seq          *obs.Sequence
	metrics      *obs.Metrics
	pipe         bool
	dropWhenFull bool
}

func (rd *reader) readInputs(ctx context.Context, inputs []string) error {
	if len(inputs) == 0 {
		return rd.read(ctx, os.Stdin)
	}
	for _, path := range inputs {
		f, err := os.Open(path)
		if err != nil {
			return errors.Wrapf(err, "open input %s", path)
		}
		err = rd.read(ctx, f)
		_ = f.Close()
		if err != nil {
			return errors.Wrapf(err, "read input %s", path)
		}
	}
	return nil
}

func (rd *reader) read(ctx context.Context, r io.Reader) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxRecordSize)
	for sc.Scan() {
		line := scanner.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		raw := bytes.Clone(line)
		if rd.pipe {
			raw = bytes.ReplaceAll(raw, []byte{'|'}, []byte{scanner.SOH})
		}
		in := bus.Inbound{Seq: rd.seq.Next(), RecvTs: time.Now().UnixNano(), Raw: raw}
		if err := rd.publish(ctx, in); err != nil {
			rd.metrics.IncQueueClosed()
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return errors.Wrap(err, "scan records")
	}
	return nil
}

func (rd *reader) publish(ctx context.Context, in bus.Inbound) error {
	if !rd.dropWhenFull {
		return rd.queue.Publish(ctx, in)
	}
	err := rd.queue.TryPublish(in)
	if errors.Is(err, exception.ErrQueueFull) {
		rd.metrics.IncQueueDrop()
		return nil
	}
	return err
}

func startProfiler(cfg ops.ProfilingConfig) (*pyroscope.Profiler, error) {
	profiler, err := pyroscope.Start(pyroscope.Config{
		ApplicationName: cfg.ApplicationName,
		ServerAddress:   cfg.ServerAddress,
		Tags: map[string]string{
			"service": "marketspread",
		},
		Logger: emptyLogger{},
		ProfileTypes: []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileAllocObjects,
			pyroscope.ProfileAllocSpace,
			pyroscope.ProfileInuseObjects,
			pyroscope.ProfileInuseSpace,
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "start pyroscope")
	}
	return profiler, nil
}

func logSummary(snap obs.Snapshot, ledger map[schema.OrderStatus]int, store *market.Store, elapsed time.Duration) {
	logs.Infof("handled %d records in %s: updated=%d decided=%d ignored=%d rejected=%d",
		snap.HandleLatency.Count, elapsed,
		snap.OutcomeCounts[schema.OutcomeUpdated], snap.OutcomeCounts[schema.OutcomeDecided],
		snap.OutcomeCounts[schema.OutcomeIgnored], snap.OutcomeCounts[schema.OutcomeRejected])
	logs.Infof("failures: decode=%d classify=%d sink=%d",
		snap.DecodeFailures, snap.ClassifyFailures, snap.SinkFailures)
	logs.Infof("ledger: accepted=%d rejected=%d pending=%d, symbols=%d",
		ledger[schema.OrderStatusAccepted], ledger[schema.OrderStatusRejected], ledger[schema.OrderStatusPending], store.Len())
	for r := schema.RejectReason(0); r <= schema.MaxRejectReason; r++ {
		if n := snap.RejectCounts[r]; n > 0 {
			logs.Infof("decision %s: %d", r, n)
		}
	}
	logs.Infof("queue: drops=%d closed=%d wait avg=%s max=%s",
		snap.QueueDrops, snap.QueueClosed, snap.QueueLatency.Avg, snap.QueueLatency.Max)
	logs.Infof("latency handle avg=%s max=%s, admit avg=%s max=%s",
		snap.HandleLatency.Avg, snap.HandleLatency.Max, snap.AdmitLatency.Avg, snap.AdmitLatency.Max)
}
