package main

import (
	"bufio"
	"bytes"
	"flag"
	"io"
	"os"
	"strings"
	"time"

	"marketspread/internal/bus"
	"marketspread/internal/chaos"
	"marketspread/internal/mdg"
	"marketspread/pkg/scanner"

	"github.com/shopspring/decimal"
	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"
)

type options struct {
	output     string
	count      int
	symbols    string
	clientID   string
	basePrice  string
	tick       string
	spread     string
	orderQty   string
	orderEvery int
	interval   time.Duration
	pipe       bool
	chaos      chaos.Config
}

func main() {
	var opt options
	flag.StringVar(&opt.output, "out", "", "Output file (default: stdout)")
	flag.IntVar(&opt.count, "count", 1000, "Number of records before chaos")
	flag.StringVar(&opt.symbols, "symbols", "TSLA,AAPL,MSFT", "Comma separated symbols")
	flag.StringVar(&opt.clientID, "client-id", "LOADGEN", "Client id on generated orders")
	flag.StringVar(&opt.basePrice, "base-price", "252.80", "Base bid price")
	flag.StringVar(&opt.tick, "tick", "0.01", "Bid step between quotes")
	flag.StringVar(&opt.spread, "spread", "0.02", "Offer minus bid")
	flag.StringVar(&opt.orderQty, "order-qty", "100", "Quantity on generated orders")
	flag.IntVar(&opt.orderEvery, "order-every", 3, "Emit an order after every N quotes (0=quotes only)")
	flag.DurationVar(&opt.interval, "interval", time.Millisecond, "Message time step between records")
	flag.BoolVar(&opt.pipe, "pipe", false, "Write '|' instead of SOH between fields")
	flag.Int64Var(&opt.chaos.Seed, "seed", 0, "RNG seed (0=now)")
	flag.Float64Var(&opt.chaos.DropRate, "drop-rate", 0, "Drop probability [0-1]")
	flag.Float64Var(&opt.chaos.DuplicateRate, "dup-rate", 0, "Duplicate probability [0-1]")
	flag.IntVar(&opt.chaos.ReorderWindow, "reorder-window", 1, "Reorder window (>=1)")
	flag.DurationVar(&opt.chaos.MaxDelay, "max-delay", 0, "Max receive delay; with -reorder-window > 1 records leave in delayed order")
	flag.Parse()

	if err := run(opt); err != nil {
		logs.Errorf("loadgen failed, err: %+v", err)
		os.Exit(1)
	}
}

func run(opt options) error {
	cfg, err := generatorConfig(opt)
	if err != nil {
		return err
	}
	gen, err := mdg.NewGenerator(cfg)
	if err != nil {
		return err
	}
	engine, err := chaos.NewEngine(opt.chaos)
	if err != nil {
		return err
	}

	var dst io.Writer = os.Stdout
	if opt.output != "" {
		f, err := os.Create(opt.output)
		if err != nil {
			return errors.Wrapf(err, "create %s", opt.output)
		}
		defer f.Close()
		dst = f
	}
	w := bufio.NewWriter(dst)

	written := 0
	write := func(records []bus.Inbound) error {
		for _, in := range records {
			raw := in.Raw
			if opt.pipe {
				raw = bytes.ReplaceAll(raw, []byte{scanner.SOH}, []byte{'|'})
			}
			if _, err := w.Write(raw); err != nil {
				return errors.Wrap(err, "write record")
			}
			if err := w.WriteByte('\n'); err != nil {
				return errors.Wrap(err, "write record")
			}
			written++
		}
		return nil
	}

	now := time.Now().UTC()
	for i := 0; i < opt.count; i++ {
		ts := now.Add(time.Duration(i) * opt.interval)
		in := bus.Inbound{Seq: uint64(i + 1), RecvTs: ts.UnixNano(), Raw: gen.Next(ts)}
		if err := write(engine.Process(in)); err != nil {
			return err
		}
	}
	if err := write(engine.Flush()); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return errors.Wrap(err, "flush output")
	}

	logs.Infof("generated %d quotes and %d orders, wrote %d records", gen.Quotes(), gen.Orders(), written)
	return nil
}

func generatorConfig(opt options) (mdg.Config, error) {
	var symbols []string
	for _, s := range strings.Split(opt.symbols, ",") {
		if s = strings.TrimSpace(s); s != "" {
			symbols = append(symbols, s)
		}
	}

	values := []struct {
		name string
		raw  string
		dst  *decimal.Decimal
	}{
		{"base-price", opt.basePrice, new(decimal.Decimal)},
		{"tick", opt.tick, new(decimal.Decimal)},
		{"spread", opt.spread, new(decimal.Decimal)},
		{"order-qty", opt.orderQty, new(decimal.Decimal)},
	}
	for _, v := range values {
		d, err := decimal.NewFromString(v.raw)
		if err != nil {
			return mdg.Config{}, errors.Wrapf(err, "parse -%s", v.name)
		}
		*v.dst = d
	}

	return mdg.Config{
		Symbols:    symbols,
		ClientID:   opt.clientID,
		BasePrice:  *values[0].dst,
		Tick:       *values[1].dst,
		Spread:     *values[2].dst,
		OrderQty:   *values[3].dst,
		OrderEvery: opt.orderEvery,
	}, nil
}
