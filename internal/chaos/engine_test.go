package chaos

import (
	"testing"
	"time"

	"marketspread/internal/bus"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func records(n int) []bus.Inbound {
	out := make([]bus.Inbound, n)
	for i := range out {
		out[i] = bus.Inbound{Seq: uint64(i + 1), RecvTs: int64(1000 * (i + 1)), Raw: []byte{byte(i)}}
	}
	return out
}

func run(e *Engine, in []bus.Inbound) []bus.Inbound {
	var out []bus.Inbound
	for _, r := range in {
		out = append(out, e.Process(r)...)
	}
	return append(out, e.Flush()...)
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		desc string
		cfg  Config
	}{
		{"drop rate", Config{DropRate: 1.5}},
		{"duplicate rate", Config{DuplicateRate: -0.1}},
		{"max delay", Config{MaxDelay: -time.Second}},
	}
	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			_, err := NewEngine(tc.cfg)
			assert.Error(t, err)
		})
	}
}

func TestPassThrough(t *testing.T) {
	e, err := NewEngine(Config{Seed: 1})
	require.NoError(t, err)

	in := records(50)
	assert.Equal(t, in, run(e, in))

	var nilEngine *Engine
	assert.Equal(t, in[:1], nilEngine.Process(in[0]))
	assert.Nil(t, nilEngine.Flush())
}

func TestDropAll(t *testing.T) {
	e, err := NewEngine(Config{Seed: 1, DropRate: 1})
	require.NoError(t, err)
	assert.Empty(t, run(e, records(20)))
}

func TestDuplicateAll(t *testing.T) {
	e, err := NewEngine(Config{Seed: 1, DuplicateRate: 1})
	require.NoError(t, err)

	out := run(e, records(10))
	require.Len(t, out, 20)
	for i := 0; i < len(out); i += 2 {
		assert.Equal(t, out[i], out[i+1])
	}
}

func TestReorderKeepsEveryRecord(t *testing.T) {
	e, err := NewEngine(Config{Seed: 7, ReorderWindow: 4})
	require.NoError(t, err)

	in := records(100)
	out := run(e, in)
	require.Len(t, out, len(in))

	seen := make(map[uint64]bool, len(out))
	for _, r := range out {
		seen[r.Seq] = true
	}
	assert.Len(t, seen, len(in))
	assert.NotEqual(t, in, out)
}

func TestDelay(t *testing.T) {
	e, err := NewEngine(Config{Seed: 3, MaxDelay: time.Microsecond})
	require.NoError(t, err)

	in := records(20)
	out := run(e, in)
	require.Len(t, out, len(in))
	for i := range out {
		assert.GreaterOrEqual(t, out[i].RecvTs, in[i].RecvTs)
		assert.LessOrEqual(t, out[i].RecvTs, in[i].RecvTs+int64(time.Microsecond))
	}
}

func TestDelayReordersByReceiveTime(t *testing.T) {
	in := records(200)
	e, err := NewEngine(Config{Seed: 11, MaxDelay: 50 * time.Microsecond, ReorderWindow: len(in) + 1})
	require.NoError(t, err)

	for _, r := range in {
		assert.Empty(t, e.Process(r))
	}
	out := e.Flush()
	require.Len(t, out, len(in))

	reordered := false
	for i := 1; i < len(out); i++ {
		assert.LessOrEqual(t, out[i-1].RecvTs, out[i].RecvTs)
		if out[i].Seq < out[i-1].Seq {
			reordered = true
		}
	}
	assert.True(t, reordered, "delays larger than the record spacing reorder the stream")
}
