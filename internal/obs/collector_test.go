package obs

import (
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"marketspread/internal/schema"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServe(t *testing.T) {
	m := NewMetrics()
	m.ObserveOutcome(schema.OutcomeUpdated, time.Millisecond)
	reg := prometheus.NewRegistry()
	require.NoError(t, reg.Register(NewCollector(m)))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	srv := Serve(addr, reg)
	defer srv.Close()

	var body []byte
	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/metrics")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		body, err = io.ReadAll(resp.Body)
		return err == nil && resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)
	assert.Contains(t, string(body), `marketspread_outcomes_total{outcome="updated"} 1`)
}

func TestServeAddressInUse(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	srv := Serve(ln.Addr().String(), prometheus.NewRegistry())
	// the listen failure is logged, the caller keeps running
	time.Sleep(50 * time.Millisecond)
	assert.NoError(t, srv.Close())
}
