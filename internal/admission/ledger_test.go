package admission

import (
	"testing"

	"marketspread/internal/schema"
	"marketspread/pkg/exception"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerLifecycle(t *testing.T) {
	l := NewLedger(4)

	rec := schema.OrderRecord{OrderID: "a", Symbol: "TSLA", Status: schema.OrderStatusAccepted}
	require.NoError(t, l.Reserve(rec))

	got, err := l.Record("a")
	require.NoError(t, err)
	assert.Equal(t, schema.OrderStatusPending, got.Status, "reserve always starts pending")

	assert.ErrorIs(t, l.Reserve(rec), exception.ErrDuplicateOrder)
	assert.Equal(t, 1, l.Len())

	final, err := l.Finalize("a", schema.OrderStatusRejected, schema.RejectReasonSpreadHalt)
	require.NoError(t, err)
	assert.Equal(t, schema.OrderStatusRejected, final.Status)
	assert.Equal(t, schema.RejectReasonSpreadHalt, final.Reason)

	_, err = l.Finalize("a", schema.OrderStatusAccepted, schema.RejectReasonNone)
	assert.ErrorIs(t, err, exception.ErrInvalidTransition)

	got, err = l.Record("a")
	require.NoError(t, err)
	assert.Equal(t, schema.OrderStatusRejected, got.Status, "terminal state is final")
}

func TestLedgerErrors(t *testing.T) {
	l := NewLedger(0)

	_, err := l.Record("missing")
	assert.ErrorIs(t, err, exception.ErrOrderNotFound)

	_, err = l.Finalize("missing", schema.OrderStatusAccepted, schema.RejectReasonNone)
	assert.ErrorIs(t, err, exception.ErrOrderNotFound)

	require.NoError(t, l.Reserve(schema.OrderRecord{OrderID: "b"}))
	_, err = l.Finalize("b", schema.OrderStatusPending, schema.RejectReasonNone)
	assert.ErrorIs(t, err, exception.ErrInvalidTransition)
}

func TestLedgerCounts(t *testing.T) {
	l := NewLedger(2)
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, l.Reserve(schema.OrderRecord{OrderID: id}))
	}
	_, err := l.Finalize("a", schema.OrderStatusAccepted, schema.RejectReasonNone)
	require.NoError(t, err)
	_, err = l.Finalize("b", schema.OrderStatusRejected, schema.RejectReasonNoMarket)
	require.NoError(t, err)

	counts := l.Counts()
	assert.Equal(t, 1, counts[schema.OrderStatusAccepted])
	assert.Equal(t, 1, counts[schema.OrderStatusRejected])
	assert.Equal(t, 1, counts[schema.OrderStatusPending])
}
