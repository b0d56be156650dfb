package orderbook

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newOrder(pool *Pool, uid, uoid uint32, symbol string, price, qty uint32, side Side, seq uint64) *Order {
	o := pool.Get()
	sym, _ := NewSymbol(symbol)
	o.Key = Key{UserID: uid, UserOrderID: uoid}
	o.Symbol = sym
	o.Price = price
	o.OrigQty = qty
	o.RemainingQty = qty
	o.Side = side
	o.Seq = seq
	if price == 0 {
		o.Type = Market
	} else {
		o.Type = Limit
	}
	return o
}

func kindsOf(events []Event) []EventKind {
	out := make([]EventKind, len(events))
	for i, e := range events {
		out[i] = e.Kind
	}
	return out
}

func eqKinds(t *testing.T, got []Event, want ...EventKind) {
	t.Helper()
	require.Equal(t, want, kindsOf(got))
}

// Scenario 1 (§8): a resting sell fully crossed by an incoming buy.
func TestSimpleCross(t *testing.T) {
	pool := NewPool()
	b := NewBook("IBM", pool)
	var out []Event

	out = b.AddOrder(newOrder(pool, 1, 1, "IBM", 100, 50, Sell, 1), out)
	out = b.AddOrder(newOrder(pool, 2, 2, "IBM", 100, 50, Buy, 2), out)

	eqKinds(t, out,
		EventAck, EventTopOfBook,
		EventAck, EventTrade, EventTopOfBook,
	)

	trade := out[3]
	require.Equal(t, uint32(2), trade.BuyUserID)
	require.Equal(t, uint32(1), trade.SellUserID)
	require.Equal(t, uint32(50), trade.Quantity)
	require.Equal(t, uint32(100), trade.Price)

	tob := out[4]
	require.Equal(t, Sell, tob.Side)
	require.Equal(t, TopOfBookEliminated, tob.State)

	require.True(t, b.Asks.Empty(), "asks should be empty after full cross")
	require.True(t, b.Bids.Empty(), "bids should be empty after full cross")
}

// Scenario 2: partial fill leaves a resting residual.
func TestPartialFillRests(t *testing.T) {
	pool := NewPool()
	b := NewBook("IBM", pool)
	var out []Event

	out = b.AddOrder(newOrder(pool, 1, 1, "IBM", 100, 50, Sell, 1), out)
	out = b.AddOrder(newOrder(pool, 2, 2, "IBM", 100, 30, Buy, 2), out)

	lvl := b.Asks.Get(100)
	require.NotNil(t, lvl)
	require.Equal(t, uint64(20), lvl.TotalQty)

	last := out[len(out)-1]
	require.Equal(t, EventTopOfBook, last.Kind)
	require.Equal(t, uint64(20), last.TotalQuantity)
}

// Scenario 3: FIFO time priority across two passive fills.
func TestTimePriorityFIFO(t *testing.T) {
	pool := NewPool()
	b := NewBook("IBM", pool)
	var out []Event

	out = b.AddOrder(newOrder(pool, 1, 1, "IBM", 100, 10, Sell, 1), out)
	out = b.AddOrder(newOrder(pool, 2, 2, "IBM", 100, 20, Sell, 2), out)
	out = b.AddOrder(newOrder(pool, 3, 3, "IBM", 100, 30, Sell, 3), out)

	out = out[:0]
	agg := newOrder(pool, 9, 10, "IBM", 0, 25, Buy, 4)
	out = b.AddOrder(agg, out)

	var trades []Event
	for _, e := range out {
		if e.Kind == EventTrade {
			trades = append(trades, e)
		}
	}
	require.Len(t, trades, 2)
	require.Equal(t, uint32(1), trades[0].SellUserOrderID)
	require.Equal(t, uint32(10), trades[0].Quantity)
	require.Equal(t, uint32(2), trades[1].SellUserOrderID)
	require.Equal(t, uint32(15), trades[1].Quantity)

	lvl := b.Asks.Get(100)
	require.Equal(t, uint64(35), lvl.TotalQty, "expected 5 + 30 remaining at 100")
}

// Scenario 4: cancelling the sole order empties best and elides TOB.
func TestCancelEmptiesBookAndElidesTOB(t *testing.T) {
	pool := NewPool()
	b := NewBook("IBM", pool)
	var out []Event

	out = b.AddOrder(newOrder(pool, 1, 1, "IBM", 100, 50, Buy, 1), out)
	eqKinds(t, out, EventAck, EventTopOfBook)

	out = out[:0]
	out = b.CancelOrder(Key{UserID: 1, UserOrderID: 1}, out)
	eqKinds(t, out, EventCancelAck, EventTopOfBook)
	require.Equal(t, Buy, out[1].Side)
	require.Equal(t, TopOfBookEliminated, out[1].State)
	require.Zero(t, b.RestingCount())
}

func TestCancelUnknownStillAcks(t *testing.T) {
	pool := NewPool()
	b := NewBook("IBM", pool)
	out := b.CancelOrder(Key{UserID: 99, UserOrderID: 1}, nil)
	eqKinds(t, out, EventCancelAck)
}

func TestMarketBuyAgainstEmptyBookNoTOB(t *testing.T) {
	pool := NewPool()
	b := NewBook("IBM", pool)
	out := b.AddOrder(newOrder(pool, 1, 1, "IBM", 0, 10, Buy, 1), nil)
	eqKinds(t, out, EventAck)
}

func TestNoCrossedBookInvariant(t *testing.T) {
	pool := NewPool()
	b := NewBook("IBM", pool)
	var out []Event
	out = b.AddOrder(newOrder(pool, 1, 1, "IBM", 99, 10, Buy, 1), out)
	out = b.AddOrder(newOrder(pool, 2, 2, "IBM", 101, 10, Sell, 2), out)
	_ = out

	bid := b.Bids.Best()
	ask := b.Asks.Best()
	require.NotNil(t, bid)
	require.NotNil(t, ask)
	require.Less(t, bid.Price, ask.Price, "book crossed")
}
