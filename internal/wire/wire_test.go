package wire

import (
	"testing"

	"github.com/stretchr/testify/require"

	"vortex/internal/domain/orderbook"
)

func TestSplitRecordsHandlesLFAndCRLF(t *testing.T) {
	got := SplitRecords([]byte("N, 1, IBM, 100, 50, B, 1\r\nC, 1, 1\n"))
	want := []string{"N, 1, IBM, 100, 50, B, 1", "C, 1, 1", ""}
	require.Equal(t, want, got)
}

func TestParseNewOrder(t *testing.T) {
	req, ok, err := ParseRecord("N, 1, IBM, 100, 50, B, 2")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, RequestNew, req.Kind)
	require.Equal(t, uint32(1), req.UserID)
	require.Equal(t, "IBM", req.Symbol)
	require.Equal(t, uint32(100), req.Price)
	require.Equal(t, uint32(50), req.Quantity)
	require.Equal(t, orderbook.Buy, req.Side)
	require.Equal(t, uint32(2), req.UserOrderID)
}

func TestParseNewOrderRejectsZeroQuantity(t *testing.T) {
	_, _, err := ParseRecord("N, 1, IBM, 100, 0, B, 2")
	require.Error(t, err)
}

func TestParseNewOrderRejectsBadSide(t *testing.T) {
	_, _, err := ParseRecord("N, 1, IBM, 100, 10, X, 2")
	require.Error(t, err)
}

func TestParseNewOrderRejectsOversizeSymbol(t *testing.T) {
	_, _, err := ParseRecord("N, 1, WAYTOOLONGSYMBOLNAME, 100, 10, B, 2")
	require.Error(t, err)
}

func TestParseCancel(t *testing.T) {
	req, ok, err := ParseRecord("C, 1, 2")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, RequestCancel, req.Kind)
	require.Equal(t, uint32(1), req.UserID)
	require.Equal(t, uint32(2), req.UserOrderID)
}

func TestParseFlush(t *testing.T) {
	req, ok, err := ParseRecord("F")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, RequestFlush, req.Kind)
}

func TestParseSkipsBlankAndComment(t *testing.T) {
	for _, line := range []string{"", "   ", "# a comment"} {
		_, ok, err := ParseRecord(line)
		require.NoError(t, err, "line %q", line)
		require.False(t, ok, "line %q should be skipped", line)
	}
}

func TestFormatEvents(t *testing.T) {
	cases := []struct {
		name string
		ev   orderbook.Event
		want string
	}{
		{"ack", orderbook.Event{Kind: orderbook.EventAck, UserID: 1, UserOrderID: 1, Symbol: "IBM"}, "A, 1, 1, IBM\n"},
		{"trade", orderbook.Event{Kind: orderbook.EventTrade, BuyUserID: 2, BuyUserOrderID: 2, SellUserID: 1, SellUserOrderID: 1, Price: 100, Quantity: 50, Symbol: "IBM"}, "T, 2, 2, 1, 1, 100, 50, IBM\n"},
		{"tob-present", orderbook.Event{Kind: orderbook.EventTopOfBook, Side: orderbook.Sell, State: orderbook.TopOfBookPresent, Price: 100, TotalQuantity: 50, Symbol: "IBM"}, "B, S, 100, 50, IBM\n"},
		{"tob-eliminated", orderbook.Event{Kind: orderbook.EventTopOfBook, Side: orderbook.Sell, State: orderbook.TopOfBookEliminated, Symbol: "IBM"}, "B, S, -, -, IBM\n"},
		{"cancel-ack", orderbook.Event{Kind: orderbook.EventCancelAck, UserID: 1, UserOrderID: 1, Symbol: "IBM"}, "C, 1, 1, IBM\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, FormatEvent(tc.ev))
		})
	}
}
