package wire

import (
	"strconv"
	"strings"

	"vortex/internal/domain/orderbook"
)

// FormatEvent renders a core Event as one LF-terminated CSV line, per §6.2.
// A single space follows each comma. Depth events (§11.4) are an
// internal-only diagnostic variant and are never written to the wire.
func FormatEvent(e orderbook.Event) string {
	var b strings.Builder
	switch e.Kind {
	case orderbook.EventAck:
		b.WriteString("A, ")
		writeUint(&b, uint64(e.UserID))
		b.WriteString(", ")
		writeUint(&b, uint64(e.UserOrderID))
		b.WriteString(", ")
		b.WriteString(e.Symbol)

	case orderbook.EventTrade:
		b.WriteString("T, ")
		writeUint(&b, uint64(e.BuyUserID))
		b.WriteString(", ")
		writeUint(&b, uint64(e.BuyUserOrderID))
		b.WriteString(", ")
		writeUint(&b, uint64(e.SellUserID))
		b.WriteString(", ")
		writeUint(&b, uint64(e.SellUserOrderID))
		b.WriteString(", ")
		writeUint(&b, uint64(e.Price))
		b.WriteString(", ")
		writeUint(&b, uint64(e.Quantity))
		b.WriteString(", ")
		b.WriteString(e.Symbol)

	case orderbook.EventTopOfBook:
		b.WriteString("B, ")
		b.WriteString(e.Side.String())
		b.WriteString(", ")
		if e.State == orderbook.TopOfBookEliminated {
			b.WriteString("-, -")
		} else {
			writeUint(&b, uint64(e.Price))
			b.WriteString(", ")
			writeUint(&b, e.TotalQuantity)
		}
		b.WriteString(", ")
		b.WriteString(e.Symbol)

	case orderbook.EventCancelAck:
		b.WriteString("C, ")
		writeUint(&b, uint64(e.UserID))
		b.WriteString(", ")
		writeUint(&b, uint64(e.UserOrderID))
		b.WriteString(", ")
		b.WriteString(e.Symbol)
	}
	b.WriteByte('\n')
	return b.String()
}

func writeUint(b *strings.Builder, v uint64) {
	b.WriteString(strconv.FormatUint(v, 10))
}
