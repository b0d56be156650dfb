// Package orderbook implements the per-symbol matching core: price-time
// priority order books, the matching engine that routes requests to them,
// and the event types they emit.
package orderbook

import "fmt"

// Side is the resting/aggressing direction of an order.
type Side uint8

const (
	Buy Side = iota
	Sell
)

func (s Side) String() string {
	if s == Buy {
		return "B"
	}
	return "S"
}

// Type distinguishes Market (price == 0) from Limit orders.
type Type uint8

const (
	Limit Type = iota
	Market
)

// maxSymbolLen is the inline storage budget for a symbol token (§3).
const maxSymbolLen = 16

// Symbol is a short ASCII token stored inline, avoiding a heap allocation
// per order.
type Symbol struct {
	buf [maxSymbolLen]byte
	n   uint8
}

// NewSymbol validates and packs s into a Symbol. It returns an error if s is
// empty or longer than 16 bytes (§7 "Oversize symbol").
func NewSymbol(s string) (Symbol, error) {
	var sym Symbol
	if len(s) == 0 {
		return sym, fmt.Errorf("orderbook: empty symbol")
	}
	if len(s) > maxSymbolLen {
		return sym, fmt.Errorf("orderbook: symbol %q exceeds %d bytes", s, maxSymbolLen)
	}
	copy(sym.buf[:], s)
	sym.n = uint8(len(s))
	return sym, nil
}

func (s Symbol) String() string {
	return string(s.buf[:s.n])
}

// Key identifies a participant's order: (user_id, user_order_id).
type Key struct {
	UserID      uint32
	UserOrderID uint32
}

// Order is the matching engine's core entity. Orders are allocated from a
// Pool (pool.go) and returned to it once terminal (§11.1).
type Order struct {
	Key    Key
	Symbol Symbol

	Price        uint32
	OrigQty      uint32
	RemainingQty uint32

	Side Side
	Type Type

	// Seq is the monotonic arrival sequence number assigned by the matcher
	// at registration time (§4.4 "Time priority determinism"). The book
	// does not read it: time priority within a price level comes from the
	// FIFO list order, and orders are appended in arrival order.
	Seq uint64

	// prev/next thread the order into its PriceLevel's FIFO list. A
	// resting order's list membership is the "stable handle" the order
	// index (book.go) refers to.
	prev, next *Order
	level      *PriceLevel
}

// Resting reports whether the order has residual quantity and is a Limit
// order — i.e. it would rest in the book (§3 "An order ... is said to
// rest").
func (o *Order) Resting() bool {
	return o.RemainingQty > 0 && o.Type == Limit
}

func (o *Order) reset() {
	*o = Order{}
}
