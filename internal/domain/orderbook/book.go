package orderbook

// topSnapshot is the last emitted (price, total-quantity) for one side,
// used for top-of-book change detection (§3 "previous-top snapshot").
type topSnapshot struct {
	price    uint32
	qty      uint64
	hasPrice bool
}

// Book is a single symbol's order book: two side Ladders plus an order
// index for O(1) cancel-by-key (§3 "Order Book (per symbol)").
type Book struct {
	Symbol string

	Bids *Ladder
	Asks *Ladder

	index map[Key]*Order

	prevBid topSnapshot
	prevAsk topSnapshot

	pool *Pool
}

// NewBook creates an empty order book for one symbol.
func NewBook(symbol string, pool *Pool) *Book {
	return &Book{
		Symbol: symbol,
		Bids:   NewBidLadder(),
		Asks:   NewAskLadder(),
		index:  make(map[Key]*Order),
		pool:   pool,
	}
}

// AddOrder runs the full add-order pipeline of §4.4: ACK, match loop, rest,
// top-of-book check. Events are appended to out in emission order and the
// (possibly grown) slice is returned.
func (b *Book) AddOrder(o *Order, out []Event) []Event {
	out = append(out, Event{
		Kind:        EventAck,
		Symbol:      b.Symbol,
		UserID:      o.Key.UserID,
		UserOrderID: o.Key.UserOrderID,
	})

	out = b.match(o, out)

	if o.Resting() {
		lvl := b.ladderFor(o.Side).GetOrCreate(o.Price)
		lvl.append(o)
		b.index[o.Key] = o
	} else {
		// Either fully filled, or a Market order with residual quantity
		// that is discarded rather than rested (§4.4): neither enters the
		// book, so both are returned to the pool here.
		b.pool.Put(o)
	}

	out = b.topOfBookCheck(out)
	return out
}

// ladderFor returns the own-side ladder a resting order belongs to.
func (b *Book) ladderFor(s Side) *Ladder {
	if s == Buy {
		return b.Bids
	}
	return b.Asks
}

// match runs the §4.4 match loop: walk the opposite ladder's best level
// head-first, crossing while price allows, until the order is filled or no
// more crossing is possible.
func (b *Book) match(o *Order, out []Event) []Event {
	opp := b.ladderFor(oppositeSide(o.Side))

	for o.RemainingQty > 0 {
		lvl := opp.Best()
		if lvl == nil {
			break
		}

		if !canCross(o, lvl.Price) {
			break
		}

		for o.RemainingQty > 0 {
			r := lvl.Head()
			if r == nil {
				break
			}

			qty := min32(o.RemainingQty, r.RemainingQty)

			var ev Event
			ev.Kind = EventTrade
			ev.Symbol = b.Symbol
			ev.Price = lvl.Price
			ev.Quantity = qty
			if o.Side == Buy {
				ev.BuyUserID, ev.BuyUserOrderID = o.Key.UserID, o.Key.UserOrderID
				ev.SellUserID, ev.SellUserOrderID = r.Key.UserID, r.Key.UserOrderID
			} else {
				ev.BuyUserID, ev.BuyUserOrderID = r.Key.UserID, r.Key.UserOrderID
				ev.SellUserID, ev.SellUserOrderID = o.Key.UserID, o.Key.UserOrderID
			}
			out = append(out, ev)

			o.RemainingQty -= qty
			r.RemainingQty -= qty
			lvl.TotalQty -= uint64(qty)

			if r.RemainingQty == 0 {
				lvl.removeHead()
				delete(b.index, r.Key)
				b.pool.Put(r)
			}
		}

		if lvl.Empty() {
			opp.Remove(lvl.Price)
		}
	}

	return out
}

// CancelOrder implements §4.4 "Cancel". A Cancel-Ack is always emitted,
// whether or not the order existed, followed by a top-of-book check.
func (b *Book) CancelOrder(key Key, out []Event) []Event {
	if o, ok := b.index[key]; ok {
		lvl := b.ladderFor(o.Side).Get(o.Price)
		if lvl != nil {
			lvl.unlink(o)
			if lvl.Empty() {
				b.ladderFor(o.Side).Remove(o.Price)
			}
		}
		delete(b.index, key)
		b.pool.Put(o)
	}

	out = append(out, Event{
		Kind:        EventCancelAck,
		Symbol:      b.Symbol,
		UserID:      key.UserID,
		UserOrderID: key.UserOrderID,
	})

	return b.topOfBookCheck(out)
}

// topOfBookCheck compares the current best (price, qty) on each side
// against the stored snapshot and emits change/elimination events as needed
// (§4.4 "Top-of-book change detection"). Buy precedes Sell in the emission
// order.
func (b *Book) topOfBookCheck(out []Event) []Event {
	out = b.sideTopOfBookCheck(out, Buy, b.Bids, &b.prevBid)
	out = b.sideTopOfBookCheck(out, Sell, b.Asks, &b.prevAsk)
	return out
}

func (b *Book) sideTopOfBookCheck(out []Event, side Side, ladder *Ladder, prev *topSnapshot) []Event {
	best := ladder.Best()

	if best == nil {
		if prev.hasPrice {
			out = append(out, Event{
				Kind:   EventTopOfBook,
				Symbol: b.Symbol,
				Side:   side,
				State:  TopOfBookEliminated,
			})
			*prev = topSnapshot{}
		}
		return out
	}

	if !prev.hasPrice || prev.price != best.Price || prev.qty != best.TotalQty {
		out = append(out, Event{
			Kind:          EventTopOfBook,
			Symbol:        b.Symbol,
			Side:          side,
			State:         TopOfBookPresent,
			Price:         best.Price,
			TotalQuantity: best.TotalQty,
		})
		*prev = topSnapshot{price: best.Price, qty: best.TotalQty, hasPrice: true}
	}

	return out
}

// Depth returns the top n price levels per side, for diagnostics (§11.4).
// It never mutates book state and must only be called from the Matcher
// goroutine that owns this book.
func (b *Book) Depth(n int) []DepthLevel {
	out := make([]DepthLevel, 0, 2*n)
	for i, lvl := range b.Bids.Levels() {
		if i >= n {
			break
		}
		out = append(out, DepthLevel{Side: Buy, Price: lvl.Price, Qty: lvl.TotalQty})
	}
	for i, lvl := range b.Asks.Levels() {
		if i >= n {
			break
		}
		out = append(out, DepthLevel{Side: Sell, Price: lvl.Price, Qty: lvl.TotalQty})
	}
	return out
}

// RestingCount reports the number of orders held in the order index, for
// metrics gauges.
func (b *Book) RestingCount() int {
	return len(b.index)
}

func oppositeSide(s Side) Side {
	if s == Buy {
		return Sell
	}
	return Buy
}

// canCross implements §4.4 step 2: Market orders always cross; a Buy limit
// crosses when its price is at or above the opposing level; a Sell limit
// crosses when its price is at or below it.
func canCross(o *Order, levelPrice uint32) bool {
	if o.Type == Market {
		return true
	}
	if o.Side == Buy {
		return o.Price >= levelPrice
	}
	return o.Price <= levelPrice
}

func min32(a, b uint32) uint32 {
	if a < b {
		return a
	}
	return b
}
