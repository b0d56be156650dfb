package orderbook

// Engine is the MatchingEngine of §3: a symbol -> Book map plus a global
// participant key -> symbol map (needed because Cancel requests don't carry
// a symbol). Engine is not safe for concurrent use; the Matcher pipeline
// stage is its sole owner (§5).
type Engine struct {
	books   map[string]*Book
	routing map[Key]string
	pool    *Pool
}

// NewEngine creates an empty matching engine.
func NewEngine() *Engine {
	return &Engine{
		books:   make(map[string]*Book),
		routing: make(map[Key]string),
		pool:    NewPool(),
	}
}

// Pool exposes the shared order allocator so the pipeline can draw orders
// from it when building a NewOrder request into an Order (§11.1).
func (e *Engine) Pool() *Pool {
	return e.pool
}

// bookFor fetches or lazily creates the book for a symbol (§3 "Order books
// are created lazily on first order for a new symbol").
func (e *Engine) bookFor(symbol string) *Book {
	b, ok := e.books[symbol]
	if !ok {
		b = NewBook(symbol, e.pool)
		e.books[symbol] = b
	}
	return b
}

// ProcessNewOrder implements §4.3 "New Order": register routing, then
// delegate to the order's book.
func (e *Engine) ProcessNewOrder(o *Order, out []Event) []Event {
	symbol := o.Symbol.String()
	if _, exists := e.routing[o.Key]; !exists {
		e.routing[o.Key] = symbol
	}
	// A duplicate key whose mapping already exists is retained as-is: see
	// §9 Open Questions, decided in DESIGN.md.
	return e.bookFor(symbol).AddOrder(o, out)
}

// ProcessCancel implements §4.3 "Cancel": route by the global key map, then
// delegate. A Cancel-Ack is always emitted even when the key is unknown.
func (e *Engine) ProcessCancel(key Key, out []Event) []Event {
	symbol, ok := e.routing[key]
	if !ok {
		return append(out, Event{Kind: EventCancelAck, UserID: key.UserID, UserOrderID: key.UserOrderID})
	}
	out = e.bookFor(symbol).CancelOrder(key, out)
	delete(e.routing, key)
	return out
}

// Flush destroys all books and clears both maps (§4.3 "Flush"). No events
// are emitted.
func (e *Engine) Flush() {
	e.books = make(map[string]*Book)
	e.routing = make(map[Key]string)
}

// Depth returns the top n price levels per side for symbol, or nil if the
// symbol has no book (§11.4).
func (e *Engine) Depth(symbol string, n int) []DepthLevel {
	b, ok := e.books[symbol]
	if !ok {
		return nil
	}
	return b.Depth(n)
}

// RestingOrders sums the resting order count across all books, for metrics
// gauges.
func (e *Engine) RestingOrders() int {
	total := 0
	for _, b := range e.books {
		total += b.RestingCount()
	}
	return total
}
