package orderbook

// PriceLevel holds resting orders sharing one price on one side, in FIFO
// arrival order (§3 "Price Level"). It exists iff its order list is
// non-empty.
type PriceLevel struct {
	Price uint32

	head, tail *Order
	count      int

	// TotalQty is a cached sum of resting orders' RemainingQty, kept in
	// sync on every append/remove (§3 invariant).
	TotalQty uint64
}

// Empty reports whether the level has no resting orders.
func (l *PriceLevel) Empty() bool {
	return l.count == 0
}

// Head returns the oldest (highest-priority) resting order, or nil.
func (l *PriceLevel) Head() *Order {
	return l.head
}

// append adds o to the tail of the FIFO list, preserving time priority.
func (l *PriceLevel) append(o *Order) {
	o.level = l
	o.prev = l.tail
	o.next = nil
	if l.tail != nil {
		l.tail.next = o
	} else {
		l.head = o
	}
	l.tail = o
	l.count++
	l.TotalQty += uint64(o.RemainingQty)
}

// removeHead unlinks and returns the current head, used when a passive
// order is fully filled during matching (§4.4 step 4).
func (l *PriceLevel) removeHead() *Order {
	o := l.head
	if o == nil {
		return nil
	}
	l.unlink(o)
	return o
}

// unlink removes o from the list from any position, the operation a cancel
// needs (§4.4 "Cancel"). It decrements TotalQty by o.RemainingQty as it
// stands at the time of the call: for a fully-filled order that is already
// zero (the match loop already debited TotalQty trade-by-trade), and for a
// cancelled order it is the full residual being pulled from the book.
func (l *PriceLevel) unlink(o *Order) {
	l.TotalQty -= uint64(o.RemainingQty)
	if o.prev != nil {
		o.prev.next = o.next
	} else {
		l.head = o.next
	}
	if o.next != nil {
		o.next.prev = o.prev
	} else {
		l.tail = o.prev
	}
	o.prev, o.next, o.level = nil, nil, nil
	l.count--
}
