package orderbook

// Ladder is a side-specific ordered collection of price levels, stored as a
// sorted contiguous slice (§9 "Side ladder as sorted contiguous sequence vs
// tree"): cache locality dominates at the P <= ~150 sizes this engine
// expects, so a sorted slice with binary search beats a tree's pointer
// chasing. Best price is always at index 0.
type Ladder struct {
	levels []*PriceLevel
	// less reports whether price a sorts before price b for this side:
	// descending for bids (best = highest), ascending for asks (best =
	// lowest).
	less func(a, b uint32) bool
}

// NewBidLadder returns a ladder ordered best-first by descending price.
func NewBidLadder() *Ladder {
	return &Ladder{less: func(a, b uint32) bool { return a > b }}
}

// NewAskLadder returns a ladder ordered best-first by ascending price.
func NewAskLadder() *Ladder {
	return &Ladder{less: func(a, b uint32) bool { return a < b }}
}

// Best returns the top-of-book level, or nil if the ladder is empty.
func (l *Ladder) Best() *PriceLevel {
	if len(l.levels) == 0 {
		return nil
	}
	return l.levels[0]
}

// Empty reports whether the ladder has no levels.
func (l *Ladder) Empty() bool {
	return len(l.levels) == 0
}

// searchIndex performs a binary search over the sorted slice using the
// ladder's ordering, returning the insertion point and an exact-match flag.
func (l *Ladder) searchIndex(price uint32) (int, bool) {
	lo, hi := 0, len(l.levels)
	for lo < hi {
		mid := (lo + hi) / 2
		p := l.levels[mid].Price
		if p == price {
			return mid, true
		}
		if l.less(p, price) {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo, false
}

// Get returns the level at price, or nil if none exists.
func (l *Ladder) Get(price uint32) *PriceLevel {
	if i, ok := l.searchIndex(price); ok {
		return l.levels[i]
	}
	return nil
}

// GetOrCreate returns the level at price, creating and inserting it at the
// sorted position if it does not already exist (§4.4 "Rest").
func (l *Ladder) GetOrCreate(price uint32) *PriceLevel {
	i, ok := l.searchIndex(price)
	if ok {
		return l.levels[i]
	}
	lvl := &PriceLevel{Price: price}
	l.levels = append(l.levels, nil)
	copy(l.levels[i+1:], l.levels[i:])
	l.levels[i] = lvl
	return lvl
}

// Remove drops the (now-empty) level at price from the ladder (§3 "A price
// level ... is destroyed as soon as it becomes empty").
func (l *Ladder) Remove(price uint32) {
	i, ok := l.searchIndex(price)
	if !ok {
		return
	}
	copy(l.levels[i:], l.levels[i+1:])
	l.levels[len(l.levels)-1] = nil
	l.levels = l.levels[:len(l.levels)-1]
}

// Levels returns the levels best-first, for diagnostics (§11.4 depth query).
func (l *Ladder) Levels() []*PriceLevel {
	return l.levels
}
