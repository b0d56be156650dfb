package orderbook

import "sync"

// Pool is a sync.Pool wrapper for *Order, adapted from the teacher's
// generic infra/memory.Pool[T]. The teacher paired its pool with an epoch/RCU
// reclaimer (infra/memory/epoch.go, rcu/reader.go) because pooled orders
// could still be read concurrently by a snapshot reader. This engine's order
// books are mutated exclusively by the single Matcher goroutine (§5 "Shared
// resources") with no concurrent reader of resting-order memory, so that
// reclamation-safety problem does not exist here: an order is only ever
// returned to the pool once it is terminal (§4.4), and only the Matcher
// goroutine ever touches the pool. Plain sync.Pool is therefore sufficient.
type Pool struct {
	p sync.Pool
}

// NewPool constructs an order pool.
func NewPool() *Pool {
	return &Pool{
		p: sync.Pool{
			New: func() any { return new(Order) },
		},
	}
}

// Get returns a zeroed Order, either freshly allocated or reused.
func (p *Pool) Get() *Order {
	o := p.p.Get().(*Order)
	o.reset()
	return o
}

// Put returns a terminal order (fully filled or cancelled) to the pool.
func (p *Pool) Put(o *Order) {
	o.prev, o.next, o.level = nil, nil, nil
	p.p.Put(o)
}
