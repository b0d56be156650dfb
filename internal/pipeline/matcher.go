package pipeline

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"vortex/internal/bus"
	"vortex/internal/domain/orderbook"
	"vortex/internal/metrics"
	"vortex/internal/sequence"
	"vortex/internal/wire"
)

// MatcherInQueue is the subset of spsc.Queue[wire.Request] the Matcher
// drains.
type MatcherInQueue interface {
	Pop() (wire.Request, bool)
	Len() int
}

// OutQueue is the subset of spsc.Queue[orderbook.Event] the Matcher feeds.
type OutQueue interface {
	Push(orderbook.Event) bool
	Len() int
}

// Matcher is pipeline stage 2 (§4.3): it drains InQ in batches, dispatches
// each request to the matching engine, and drains the resulting events into
// OutQ.
type Matcher struct {
	inQ    MatcherInQueue
	outQ   OutQueue
	engine *orderbook.Engine
	seq    *sequence.Sequencer
	bus    *bus.Publisher

	batchSize          int
	outQRetryAttempts  int
	idleFastSleep      time.Duration
	idleFastIterations int
	idleSlowSleep      time.Duration

	metrics *metrics.Metrics
	log     *zap.Logger

	processed atomic.Uint64
}

// NewMatcher constructs the matcher stage.
func NewMatcher(
	inQ MatcherInQueue,
	outQ OutQueue,
	engine *orderbook.Engine,
	seq *sequence.Sequencer,
	publisher *bus.Publisher,
	batchSize, outQRetryAttempts int,
	idleFastSleep time.Duration,
	idleFastIterations int,
	idleSlowSleep time.Duration,
	m *metrics.Metrics,
	log *zap.Logger,
) *Matcher {
	return &Matcher{
		inQ: inQ, outQ: outQ, engine: engine, seq: seq, bus: publisher,
		batchSize: batchSize, outQRetryAttempts: outQRetryAttempts,
		idleFastSleep: idleFastSleep, idleFastIterations: idleFastIterations,
		idleSlowSleep: idleSlowSleep,
		metrics:       m, log: log,
	}
}

// Processed returns the total requests dispatched to the engine, for the
// controller's shutdown report (§4.6 step 4).
func (m *Matcher) Processed() uint64 {
	return m.processed.Load()
}

// Run drains InQ in target-size batches (§4.3) until ctx is cancelled, then
// drains any residue before returning (§4.6 "drains any InQ residue
// itself").
func (m *Matcher) Run(ctx context.Context) error {
	scratch := make([]orderbook.Event, 0, 64)
	idleIterations := 0

	for {
		select {
		case <-ctx.Done():
			m.drainResidual(&scratch)
			return nil
		default:
		}

		popped := m.runBatch(&scratch)
		m.sampleGauges()

		if popped == 0 {
			idleIterations++
			if idleIterations <= m.idleFastIterations {
				time.Sleep(m.idleFastSleep)
			} else {
				time.Sleep(m.idleSlowSleep)
			}
			continue
		}
		idleIterations = 0
	}
}

// sampleGauges refreshes the queue-occupancy and resting-order gauges once
// per batch, the same ticker-driven-refresh cadence the pack uses for
// periodic metrics (handikong-gopherex's wallet scanner).
func (m *Matcher) sampleGauges() {
	if m.metrics == nil {
		return
	}
	m.metrics.InQOccupancy.Set(float64(m.inQ.Len()))
	m.metrics.OutQOccupancy.Set(float64(m.outQ.Len()))
	m.metrics.RestingOrders.Set(float64(m.engine.RestingOrders()))
}

// runBatch drains up to batchSize requests and returns how many were
// popped.
func (m *Matcher) runBatch(scratch *[]orderbook.Event) int {
	popped := 0
	for i := 0; i < m.batchSize; i++ {
		req, ok := m.inQ.Pop()
		if !ok {
			break
		}
		popped++
		m.dispatch(req, scratch)
	}
	return popped
}

// drainResidual keeps popping InQ until empty, used on shutdown.
func (m *Matcher) drainResidual(scratch *[]orderbook.Event) {
	for {
		req, ok := m.inQ.Pop()
		if !ok {
			return
		}
		m.dispatch(req, scratch)
	}
}

func (m *Matcher) dispatch(req wire.Request, scratch *[]orderbook.Event) {
	m.processed.Add(1)
	if m.metrics != nil {
		m.metrics.MessagesMatched.Inc()
	}

	*scratch = (*scratch)[:0]

	switch req.Kind {
	case wire.RequestNew:
		*scratch = m.processNewOrder(req, *scratch)
	case wire.RequestCancel:
		key := orderbook.Key{UserID: req.UserID, UserOrderID: req.UserOrderID}
		*scratch = m.engine.ProcessCancel(key, *scratch)
	case wire.RequestFlush:
		m.engine.Flush()
	}

	m.publish(*scratch)
}

func (m *Matcher) processNewOrder(req wire.Request, scratch []orderbook.Event) []orderbook.Event {
	sym, err := orderbook.NewSymbol(req.Symbol)
	if err != nil {
		// Already validated by the ingress parser; defensive only.
		m.log.Warn("rejecting new order with invalid symbol", zap.String("symbol", req.Symbol), zap.Error(err))
		return scratch
	}

	o := m.engine.Pool().Get()
	o.Key = orderbook.Key{UserID: req.UserID, UserOrderID: req.UserOrderID}
	o.Symbol = sym
	o.Price = req.Price
	o.OrigQty = req.Quantity
	o.RemainingQty = req.Quantity
	o.Side = req.Side
	o.Seq = m.seq.Next()
	if req.Price == 0 {
		o.Type = orderbook.Market
	} else {
		o.Type = orderbook.Limit
	}

	return m.engine.ProcessNewOrder(o, scratch)
}

func (m *Matcher) publish(events []orderbook.Event) {
	for _, e := range events {
		if e.Kind == orderbook.EventTrade && m.metrics != nil {
			m.metrics.TradesExecuted.Inc()
		}
		if m.bus != nil && (e.Kind == orderbook.EventTrade || e.Kind == orderbook.EventTopOfBook) {
			m.bus.Publish(e)
		}

		if !pushWithRetry(func() bool { return m.outQ.Push(e) }, m.outQRetryAttempts) {
			m.log.Warn("OutQ full, dropping event", zap.String("symbol", e.Symbol))
			if m.metrics != nil {
				m.metrics.RecordsDropped.WithLabelValues("matcher").Inc()
			}
		}
	}
}
