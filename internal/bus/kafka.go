// Package bus implements the optional market-data fan-out sink (§11.3): a
// JSON-encoded copy of every Trade and Top-of-Book event, published to
// Kafka asynchronously and best-effort. It generalizes the teacher's
// jobs/broadcaster.Broadcaster (which replays a durable exit-WAL onto Kafka
// on a ticker) into a direct in-process tap: this engine has no exit-WAL to
// replay from (§1 Non-goals: no persistence), so the ticker-driven
// WAL-scan loop becomes a buffered-channel drain loop with the same
// "publish, log failure, keep going" shape, using kafka-go rather than the
// teacher's sarama client (see DESIGN.md for why sarama has no remaining
// home).
package bus

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"vortex/internal/domain/orderbook"
)

// Publisher fans out Trade/TopOfBook events to Kafka. The zero value (or a
// Publisher built with Enabled=false) is a no-op sink, so the core egress
// path carries no hard dependency on a reachable broker.
type Publisher struct {
	enabled bool
	writer  *kafka.Writer
	log     *zap.Logger

	queue chan orderbook.Event
	done  chan struct{}
}

// marketDataTick is the JSON envelope published to the topic.
type marketDataTick struct {
	Kind     string `json:"kind"`
	Symbol   string `json:"symbol"`
	Side     string `json:"side,omitempty"`
	Price    uint32 `json:"price,omitempty"`
	Quantity uint64 `json:"quantity,omitempty"`
}

// New constructs a Publisher. When enabled is false, brokers/topic are
// ignored and every Publish call is dropped without touching the network.
func New(enabled bool, brokers []string, topic string, log *zap.Logger) *Publisher {
	p := &Publisher{enabled: enabled, log: log, queue: make(chan orderbook.Event, 4096), done: make(chan struct{})}
	if !enabled {
		return p
	}
	p.writer = &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		Async:        true,
	}
	go p.run()
	return p
}

// Publish enqueues a Trade or TopOfBook event for async fan-out. It never
// blocks the matcher that calls it: a full internal queue drops the tick and
// logs a warning, the same backpressure stance as §7's queue-full policy.
func (p *Publisher) Publish(e orderbook.Event) {
	if !p.enabled {
		return
	}
	select {
	case p.queue <- e:
	default:
		p.log.Warn("market data tick dropped, publisher queue full", zap.String("symbol", e.Symbol))
	}
}

func (p *Publisher) run() {
	for {
		select {
		case e, ok := <-p.queue:
			if !ok {
				return
			}
			p.publishOnce(e)
		case <-p.done:
			return
		}
	}
}

func (p *Publisher) publishOnce(e orderbook.Event) {
	tick := marketDataTick{Symbol: e.Symbol}
	switch e.Kind {
	case orderbook.EventTrade:
		tick.Kind = "trade"
		tick.Price = e.Price
		tick.Quantity = uint64(e.Quantity)
	case orderbook.EventTopOfBook:
		tick.Kind = "tob"
		tick.Side = e.Side.String()
		tick.Price = e.Price
		tick.Quantity = e.TotalQuantity
	default:
		return
	}

	payload, err := json.Marshal(tick)
	if err != nil {
		p.log.Warn("market data tick marshal failed", zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := p.writer.WriteMessages(ctx, kafka.Message{Key: []byte(e.Symbol), Value: payload}); err != nil {
		p.log.Warn("market data tick publish failed", zap.Error(err), zap.String("symbol", e.Symbol))
	}
}

// Close stops the publish loop and closes the underlying writer.
func (p *Publisher) Close() error {
	if !p.enabled {
		return nil
	}
	close(p.done)
	return p.writer.Close()
}
