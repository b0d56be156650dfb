// Package pipeline implements the three-stage producer/consumer topology of
// §2/§4/§5: Ingress Parser -> InQ -> Matcher -> OutQ -> Egress Formatter,
// plus the Controller that sequences their startup and graceful-shutdown
// drain (§4.6).
package pipeline

import (
	"context"

	"go.uber.org/zap"

	"vortex/internal/metrics"
	"vortex/internal/wire"
)

// DatagramSource is the out-of-scope socket edge (§1): something that
// blocks until a datagram payload arrives, or until ctx is cancelled.
type DatagramSource interface {
	Receive(ctx context.Context) ([]byte, error)
}

// InQueue is the subset of spsc.Queue[wire.Request] the Ingress stage uses,
// so tests can substitute a fake without importing the concrete queue.
type InQueue interface {
	Push(wire.Request) bool
}

// Ingress is pipeline stage 1 (§4.2).
type Ingress struct {
	source        DatagramSource
	inQ           InQueue
	retryAttempts int
	metrics       *metrics.Metrics
	log           *zap.Logger
}

// NewIngress constructs the ingress stage.
func NewIngress(source DatagramSource, inQ InQueue, retryAttempts int, m *metrics.Metrics, log *zap.Logger) *Ingress {
	return &Ingress{source: source, inQ: inQ, retryAttempts: retryAttempts, metrics: m, log: log}
}

// Run blocks, receiving datagrams and enqueueing parsed requests, until ctx
// is cancelled. Its only blocking I/O is the datagram receive (§5
// "Suspension points").
func (ig *Ingress) Run(ctx context.Context) error {
	for {
		payload, err := ig.source.Receive(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			ig.log.Warn("ingress receive error", zap.Error(err))
			continue
		}

		for _, record := range wire.SplitRecords(payload) {
			ig.handleRecord(record)
		}
	}
}

func (ig *Ingress) handleRecord(record string) {
	req, ok, err := wire.ParseRecord(record)
	if err != nil {
		ig.log.Warn("malformed record, skipping", zap.String("record", record), zap.Error(err))
		return
	}
	if !ok {
		return
	}

	if !pushWithRetry(func() bool { return ig.inQ.Push(req) }, ig.retryAttempts) {
		ig.log.Warn("InQ full, dropping record", zap.String("record", record))
		if ig.metrics != nil {
			ig.metrics.RecordsDropped.WithLabelValues("ingress").Inc()
		}
		return
	}
	if ig.metrics != nil {
		ig.metrics.MessagesIngested.Inc()
	}
}

// pushWithRetry spin-retries push with a cooperative yield up to attempts
// times before giving up (§4.2 step 4, §7 "Queue full").
func pushWithRetry(push func() bool, attempts int) bool {
	for i := 0; i < attempts; i++ {
		if push() {
			return true
		}
		yield()
	}
	return false
}
