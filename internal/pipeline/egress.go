package pipeline

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"vortex/internal/domain/orderbook"
	"vortex/internal/metrics"
	"vortex/internal/wire"
)

// EgressInQueue is the subset of spsc.Queue[orderbook.Event] the Egress
// stage drains.
type EgressInQueue interface {
	Pop() (orderbook.Event, bool)
}

// OutputWriter is the out-of-scope byte-stream edge (§1): something that
// accepts a formatted line and can be flushed so downstream readers see it
// immediately (§4.5).
type OutputWriter interface {
	WriteString(s string) (int, error)
	Flush() error
}

// Egress is pipeline stage 3 (§4.5).
type Egress struct {
	outQ    EgressInQueue
	writer  OutputWriter
	idle    time.Duration
	metrics *metrics.Metrics
	log     *zap.Logger

	published atomic.Uint64
}

// NewEgress constructs the egress stage.
func NewEgress(outQ EgressInQueue, writer OutputWriter, idle time.Duration, m *metrics.Metrics, log *zap.Logger) *Egress {
	return &Egress{outQ: outQ, writer: writer, idle: idle, metrics: m, log: log}
}

// Published returns the total events written, for the controller's
// shutdown report (§4.6 step 4).
func (eg *Egress) Published() uint64 {
	return eg.published.Load()
}

// Run drains OutQ and writes formatted lines until ctx is cancelled, then
// drains any residue before returning (§4.6 "drains OutQ residue on exit").
// A write failure is fatal (§7 "the process cannot usefully continue —
// terminate") and is returned so the controller can trigger shutdown.
func (eg *Egress) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return eg.drainResidual()
		default:
		}

		e, ok := eg.outQ.Pop()
		if !ok {
			time.Sleep(eg.idle)
			continue
		}
		if err := eg.write(e); err != nil {
			return err
		}
	}
}

func (eg *Egress) drainResidual() error {
	for {
		e, ok := eg.outQ.Pop()
		if !ok {
			return nil
		}
		if err := eg.write(e); err != nil {
			return err
		}
	}
}

func (eg *Egress) write(e orderbook.Event) error {
	line := wire.FormatEvent(e)
	if _, err := eg.writer.WriteString(line); err != nil {
		eg.log.Error("egress write failed, terminating", zap.Error(err))
		return fmt.Errorf("egress: write: %w", err)
	}
	if err := eg.writer.Flush(); err != nil {
		eg.log.Error("egress flush failed, terminating", zap.Error(err))
		return fmt.Errorf("egress: flush: %w", err)
	}

	eg.published.Add(1)
	if eg.metrics != nil {
		eg.metrics.EventsPublished.Inc()
	}
	return nil
}
