package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Report summarizes a completed run, the counters §4.6 step 4 asks the
// controller to report.
type Report struct {
	MessagesProcessed uint64
	EventsPublished   uint64
}

// Controller sequences stage startup and the ordered shutdown drain of
// §4.6. golang.org/x/sync/errgroup supervises goroutine lifetime and
// surfaces the first fatal stage error (e.g. an Egress write failure, §7);
// the precise start/stop/drain ordering itself is the controller's own
// responsibility, not errgroup's.
type Controller struct {
	ingress *Ingress
	matcher *Matcher
	egress  *Egress

	ingressDrainSleep time.Duration
	matcherDrainSleep time.Duration
	pollInterval      time.Duration

	log *zap.Logger
}

// NewController wires the three stages into a controller.
func NewController(ingress *Ingress, matcher *Matcher, egress *Egress, ingressDrainSleep, matcherDrainSleep time.Duration, log *zap.Logger) *Controller {
	return &Controller{
		ingress: ingress, matcher: matcher, egress: egress,
		ingressDrainSleep: ingressDrainSleep, matcherDrainSleep: matcherDrainSleep,
		pollInterval: 50 * time.Millisecond,
		log:          log,
	}
}

// Run starts all three stages and blocks until shutdown is requested — by
// cancellation of ctx (the process-wide shutdown signal, §6.3) or by a
// fatal stage error — then performs the precise ordered drain of §4.6 step
// 3 and returns the final counters.
func (c *Controller) Run(ctx context.Context) (Report, error) {
	egressCtx, cancelEgress := context.WithCancel(context.Background())
	matcherCtx, cancelMatcher := context.WithCancel(context.Background())
	ingressCtx, cancelIngress := context.WithCancel(context.Background())
	defer cancelEgress()
	defer cancelMatcher()
	defer cancelIngress()

	g, gctx := errgroup.WithContext(context.Background())

	// Start order: Egress -> Matcher -> Ingress (§4.6 step 1) — starting
	// consumers first ensures no produced item is ever stranded.
	g.Go(func() error { return c.egress.Run(egressCtx) })
	g.Go(func() error { return c.matcher.Run(matcherCtx) })
	g.Go(func() error { return c.ingress.Run(ingressCtx) })

	c.log.Info("pipeline started")

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

waitForShutdown:
	for {
		select {
		case <-ctx.Done():
			break waitForShutdown
		case <-gctx.Done():
			break waitForShutdown
		case <-ticker.C:
		}
	}

	c.log.Info("shutdown requested, draining pipeline")

	// Shutdown drain, in this precise order (§4.6 step 3).
	cancelIngress()
	time.Sleep(c.ingressDrainSleep)
	cancelMatcher()
	time.Sleep(c.matcherDrainSleep)
	cancelEgress()

	err := g.Wait()

	report := Report{
		MessagesProcessed: c.matcher.Processed(),
		EventsPublished:   c.egress.Published(),
	}
	c.log.Info("pipeline stopped",
		zap.Uint64("messages_processed", report.MessagesProcessed),
		zap.Uint64("events_published", report.EventsPublished),
	)
	return report, err
}
