// Command vortex runs the matching engine pipeline: a UDP datagram ingress
// edge, the matcher/order-book core, and a buffered-stdout egress edge,
// wired together by internal/pipeline.Controller. Socket setup, signal
// handling and CLI parsing are themselves out of scope for the core spec
// (§1) but a runnable process needs them, so they live here rather than in
// any of the specified packages.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"vortex/internal/bus"
	"vortex/internal/config"
	"vortex/internal/domain/orderbook"
	"vortex/internal/logging"
	"vortex/internal/metrics"
	"vortex/internal/pipeline"
	"vortex/internal/sequence"
	"vortex/internal/transport/spsc"
	"vortex/internal/wire"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (optional)")
	debug := flag.Bool("debug", false, "enable development logging")
	flag.Parse()

	log, err := logging.New(*debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("config load failed", zap.Error(err))
	}

	conn, err := net.ListenPacket("udp", cfg.ListenAddr)
	if err != nil {
		log.Fatal("udp listen failed", zap.Error(err), zap.String("addr", cfg.ListenAddr))
	}
	defer conn.Close()

	m := metrics.New()
	if cfg.MetricsAddr != "" {
		go serveMetrics(cfg.MetricsAddr, m, log)
	}

	publisher := bus.New(cfg.Kafka.Enabled, cfg.Kafka.Brokers, cfg.Kafka.Topic, log)
	defer publisher.Close()

	inQ := spsc.New[wire.Request](cfg.InQCapacity)
	outQ := spsc.New[orderbook.Event](cfg.OutQCapacity)

	source := &udpSource{conn: conn}
	writer := bufio.NewWriter(os.Stdout)

	ig := pipeline.NewIngress(source, inQ, cfg.IngressRetryAttempts, m, log)
	mt := pipeline.NewMatcher(
		inQ, outQ, orderbook.NewEngine(), sequence.New(), publisher,
		cfg.MatcherBatchSize, cfg.MatcherRetryAttempts,
		cfg.MatcherIdleFastSleep, cfg.MatcherIdleFastIterations, cfg.MatcherIdleSlowSleep,
		m, log,
	)
	eg := pipeline.NewEgress(outQ, &stdoutWriter{w: writer}, cfg.EgressIdleSleep, m, log)
	ctrl := pipeline.NewController(ig, mt, eg, cfg.IngressDrainSleep, cfg.MatcherDrainSleep, log)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	report, err := ctrl.Run(ctx)
	if err != nil {
		log.Error("pipeline exited with error", zap.Error(err))
		os.Exit(1)
	}

	log.Info("shutdown complete",
		zap.Uint64("messages_processed", report.MessagesProcessed),
		zap.Uint64("events_published", report.EventsPublished),
	)
}

func serveMetrics(addr string, m *metrics.Metrics, log *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Warn("metrics server stopped", zap.Error(err))
	}
}

// udpSource adapts a net.PacketConn into pipeline.DatagramSource.
type udpSource struct {
	conn net.PacketConn
}

func (u *udpSource) Receive(ctx context.Context) ([]byte, error) {
	if deadline, ok := ctx.Deadline(); ok {
		u.conn.SetReadDeadline(deadline)
	} else {
		u.conn.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	}

	buf := make([]byte, 64*1024)
	n, _, err := u.conn.ReadFrom(buf)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			// Self-imposed read deadline expired with ctx still live:
			// treat as an empty payload so Ingress loops back around and
			// checks for cancellation instead of blocking indefinitely.
			return nil, nil
		}
		return nil, err
	}
	return buf[:n], nil
}

// stdoutWriter adapts a *bufio.Writer into pipeline.OutputWriter.
type stdoutWriter struct {
	w *bufio.Writer
}

func (s *stdoutWriter) WriteString(line string) (int, error) {
	return s.w.WriteString(line)
}

func (s *stdoutWriter) Flush() error {
	return s.w.Flush()
}
