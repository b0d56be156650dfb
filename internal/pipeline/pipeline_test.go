package pipeline

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"vortex/internal/domain/orderbook"
	"vortex/internal/sequence"
	"vortex/internal/transport/spsc"
	"vortex/internal/wire"
)

// scriptedSource replays a fixed list of payloads, then blocks until ctx is
// cancelled, simulating the out-of-scope datagram socket (§1).
type scriptedSource struct {
	mu       sync.Mutex
	payloads [][]byte
	i        int
}

func (s *scriptedSource) Receive(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	if s.i < len(s.payloads) {
		p := s.payloads[s.i]
		s.i++
		s.mu.Unlock()
		return p, nil
	}
	s.mu.Unlock()

	<-ctx.Done()
	return nil, ctx.Err()
}

// bufWriter is a minimal OutputWriter backed by a strings.Builder.
type bufWriter struct {
	mu sync.Mutex
	b  strings.Builder
}

func (w *bufWriter) WriteString(s string) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.b.WriteString(s)
}

func (w *bufWriter) Flush() error { return nil }

func (w *bufWriter) String() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.b.String()
}

func TestEndToEndSimpleCross(t *testing.T) {
	log := zap.NewNop()

	inQ := spsc.New[wire.Request](16)
	outQ := spsc.New[orderbook.Event](16)

	source := &scriptedSource{payloads: [][]byte{
		[]byte("N, 1, IBM, 100, 50, S, 1\nN, 2, IBM, 100, 50, B, 2\n"),
	}}
	writer := &bufWriter{}

	ig := NewIngress(source, inQ, 100, nil, log)
	m := NewMatcher(inQ, outQ, orderbook.NewEngine(), sequence.New(), nil, 32, 1000, time.Microsecond, 100, 100*time.Microsecond, nil, log)
	eg := NewEgress(outQ, writer, time.Microsecond, nil, log)
	ctrl := NewController(ig, m, eg, 50*time.Millisecond, 50*time.Millisecond, log)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	report, err := ctrl.Run(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(2), report.MessagesProcessed)

	want := "A, 1, 1, IBM\nB, S, 100, 50, IBM\nA, 2, 2, IBM\nT, 2, 2, 1, 1, 100, 50, IBM\nB, S, -, -, IBM\n"
	require.Equal(t, want, writer.String())
}

func TestIngressSkipsMalformedRecords(t *testing.T) {
	log := zap.NewNop()
	inQ := spsc.New[wire.Request](16)

	source := &scriptedSource{payloads: [][]byte{
		[]byte("garbage\nN, 1, IBM, 100, 50, B, 1\n"),
	}}
	ig := NewIngress(source, inQ, 100, nil, log)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	go ig.Run(ctx)

	time.Sleep(20 * time.Millisecond)

	req, ok := inQ.Pop()
	require.True(t, ok, "expected the valid record to be enqueued despite the malformed one")
	require.Equal(t, wire.RequestNew, req.Kind)
	require.Equal(t, uint32(1), req.UserID)

	_, ok = inQ.Pop()
	require.False(t, ok, "expected only one valid record to have been enqueued")
}
