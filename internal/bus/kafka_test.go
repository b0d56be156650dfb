package bus

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"vortex/internal/domain/orderbook"
)

func TestDisabledPublisherIsNoOp(t *testing.T) {
	p := New(false, nil, "", zap.NewNop())
	require.NotNil(t, p)
	defer p.Close()

	// Must not panic or block even though no broker is configured.
	require.NotPanics(t, func() {
		p.Publish(orderbook.Event{Kind: orderbook.EventTrade, Symbol: "IBM"})
	})
}
