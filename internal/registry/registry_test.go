package registry

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrok911/ALKHALDI-trading-bot/internal/domain"
)

// mockLogger implements ports.Logger for testing
type mockLogger struct {
	mu        sync.Mutex
	infoMsgs  []string
	errorMsgs []string
}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}

func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.infoMsgs = append(m.infoMsgs, msg)
}

func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{}) {}

func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorMsgs = append(m.errorMsgs, msg)
}

func newTrade(symbol string) func() *domain.Trade {
	return func() *domain.Trade {
		return domain.NewTrade(symbol, 100.0, time.Now().UTC(), 0.98, []float64{1.02, 1.05, 1.10})
	}
}

func TestTryCreate_SecondCallReturnsNil(t *testing.T) {
	r := New(&mockLogger{})

	first := r.TryCreate("ETHUSDT", newTrade("ETHUSDT"))
	require.NotNil(t, first)

	second := r.TryCreate("ETHUSDT", newTrade("ETHUSDT"))
	assert.Nil(t, second)
	assert.Equal(t, 1, r.Len())
}

func TestTryCreate_ConcurrentSingleWinner(t *testing.T) {
	r := New(&mockLogger{})

	const racers = 50
	var wins int64
	var factoryCalls int64
	var wg sync.WaitGroup
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			trade := r.TryCreate("BTCUSDT", func() *domain.Trade {
				atomic.AddInt64(&factoryCalls, 1)
				return domain.NewTrade("BTCUSDT", 100.0, time.Now().UTC(), 0.98, []float64{1.02})
			})
			if trade != nil {
				atomic.AddInt64(&wins, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), wins, "exactly one racer must win the creation")
	assert.Equal(t, int64(1), factoryCalls, "factory must run only for the winner")
	assert.Equal(t, 1, r.Len())
}

func TestClose_IdempotentPerLifecycle(t *testing.T) {
	r := New(&mockLogger{})

	assert.False(t, r.Close("ETHUSDT"), "closing an unknown symbol is a no-op")

	require.NotNil(t, r.TryCreate("ETHUSDT", newTrade("ETHUSDT")))
	assert.True(t, r.Close("ETHUSDT"))
	assert.False(t, r.Close("ETHUSDT"), "second close must return false")
	assert.Equal(t, 0, r.Len())

	// A new lifecycle for the same symbol may start afterwards.
	require.NotNil(t, r.TryCreate("ETHUSDT", newTrade("ETHUSDT")))
	assert.True(t, r.Close("ETHUSDT"))
}

func TestClose_ConcurrentSingleWinner(t *testing.T) {
	r := New(&mockLogger{})
	require.NotNil(t, r.TryCreate("ETHUSDT", newTrade("ETHUSDT")))

	const racers = 50
	var wins int64
	var wg sync.WaitGroup
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if r.Close("ETHUSDT") {
				atomic.AddInt64(&wins, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), wins, "exactly one caller may observe the close")
	assert.Equal(t, 0, r.Len())
}

func TestHas(t *testing.T) {
	r := New(&mockLogger{})

	assert.False(t, r.Has("ETHUSDT"))
	r.TryCreate("ETHUSDT", newTrade("ETHUSDT"))
	assert.True(t, r.Has("ETHUSDT"))
	r.Close("ETHUSDT")
	assert.False(t, r.Has("ETHUSDT"))
}

func TestSnapshot_IsPointInTimeCopy(t *testing.T) {
	r := New(&mockLogger{})
	trade := r.TryCreate("ETHUSDT", newTrade("ETHUSDT"))
	require.NotNil(t, trade)
	r.TryCreate("BTCUSDT", newTrade("BTCUSDT"))

	trade.MarkTakeProfitReached(0)

	snap := r.Snapshot()
	require.Len(t, snap, 2)

	bySymbol := make(map[string]domain.Summary, len(snap))
	for _, s := range snap {
		bySymbol[s.Symbol] = s
	}
	assert.Equal(t, 1, bySymbol["ETHUSDT"].TakeProfitsHit)
	assert.Equal(t, 3, bySymbol["ETHUSDT"].TakeProfitsTotal)
	assert.Equal(t, 0, bySymbol["BTCUSDT"].TakeProfitsHit)

	// Later mutations do not leak into the captured snapshot.
	trade.MarkTakeProfitReached(1)
	assert.Equal(t, 1, bySymbol["ETHUSDT"].TakeProfitsHit)
}
