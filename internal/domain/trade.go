package domain

import (
	"sync"
	"time"
)

// Trade represents one active speculative position opened in response to a
// signal. The price levels are fixed at creation; the take-profit progress and
// the status are the only mutable parts and are guarded internally so that the
// owning tracker can mark levels while status reporting reads a snapshot.
type Trade struct {
	Symbol           string    // Trading symbol (e.g., "ETHUSDT")
	EntryPrice       float64   // Price at which the signal fired
	StartTime        time.Time // Timestamp when the trade was opened
	StopLossPrice    float64   // EntryPrice * stop-loss factor
	TakeProfitPrices []float64 // EntryPrice * factor for each configured level, ascending

	mu        sync.Mutex
	tpReached []bool
	status    TradeStatus
}

// NewTrade constructs an active trade with its SL/TP levels derived from the
// entry price and the configured factors.
func NewTrade(symbol string, entryPrice float64, startTime time.Time, stopLossFactor float64, takeProfitFactors []float64) *Trade {
	tpPrices := make([]float64, len(takeProfitFactors))
	for i, f := range takeProfitFactors {
		tpPrices[i] = entryPrice * f
	}
	return &Trade{
		Symbol:           symbol,
		EntryPrice:       entryPrice,
		StartTime:        startTime,
		StopLossPrice:    entryPrice * stopLossFactor,
		TakeProfitPrices: tpPrices,
		tpReached:        make([]bool, len(takeProfitFactors)),
		status:           StatusActive,
	}
}

// Status returns the current lifecycle state.
func (t *Trade) Status() TradeStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// IsActive reports whether the trade has not been closed yet.
func (t *Trade) IsActive() bool {
	return t.Status() == StatusActive
}

// Close transitions the trade from ACTIVE to CLOSED. It returns true only for
// the caller that performed the transition; the change is one-way.
func (t *Trade) Close() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.status != StatusActive {
		return false
	}
	t.status = StatusClosed
	return true
}

// MarkTakeProfitReached marks level i as reached. It returns true if the level
// was newly marked, false if it was already reached or the index is invalid.
// Marks are monotonic: a reached level is never reset.
func (t *Trade) MarkTakeProfitReached(i int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if i < 0 || i >= len(t.tpReached) || t.tpReached[i] {
		return false
	}
	t.tpReached[i] = true
	return true
}

// TakeProfitReached reports whether level i has been reached.
func (t *Trade) TakeProfitReached(i int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return i >= 0 && i < len(t.tpReached) && t.tpReached[i]
}

// AllTakeProfitsReached reports whether every configured level has been hit.
func (t *Trade) AllTakeProfitsReached() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, reached := range t.tpReached {
		if !reached {
			return false
		}
	}
	return true
}

// TakeProfitProgress returns how many levels have been reached and the total
// number of configured levels.
func (t *Trade) TakeProfitProgress() (reached, total int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, r := range t.tpReached {
		if r {
			reached++
		}
	}
	return reached, len(t.tpReached)
}

// PnLPercent computes the signed profit/loss percentage for an exit at finalPrice.
func (t *Trade) PnLPercent(finalPrice float64) float64 {
	return (finalPrice/t.EntryPrice - 1) * 100
}

// Summary is a point-in-time read-only copy of a trade used for status reporting.
type Summary struct {
	Symbol           string
	EntryPrice       float64
	StartTime        time.Time
	TakeProfitsHit   int
	TakeProfitsTotal int
}

// Summarize returns a consistent snapshot of the trade's reportable state.
func (t *Trade) Summarize() Summary {
	hit, total := t.TakeProfitProgress()
	return Summary{
		Symbol:           t.Symbol,
		EntryPrice:       t.EntryPrice,
		StartTime:        t.StartTime,
		TakeProfitsHit:   hit,
		TakeProfitsTotal: total,
	}
}
