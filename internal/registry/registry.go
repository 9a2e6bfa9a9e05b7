// Package registry holds the single shared mutable structure of the bot: the
// map of active trades. All cross-goroutine coordination between the scanner
// and the trackers goes through its atomic operations; nothing outside this
// package mutates the map.
package registry

import (
	"context"
	"sync"

	"github.com/mrok911/ALKHALDI-trading-bot/internal/domain"
	"github.com/mrok911/ALKHALDI-trading-bot/internal/ports"
)

// Registry is a concurrency-safe store mapping symbol to its active trade.
// It enforces at most one active trade per symbol.
type Registry struct {
	logger ports.Logger

	mu     sync.Mutex
	trades map[string]*domain.Trade
}

// New creates an empty registry.
func New(logger ports.Logger) *Registry {
	return &Registry{
		logger: logger,
		trades: make(map[string]*domain.Trade),
	}
}

// TryCreate atomically checks for the absence of an active trade for symbol
// and, if absent, constructs one via factory, inserts it and returns it. If a
// trade already exists it returns nil without calling factory. This is the
// sole admission-control point preventing duplicate trackers for a symbol.
func (r *Registry) TryCreate(symbol string, factory func() *domain.Trade) *domain.Trade {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.trades[symbol]; exists {
		return nil
	}
	trade := factory()
	r.trades[symbol] = trade
	r.logger.Info(context.Background(), "Trade registered", map[string]interface{}{
		"symbol":     symbol,
		"entryPrice": trade.EntryPrice,
		"active":     len(r.trades),
	})
	return trade
}

// Close atomically marks the trade for symbol as closed and removes it.
// It returns false when no active trade exists for the symbol, which makes
// double-close a harmless no-op rather than an error.
func (r *Registry) Close(symbol string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	trade, exists := r.trades[symbol]
	if !exists {
		return false
	}
	if !trade.Close() {
		// Present but already closed; should not happen since closed trades
		// are removed in the same critical section, but guard anyway.
		delete(r.trades, symbol)
		return false
	}
	delete(r.trades, symbol)
	r.logger.Info(context.Background(), "Trade deregistered", map[string]interface{}{
		"symbol": symbol,
		"active": len(r.trades),
	})
	return true
}

// Has reports whether an active trade exists for symbol. It is a cheap
// read-only pre-check for the scanner; TryCreate remains the authority.
func (r *Registry) Has(symbol string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, exists := r.trades[symbol]
	return exists
}

// Len returns the number of active trades.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.trades)
}

// Snapshot returns a point-in-time read-only copy of the active trades for
// status reporting. It holds the lock only long enough to copy summaries.
func (r *Registry) Snapshot() []domain.Summary {
	r.mu.Lock()
	defer r.mu.Unlock()

	summaries := make([]domain.Summary, 0, len(r.trades))
	for _, trade := range r.trades {
		summaries = append(summaries, trade.Summarize())
	}
	return summaries
}
