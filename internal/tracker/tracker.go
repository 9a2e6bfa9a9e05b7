// Package tracker drives the exit state machine for a single trade. One
// tracker goroutine is spawned per admitted trade; it polls the market on a
// fixed interval and terminates itself through exactly one of three exits:
// stop loss, all take-profit targets reached, or time limit.
package tracker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mrok911/ALKHALDI-trading-bot/internal/domain"
	"github.com/mrok911/ALKHALDI-trading-bot/internal/metrics"
	"github.com/mrok911/ALKHALDI-trading-bot/internal/ports"
	"github.com/mrok911/ALKHALDI-trading-bot/internal/ratelimit"
	"github.com/mrok911/ALKHALDI-trading-bot/internal/registry"
)

// Config holds the tunables of the polling loop.
type Config struct {
	PollInterval time.Duration // delay between price checks (e.g., 10s)
	TimeLimit    time.Duration // maximum trade age before the fallback exit (e.g., 24h)
}

// Tracker owns the exit state machine of one trade.
type Tracker struct {
	cfg      Config
	trade    *domain.Trade
	registry *registry.Registry
	market   ports.MarketDataClient
	notifier ports.Notifier
	limiter  *ratelimit.Limiter
	logger   ports.Logger
	now      func() time.Time
}

// New creates a tracker for an admitted trade.
func New(
	cfg Config,
	trade *domain.Trade,
	reg *registry.Registry,
	market ports.MarketDataClient,
	notifier ports.Notifier,
	limiter *ratelimit.Limiter,
	logger ports.Logger,
) (*Tracker, error) {
	if trade == nil || reg == nil || market == nil || notifier == nil || limiter == nil || logger == nil {
		return nil, fmt.Errorf("missing required dependencies for tracker")
	}
	if cfg.PollInterval <= 0 {
		return nil, fmt.Errorf("poll interval must be positive")
	}
	if cfg.TimeLimit <= 0 {
		return nil, fmt.Errorf("time limit must be positive")
	}
	return &Tracker{
		cfg:      cfg,
		trade:    trade,
		registry: reg,
		market:   market,
		notifier: notifier,
		limiter:  limiter,
		logger:   logger,
		now:      time.Now,
	}, nil
}

// Run executes the polling loop until the trade closes or ctx is cancelled.
// It is designed to be launched as a goroutine and needs no external join:
// every reachable state eventually satisfies one of the exit conditions.
func (t *Tracker) Run(ctx context.Context) {
	symbol := t.trade.Symbol
	t.logger.Info(ctx, "Tracker started", map[string]interface{}{
		"symbol":     symbol,
		"entryPrice": t.trade.EntryPrice,
		"stopLoss":   t.trade.StopLossPrice,
	})

	for t.trade.IsActive() {
		select {
		case <-ctx.Done():
			t.logger.Info(ctx, "Tracker cancelled", map[string]interface{}{"symbol": symbol})
			return
		case <-time.After(t.cfg.PollInterval):
		}

		if err := t.limiter.Acquire(ctx); err != nil {
			// Only fails when ctx is done.
			return
		}
		price, err := t.market.GetLastPrice(ctx, symbol)
		if err != nil {
			t.logger.Error(ctx, err, "Tracker failed to fetch price", map[string]interface{}{"symbol": symbol})
			continue
		}

		// Stop loss pre-empts everything else observed at the same sample.
		if price <= t.trade.StopLossPrice {
			t.close(ctx, price, domain.CloseReasonStopLoss)
			return
		}

		if t.checkTakeProfits(ctx, price) {
			t.close(ctx, price, domain.CloseReasonTakeProfitAll)
			return
		}

		if t.now().Sub(t.trade.StartTime) >= t.cfg.TimeLimit {
			t.close(ctx, price, domain.CloseReasonTimeLimit)
			return
		}
	}

	t.logger.Info(ctx, "Tracker finished", map[string]interface{}{"symbol": symbol})
}

// checkTakeProfits marks and announces every newly reached level in ascending
// order, then reports whether all levels are now reached. All qualifying
// levels of a sample are marked before the all-reached decision.
func (t *Tracker) checkTakeProfits(ctx context.Context, price float64) bool {
	for i, target := range t.trade.TakeProfitPrices {
		if price < target {
			continue
		}
		if !t.trade.MarkTakeProfitReached(i) {
			continue
		}
		metrics.TakeProfitsHitTotal.Inc()
		t.logger.Info(ctx, "Take profit target reached", map[string]interface{}{
			"symbol": t.trade.Symbol,
			"level":  i + 1,
			"target": target,
			"price":  price,
		})
		t.send(ctx, fmt.Sprintf("🟢 *TP%d reached for %s* at %.4f!", i+1, t.trade.Symbol, price))
	}
	return t.trade.AllTakeProfitsReached()
}

// close runs the terminal transition: deregister, then notify. When the
// registry reports the trade as already closed the notification is skipped;
// that outcome is the designed idempotence guard, not a failure.
func (t *Tracker) close(ctx context.Context, finalPrice float64, reason domain.CloseReason) {
	if !t.registry.Close(t.trade.Symbol) {
		t.logger.Warn(ctx, "Trade already closed, skipping notification", map[string]interface{}{
			"symbol": t.trade.Symbol,
			"reason": reason,
		})
		return
	}
	metrics.TradesClosedTotal.WithLabelValues(string(reason)).Inc()
	metrics.ActiveTrades.Dec()

	pnl := t.trade.PnLPercent(finalPrice)
	t.logger.Info(ctx, "Trade closed", map[string]interface{}{
		"symbol":     t.trade.Symbol,
		"reason":     reason,
		"entryPrice": t.trade.EntryPrice,
		"exitPrice":  finalPrice,
		"pnlPercent": fmt.Sprintf("%+.2f", pnl),
	})

	t.send(ctx, closeMessage(t.trade, finalPrice, pnl, reason))
}

func (t *Tracker) send(ctx context.Context, text string) {
	if err := t.notifier.Send(ctx, text); err != nil {
		metrics.NotificationFailuresTotal.Inc()
		t.logger.Error(ctx, err, "Failed to send notification", map[string]interface{}{"symbol": t.trade.Symbol})
	}
}

func closeMessage(trade *domain.Trade, finalPrice, pnl float64, reason domain.CloseReason) string {
	sign := "✅"
	if pnl < 0 {
		sign = "❌"
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s *%s closed* %s\n\n", sign, trade.Symbol, sign))
	sb.WriteString(fmt.Sprintf("*Reason:* %s\n", reason.Describe()))
	sb.WriteString(fmt.Sprintf("*Entry price:* %.4f\n", trade.EntryPrice))
	sb.WriteString(fmt.Sprintf("*Exit price:* %.4f\n", finalPrice))
	sb.WriteString(fmt.Sprintf("*PnL:* %+.2f%%", pnl))
	return sb.String()
}
