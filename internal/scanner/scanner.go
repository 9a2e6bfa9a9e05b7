// Package scanner performs the periodic market pass: list tradable symbols,
// evaluate the entry signal for every symbol without an active trade, and for
// each qualifying one admit a trade and launch its tracker.
package scanner

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
	"github.com/mrok911/ALKHALDI-trading-bot/internal/strategy"
	"github.com/mrok911/ALKHALDI-trading-bot/internal/tracker"
)

// Config holds the scan and trade-level parameters.
type Config struct {
	KlineInterval     string        // candle interval fetched per symbol (e.g., "4h")
	KlineLimit        int           // size of the candle window (e.g., 100)
	StopLossFactor    float64       // entry price multiplier for the stop (e.g., 0.98)
	TakeProfitFactors []float64     // ascending entry price multipliers (e.g., 1.02, 1.05, 1.10)
	TimeLimit         time.Duration // maximum trade age
	PollInterval      time.Duration // tracker poll interval
	ConfidenceBase    int           // static confidence percentage shown in signals
}

// Scanner runs one full market pass per invocation.
type Scanner struct {
	cfg      Config
	logger   ports.Logger
	market   ports.MarketDataClient
	notifier ports.Notifier
	limiter  *ratelimit.Limiter
	registry *registry.Registry
	strategy *strategy.Momentum
}

// New creates a scanner.
func New(
	cfg Config,
	logger ports.Logger,
	market ports.MarketDataClient,
	notifier ports.Notifier,
	limiter *ratelimit.Limiter,
	reg *registry.Registry,
	strat *strategy.Momentum,
) (*Scanner, error) {
	if logger == nil || market == nil || notifier == nil || limiter == nil || reg == nil || strat == nil {
		return nil, fmt.Errorf("missing required dependencies for scanner")
	}
	if cfg.KlineInterval == "" {
		return nil, fmt.Errorf("kline interval must be set")
	}
	if cfg.KlineLimit <= 0 {
		return nil, fmt.Errorf("kline limit must be positive")
	}
	if cfg.StopLossFactor <= 0 || cfg.StopLossFactor >= 1 {
		return nil, fmt.Errorf("stop loss factor must be between 0 and 1")
	}
	if len(cfg.TakeProfitFactors) == 0 {
		return nil, fmt.Errorf("at least one take profit factor is required")
	}
	prev := 1.0
	for _, f := range cfg.TakeProfitFactors {
		if f <= prev {
			return nil, fmt.Errorf("take profit factors must be strictly increasing and above 1, got %v", cfg.TakeProfitFactors)
		}
		prev = f
	}
	if cfg.TimeLimit <= 0 || cfg.PollInterval <= 0 {
		return nil, fmt.Errorf("time limit and poll interval must be positive")
	}
	return &Scanner{
		cfg:      cfg,
		logger:   logger,
		market:   market,
		notifier: notifier,
		limiter:  limiter,
		registry: reg,
		strategy: strat,
	}, nil
}

// Scan performs one full market pass. A failure listing the tradable symbols
// aborts the pass; a failure fetching one symbol's candles skips only that
// symbol. Scan never returns an error: everything recoverable is contained
// here so that the scheduler keeps firing.
func (s *Scanner) Scan(ctx context.Context) {
	s.logger.Info(ctx, "Starting market scan")

	if err := s.limiter.Acquire(ctx); err != nil {
		return
	}
	symbols, err := s.market.ListTradableSymbols(ctx)
	if err != nil {
		metrics.ScanFailuresTotal.Inc()
		s.logger.Error(ctx, err, "Failed to fetch tradable symbols, aborting scan pass")
		return
	}

	var signals int
	for _, symbol := range symbols {
		if ctx.Err() != nil {
			return
		}
		if s.registry.Has(symbol) {
			continue
		}

		if err := s.limiter.Acquire(ctx); err != nil {
			return
		}
		klines, err := s.market.GetKlines(ctx, symbol, s.cfg.KlineInterval, s.cfg.KlineLimit)
		if err != nil {
			s.logger.Error(ctx, err, "Failed to fetch klines", map[string]interface{}{"symbol": symbol})
			continue
		}

		if !s.strategy.ShouldEnterTrade(ctx, klines) {
			continue
		}
		metrics.SignalsTotal.Inc()
		signals++

		if s.openTrade(ctx, symbol) {
			metrics.TradesOpenedTotal.Inc()
			metrics.ActiveTrades.Inc()
		}
	}

	metrics.ScansTotal.Inc()
	s.logger.Info(ctx, "Market scan finished", map[string]interface{}{
		"symbols":      len(symbols),
		"newSignals":   signals,
		"activeTrades": s.registry.Len(),
	})
}

// openTrade fetches the entry price, admits the trade and launches its
// tracker. It returns false when the price fetch fails or another pass
// admitted the symbol first.
func (s *Scanner) openTrade(ctx context.Context, symbol string) bool {
	if err := s.limiter.Acquire(ctx); err != nil {
		return false
	}
	entryPrice, err := s.market.GetLastPrice(ctx, symbol)
	if err != nil {
		s.logger.Error(ctx, err, "Failed to fetch entry price", map[string]interface{}{"symbol": symbol})
		return false
	}

	trade := s.registry.TryCreate(symbol, func() *domain.Trade {
		return domain.NewTrade(symbol, entryPrice, time.Now().UTC(), s.cfg.StopLossFactor, s.cfg.TakeProfitFactors)
	})
	if trade == nil {
		s.logger.Debug(ctx, "Symbol already tracked, skipping", map[string]interface{}{"symbol": symbol})
		return false
	}

	tr, err := tracker.New(
		tracker.Config{PollInterval: s.cfg.PollInterval, TimeLimit: s.cfg.TimeLimit},
		trade, s.registry, s.market, s.notifier, s.limiter, s.logger,
	)
	if err != nil {
		// Dependencies were validated at construction; this only fires on a
		// programming error. Roll the admission back.
		s.registry.Close(symbol)
		s.logger.Error(ctx, err, "Failed to build tracker", map[string]interface{}{"symbol": symbol})
		return false
	}
	go tr.Run(ctx)

	s.logger.Info(ctx, "Signal sent and tracker launched", map[string]interface{}{
		"symbol":     symbol,
		"entryPrice": entryPrice,
	})
	if err := s.notifier.Send(ctx, s.signalMessage(trade)); err != nil {
		metrics.NotificationFailuresTotal.Inc()
		s.logger.Error(ctx, err, "Failed to send signal notification", map[string]interface{}{"symbol": symbol})
	}
	return true
}

// signalMessage renders the opening notification: symbol, confidence, entry
// price, the take-profit ladder, the stop and the time limit.
func (s *Scanner) signalMessage(trade *domain.Trade) string {
	var sb strings.Builder
	sb.WriteString("🚨 *New trading signal* 🚨\n\n")
	sb.WriteString(fmt.Sprintf("*Symbol:* `%s`\n", trade.Symbol))
	sb.WriteString(fmt.Sprintf("*Confidence:* %d%%\n", s.cfg.ConfidenceBase))
	sb.WriteString(fmt.Sprintf("*Entry price:* %.4f\n\n", trade.EntryPrice))
	sb.WriteString("*Take profit targets:*\n")
	for i, price := range trade.TakeProfitPrices {
		gain := (s.cfg.TakeProfitFactors[i] - 1) * 100
		sb.WriteString(fmt.Sprintf("TP%d: %.4f (+%.2f%%)\n", i+1, price, gain))
	}
	sb.WriteString(fmt.Sprintf("\n*Stop loss (SL):* %.4f (%.2f%%)\n", trade.StopLossPrice, (s.cfg.StopLossFactor-1)*100))
	sb.WriteString(fmt.Sprintf("*Time limit:* %s\n\n", s.cfg.TimeLimit))
	sb.WriteString("Automatic tracking has started.")
	return sb.String()
}
