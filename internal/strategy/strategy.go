// Package strategy implements the entry-signal logic: a momentum condition
// comparing the latest close against the mean close of the fetched window.
package strategy

import (
	"context"
	"fmt"

	"github.com/mrok911/ALKHALDI-trading-bot/internal/domain"
	"github.com/mrok911/ALKHALDI-trading-bot/internal/ports"
	"github.com/mrok911/ALKHALDI-trading-bot/internal/strategy/indicators"
)

// Config holds parameters for the momentum strategy.
type Config struct {
	// SignalMargin is the fraction by which the current close must exceed the
	// window mean for a signal to qualify (e.g., 0.01 for 1%).
	SignalMargin float64
	// MinDataPoints is the minimum number of klines required; windows at or
	// below this size are treated as insufficient data, not as errors.
	MinDataPoints int
}

// Momentum implements the entry-signal evaluation.
type Momentum struct {
	cfg    Config
	logger ports.Logger
}

// New creates a new Momentum strategy instance.
func New(cfg Config, logger ports.Logger) (*Momentum, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required for strategy")
	}
	if cfg.SignalMargin < 0 {
		return nil, fmt.Errorf("signal margin cannot be negative")
	}
	if cfg.MinDataPoints <= 0 {
		return nil, fmt.Errorf("minimum data points must be positive")
	}
	return &Momentum{cfg: cfg, logger: logger}, nil
}

// RequiredDataPoints returns the minimum number of klines needed for a
// qualifying evaluation.
func (s *Momentum) RequiredDataPoints() int {
	return s.cfg.MinDataPoints + 1
}

// ShouldEnterTrade reports whether the momentum condition holds for the given
// kline window: the last close exceeds the window mean by the configured
// margin. Windows with insufficient data never qualify.
func (s *Momentum) ShouldEnterTrade(ctx context.Context, klines []*domain.Kline) bool {
	if len(klines) <= s.cfg.MinDataPoints {
		s.logger.Debug(ctx, "Insufficient klines for signal evaluation", map[string]interface{}{
			"have": len(klines),
			"need": s.RequiredDataPoints(),
		})
		return false
	}

	avgClose, err := indicators.MeanClose(klines)
	if err != nil {
		s.logger.Error(ctx, err, "Failed to compute mean close")
		return false
	}
	currentClose := klines[len(klines)-1].Close

	qualifies := currentClose > avgClose*(1+s.cfg.SignalMargin)
	if qualifies {
		s.logger.Debug(ctx, "Momentum signal qualifies", map[string]interface{}{
			"currentClose": currentClose,
			"avgClose":     avgClose,
			"margin":       s.cfg.SignalMargin,
		})
	}
	return qualifies
}
