// Package indicators provides the price-series calculations used by the
// entry-signal strategy.
package indicators

import (
	"fmt"

	"github.com/mrok911/ALKHALDI-trading-bot/internal/domain"
)

// SMA computes the simple moving average of the closing prices over the last
// period klines.
func SMA(klines []*domain.Kline, period int) (float64, error) {
	if period <= 0 {
		return 0, fmt.Errorf("period must be positive, got %d", period)
	}
	if len(klines) < period {
		return 0, fmt.Errorf("not enough data (%d) to calculate SMA for period %d", len(klines), period)
	}

	var sum float64
	for _, k := range klines[len(klines)-period:] {
		sum += k.Close
	}
	return sum / float64(period), nil
}

// MeanClose computes the arithmetic mean of the closing prices across the
// entire window.
func MeanClose(klines []*domain.Kline) (float64, error) {
	return SMA(klines, len(klines))
}
