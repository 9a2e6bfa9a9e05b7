package ports

import (
	"context"
	"time"

	"github.com/mrok911/ALKHALDI-trading-bot/internal/domain"
)

// MarketDataClient defines the interface for reading market data from an
// exchange. This abstraction decouples the scanner and trackers from the
// specific exchange implementation.
type MarketDataClient interface {
	// Ping checks the connectivity to the exchange API.
	Ping(ctx context.Context) error

	// SetServerTime synchronizes the client's time with the server's time.
	SetServerTime(ctx context.Context) error

	// GetServerTime retrieves the current server time from the exchange.
	GetServerTime(ctx context.Context) (time.Time, error)

	// ListTradableSymbols returns the symbols currently open for trading.
	ListTradableSymbols(ctx context.Context) ([]string, error)

	// GetKlines retrieves recent klines/candlestick data for the given symbol.
	// May fail transiently; callers skip the current unit of work on error.
	GetKlines(ctx context.Context, symbol string, interval string, limit int) ([]*domain.Kline, error)

	// GetLastPrice retrieves the last traded price for a given symbol.
	// May fail transiently; callers skip the current unit of work on error.
	GetLastPrice(ctx context.Context, symbol string) (float64, error)
}
