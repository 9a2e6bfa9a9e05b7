package domain

// TradeStatus represents the lifecycle state of a tracked trade.
type TradeStatus string

const (
	StatusActive TradeStatus = "ACTIVE"
	StatusClosed TradeStatus = "CLOSED"
)

// CloseReason indicates why a trade was closed.
type CloseReason string

const (
	CloseReasonStopLoss      CloseReason = "STOP_LOSS"
	CloseReasonTakeProfitAll CloseReason = "TAKE_PROFIT_ALL"
	CloseReasonTimeLimit     CloseReason = "TIME_LIMIT"
)

// Describe returns the human-readable reason tag used in closing notifications.
func (r CloseReason) Describe() string {
	switch r {
	case CloseReasonStopLoss:
		return "stop loss hit (SL)"
	case CloseReasonTakeProfitAll:
		return "all take profit targets reached (TP)"
	case CloseReasonTimeLimit:
		return "time limit expired"
	default:
		return "unknown"
	}
}
