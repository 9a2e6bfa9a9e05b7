// Package metrics exposes Prometheus instrumentation for the bot:
//
//   - bot_scans_total                     – completed scan passes
//   - bot_scan_failures_total             – scan passes aborted (listing failed)
//   - bot_signals_total                   – qualifying entry signals observed
//   - bot_trades_opened_total             – trades admitted to the registry
//   - bot_trades_closed_total{reason}     – trades closed, split by exit reason
//   - bot_take_profits_hit_total          – individual take-profit levels reached
//   - bot_notification_failures_total     – outbound messages that failed to send
//   - bot_active_trades                   – current registry size (gauge)
//
// All collectors are registered in init() and served by Handler.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ScansTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bot_scans_total",
		Help: "Completed market scan passes",
	})

	ScanFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bot_scan_failures_total",
		Help: "Scan passes aborted because the tradable symbol list could not be fetched",
	})

	SignalsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bot_signals_total",
		Help: "Entry signals that met the momentum condition",
	})

	TradesOpenedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bot_trades_opened_total",
		Help: "Trades admitted to the registry",
	})

	TradesClosedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bot_trades_closed_total",
		Help: "Trades closed, split by exit reason",
	}, []string{"reason"})

	TakeProfitsHitTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bot_take_profits_hit_total",
		Help: "Individual take-profit levels reached",
	})

	NotificationFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bot_notification_failures_total",
		Help: "Outbound notifications that failed to send",
	})

	ActiveTrades = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "bot_active_trades",
		Help: "Number of currently tracked trades",
	})
)

func init() {
	prometheus.MustRegister(
		ScansTotal,
		ScanFailuresTotal,
		SignalsTotal,
		TradesOpenedTotal,
		TradesClosedTotal,
		TakeProfitsHitTotal,
		NotificationFailuresTotal,
		ActiveTrades,
	)
}

// Handler returns the HTTP handler serving the Prometheus text exposition.
func Handler() http.Handler {
	return promhttp.Handler()
}
