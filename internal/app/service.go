// Package app wires the bot together: it runs the startup connectivity
// checks, drives the scanner on a fixed schedule, answers chat commands from
// the registry snapshot and handles process shutdown.
package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/mrok911/ALKHALDI-trading-bot/internal/metrics"
	"github.com/mrok911/ALKHALDI-trading-bot/internal/ports"
	"github.com/mrok911/ALKHALDI-trading-bot/internal/registry"
)

// Scanner is the scan entry point driven by the scheduler. One invocation
// performs one full market pass.
type Scanner interface {
	Scan(ctx context.Context)
}

// CommandListener receives chat commands and replies through the handler.
type CommandListener interface {
	ListenCommands(ctx context.Context, handle func(ctx context.Context, command string) (string, bool)) error
}

// Config holds the scheduling parameters of the service.
type Config struct {
	ScanInterval     time.Duration // period between scan passes (e.g., 60s)
	ScanInitialDelay time.Duration // delay before the first pass (e.g., 10s)
	ConfidenceBase   int           // static confidence shown in the /start reply
	MetricsAddr      string        // metrics listener address; empty disables it
}

// Service orchestrates the bot's long-running units.
type Service struct {
	cfg      Config
	logger   ports.Logger
	market   ports.MarketDataClient
	scanner  Scanner
	registry *registry.Registry
	commands CommandListener
}

// NewService creates a new application service instance.
func NewService(
	cfg Config,
	logger ports.Logger,
	market ports.MarketDataClient,
	scanner Scanner,
	reg *registry.Registry,
	commands CommandListener,
) (*Service, error) {
	if logger == nil || market == nil || scanner == nil || reg == nil || commands == nil {
		return nil, fmt.Errorf("missing required dependencies for service")
	}
	if cfg.ScanInterval <= 0 {
		return nil, fmt.Errorf("scan interval must be positive")
	}
	if cfg.ScanInitialDelay < 0 {
		return nil, fmt.Errorf("scan initial delay cannot be negative")
	}
	return &Service{
		cfg:      cfg,
		logger:   logger,
		market:   market,
		scanner:  scanner,
		registry: reg,
		commands: commands,
	}, nil
}

// Start runs the service until the context is cancelled or a shutdown signal
// arrives. It performs the startup connectivity checks first; those are the
// only fatal failures, everything afterwards is contained per unit of work.
func (s *Service) Start(ctx context.Context) error {
	s.logger.Info(ctx, "Starting service...")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			s.logger.Info(ctx, "Received shutdown signal", map[string]interface{}{"signal": sig.String()})
			cancel()
		case <-ctx.Done():
		}
	}()

	// Startup connectivity checks: bad credentials or an unreachable
	// exchange must surface at boot, not at the first scan.
	if err := s.market.Ping(ctx); err != nil {
		return fmt.Errorf("exchange connectivity check failed: %w", err)
	}
	if err := s.market.SetServerTime(ctx); err != nil {
		return fmt.Errorf("failed to synchronize server time: %w", err)
	}
	s.logger.Info(ctx, "Exchange connectivity checked and server time synchronized")

	if s.cfg.MetricsAddr != "" {
		s.serveMetrics(ctx)
	}

	go func() {
		if err := s.commands.ListenCommands(ctx, s.handleCommand); err != nil {
			s.logger.Error(ctx, err, "Command listener stopped")
		}
	}()

	s.logger.Info(ctx, "Scheduler started", map[string]interface{}{
		"interval":     s.cfg.ScanInterval.String(),
		"initialDelay": s.cfg.ScanInitialDelay.String(),
	})

	initial := time.NewTimer(s.cfg.ScanInitialDelay)
	defer initial.Stop()
	select {
	case <-ctx.Done():
		s.logger.Info(ctx, "Service stopped before first scan")
		return nil
	case <-initial.C:
	}
	s.scanner.Scan(ctx)

	ticker := time.NewTicker(s.cfg.ScanInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.logger.Info(ctx, "Service stopped")
			return nil
		case <-ticker.C:
			s.scanner.Scan(ctx)
		}
	}
}

// handleCommand answers the chat front-end. Unknown commands are ignored.
func (s *Service) handleCommand(ctx context.Context, command string) (string, bool) {
	switch command {
	case "start":
		return fmt.Sprintf(
			"✅ *Welcome!* The bot is up and running.\nScanning Binance Futures pairs. Signal confidence = %d%%",
			s.cfg.ConfidenceBase,
		), true
	case "status":
		return s.statusText(), true
	default:
		return "", false
	}
}

// statusText renders the registry snapshot: per active trade the symbol, the
// entry price and the take-profit progress.
func (s *Service) statusText() string {
	trades := s.registry.Snapshot()
	if len(trades) == 0 {
		return "Bot is active. No open trades at the moment."
	}

	sort.Slice(trades, func(i, j int) bool { return trades[i].Symbol < trades[j].Symbol })

	var sb strings.Builder
	sb.WriteString("Bot is active. Open trades:\n\n")
	for _, t := range trades {
		sb.WriteString(fmt.Sprintf("• %s (Entry: %.4f, TP reached: %d/%d)\n",
			t.Symbol, t.EntryPrice, t.TakeProfitsHit, t.TakeProfitsTotal))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// serveMetrics exposes the Prometheus endpoint on its own listener.
func (s *Service) serveMetrics(ctx context.Context) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{Addr: s.cfg.MetricsAddr, Handler: mux}

	go func() {
		s.logger.Info(ctx, "Metrics listener started", map[string]interface{}{"addr": s.cfg.MetricsAddr})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error(ctx, err, "Metrics listener stopped")
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
}
