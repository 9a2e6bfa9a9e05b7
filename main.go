package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mrok911/ALKHALDI-trading-bot/config"
	"github.com/mrok911/ALKHALDI-trading-bot/internal/adapters/binanceclient"
	"github.com/mrok911/ALKHALDI-trading-bot/internal/adapters/logger"
	"github.com/mrok911/ALKHALDI-trading-bot/internal/adapters/telegram"
	"github.com/mrok911/ALKHALDI-trading-bot/internal/app"
	"github.com/mrok911/ALKHALDI-trading-bot/internal/ratelimit"
	"github.com/mrok911/ALKHALDI-trading-bot/internal/registry"
	"github.com/mrok911/ALKHALDI-trading-bot/internal/scanner"
	"github.com/mrok911/ALKHALDI-trading-bot/internal/strategy"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log := logger.NewStdLogger(cfg.LogLevel)
	ctx := context.Background()
	log.Info(ctx, "Configuration loaded", map[string]interface{}{
		"scanInterval":  cfg.ScanInterval.String(),
		"klineInterval": cfg.KlineInterval,
		"isTestnet":     cfg.IsTestnet,
	})

	market, err := binanceclient.New(binanceclient.Config{
		APIKey:     cfg.BinanceAPIKey,
		SecretKey:  cfg.BinanceSecretKey,
		UseTestnet: cfg.IsTestnet,
		Logger:     log,
	})
	if err != nil {
		return fmt.Errorf("failed to create Binance client: %w", err)
	}

	bot, err := telegram.New(telegram.Config{
		Token:      cfg.TelegramToken,
		ChatID:     cfg.TelegramChatID,
		WebhookURL: cfg.WebhookURL,
		ListenAddr: cfg.ListenAddr,
		Logger:     log,
	})
	if err != nil {
		return fmt.Errorf("failed to create Telegram bot: %w", err)
	}

	limiter, err := ratelimit.New(cfg.RateLimitCalls, cfg.RateLimitPeriod)
	if err != nil {
		return fmt.Errorf("failed to create rate limiter: %w", err)
	}

	reg := registry.New(log)

	strat, err := strategy.New(strategy.Config{
		SignalMargin:  cfg.SignalMargin,
		MinDataPoints: cfg.MinDataPoints,
	}, log)
	if err != nil {
		return fmt.Errorf("failed to create strategy: %w", err)
	}

	scan, err := scanner.New(scanner.Config{
		KlineInterval:     cfg.KlineInterval,
		KlineLimit:        cfg.KlineLimit,
		StopLossFactor:    cfg.StopLossFactor,
		TakeProfitFactors: cfg.TakeProfitFactors,
		TimeLimit:         cfg.TimeLimit,
		PollInterval:      cfg.PollInterval,
		ConfidenceBase:    cfg.ConfidenceBase,
	}, log, market, bot, limiter, reg, strat)
	if err != nil {
		return fmt.Errorf("failed to create scanner: %w", err)
	}

	svc, err := app.NewService(app.Config{
		ScanInterval:     cfg.ScanInterval,
		ScanInitialDelay: cfg.ScanInitialDelay,
		ConfidenceBase:   cfg.ConfidenceBase,
		MetricsAddr:      cfg.MetricsAddr,
	}, log, market, scan, reg, bot)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}

	return svc.Start(ctx)
}
